package poster

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidURL     = errors.New("invalid artwork URL")
	ErrDownloadFailed = errors.New("artwork download failed")
	ErrEmptyImage     = errors.New("artwork is empty")
	ErrImageTooLarge  = errors.New("artwork exceeds size limit")
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// ArtworkConfig holds configuration for artwork downloading.
type ArtworkConfig struct {
	// Dir is where poster files are written.
	Dir string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// MaxBytes caps a single download. Zero means unlimited.
	MaxBytes int64
}

// StoredImage describes a poster written to disk.
type StoredImage struct {
	File string // file name relative to the artwork dir
	Hash string // hex SHA-256 of the content
	Size int64
}

// ArtworkStore downloads poster images and stores them under
// deterministic names so refetching the same provider id is idempotent.
type ArtworkStore struct {
	config     ArtworkConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewArtworkStore creates a new ArtworkStore.
func NewArtworkStore(cfg ArtworkConfig, logger zerolog.Logger) *ArtworkStore {
	return &ArtworkStore{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("component", "artwork").Logger(),
	}
}

// Dir returns the artwork directory.
func (s *ArtworkStore) Dir() string {
	return s.config.Dir
}

// Download fetches url and returns the image bytes.
func (s *ArtworkStore) Download(ctx context.Context, url string) ([]byte, error) {
	if url == "" || !(strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")) {
		return nil, ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error().Err(err).Str("url", url).Msg("Artwork download failed")
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error().Int("status", resp.StatusCode).Str("url", url).Msg("Artwork download failed")
		return nil, fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if s.config.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, s.config.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if s.config.MaxBytes > 0 && int64(len(data)) > s.config.MaxBytes {
		return nil, ErrImageTooLarge
	}
	return data, nil
}

// Store writes data as {provider}-{providerID}[-suffix]{ext}.
func (s *ArtworkStore) Store(provider, providerID, suffix, ext string, data []byte) (*StoredImage, error) {
	if ext == "" {
		ext = ".jpg"
	}
	name := provider + "-" + providerID
	if suffix != "" {
		name += "-" + suffix
	}
	name = unsafeName.ReplaceAllString(name, "_") + ext

	if err := os.MkdirAll(s.config.Dir, 0755); err != nil {
		s.logger.Error().Err(err).Str("dir", s.config.Dir).Msg("Failed to create artwork directory")
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	destPath := filepath.Join(s.config.Dir, name)
	tmpPath := destPath + ".part"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to move file into place: %w", err)
	}

	sum := sha256.Sum256(data)
	stored := &StoredImage{
		File: name,
		Hash: hex.EncodeToString(sum[:]),
		Size: int64(len(data)),
	}

	s.logger.Debug().
		Str("file", name).
		Int64("bytes", stored.Size).
		Msg("Artwork stored")

	return stored, nil
}

// Fetch downloads url and stores it under the provider naming scheme.
func (s *ArtworkStore) Fetch(ctx context.Context, url, provider, providerID, suffix string) (*StoredImage, error) {
	data, err := s.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.Store(provider, providerID, suffix, extensionOf(url), data)
}

// Path returns the absolute location of a stored file name.
func (s *ArtworkStore) Path(file string) string {
	return filepath.Join(s.config.Dir, filepath.Base(file))
}

// Exists reports whether a stored file is still on disk.
func (s *ArtworkStore) Exists(file string) bool {
	if file == "" {
		return false
	}
	info, err := os.Stat(s.Path(file))
	return err == nil && !info.IsDir() && info.Size() > 0
}

// Hash returns the hex SHA-256 of a stored file.
func (s *ArtworkStore) Hash(file string) (string, error) {
	f, err := os.Open(s.Path(file))
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", file, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// extensionOf extracts a known image extension from a URL.
func extensionOf(url string) string {
	lastSlash := strings.LastIndex(url, "/")
	if lastSlash == -1 {
		return ""
	}

	filename := url[lastSlash+1:]
	if qmark := strings.IndexAny(filename, "?#"); qmark != -1 {
		filename = filename[:qmark]
	}

	if dot := strings.LastIndex(filename, "."); dot != -1 {
		ext := strings.ToLower(filename[dot:])
		switch ext {
		case ".jpg", ".jpeg", ".png", ".webp", ".gif":
			return ext
		}
	}

	return ""
}
