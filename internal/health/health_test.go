package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakeProvider struct {
	name       string
	configured bool
}

func (f fakeProvider) Name() string       { return f.name }
func (f fakeProvider) IsConfigured() bool { return f.configured }

type fakeQueue int

func (f fakeQueue) Count() int { return int(f) }

func TestService_CheckFolders(t *testing.T) {
	logger := zerolog.Nop()
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	s := NewService(fakePinger{}, []Folder{
		{Name: "artwork", Path: dir},
		{Name: "retro", Path: filepath.Join(dir, "missing")},
		{Name: "logs", Path: file},
	}, nil, nil, 0, &logger)
	report := s.Check(context.Background())

	require.Len(t, report.Items, 4)
	assert.Equal(t, StatusError, report.Status)

	artwork := report.Items[1]
	assert.Equal(t, "folder-artwork", artwork.ID)
	assert.Equal(t, StatusOK, artwork.Status, artwork.Message)

	assert.Equal(t, StatusError, report.Items[2].Status)
	assert.Contains(t, report.Items[2].Message, "does not exist")
	assert.Equal(t, StatusError, report.Items[3].Status)
	assert.Contains(t, report.Items[3].Message, "not a directory")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "marker file is removed")
	assert.Equal(t, "file.txt", entries[0].Name())
}

func TestService_Check(t *testing.T) {
	logger := zerolog.Nop()
	folders := []Folder{{Name: "artwork", Path: t.TempDir()}}
	providers := []Provider{fakeProvider{"tmdb", true}, fakeProvider{"igdb", false}}

	s := NewService(fakePinger{}, folders, providers, fakeQueue(10), 2000, &logger)
	report := s.Check(context.Background())
	assert.Equal(t, StatusWarning, report.Status)
	require.Len(t, report.Items, 5)
	assert.Equal(t, "provider-igdb", report.Items[3].ID)
	assert.Equal(t, StatusWarning, report.Items[3].Status)

	s = NewService(fakePinger{err: errors.New("database is locked")}, nil, nil, fakeQueue(1900), 2000, &logger)
	report = s.Check(context.Background())
	assert.Equal(t, StatusError, report.Status)
	assert.Equal(t, "database is locked", report.Items[0].Message)
	assert.Equal(t, StatusWarning, report.Items[1].Status)
}

func TestService_NoConfiguredProviderIsAnError(t *testing.T) {
	logger := zerolog.Nop()
	s := NewService(fakePinger{}, nil, []Provider{fakeProvider{"tmdb", false}}, nil, 0, &logger)
	assert.Equal(t, StatusError, s.Check(context.Background()).Status)
}

func TestHandlers_GetHealth(t *testing.T) {
	logger := zerolog.Nop()
	e := echo.New()

	h := NewHandlers(NewService(fakePinger{}, nil, nil, nil, 0, &logger))
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetHealth(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewHandlers(NewService(fakePinger{err: errors.New("closed")}, nil, nil, nil, 0, &logger))
	rec = httptest.NewRecorder()
	require.NoError(t, h.GetHealth(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
