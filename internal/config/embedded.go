package config

// Version is set at build time via ldflags.
var Version = "dev"

// Embedded API keys injected at build time via ldflags.
// These serve as defaults and can be overridden by environment
// variables or config file.
//
// Build with:
//   go build -ldflags "-X 'github.com/slipstream/posterd/internal/config.EmbeddedTMDBKey=xxx' \
//                      -X 'github.com/slipstream/posterd/internal/config.EmbeddedFanartKey=yyy'"
var (
	EmbeddedTMDBKey   string
	EmbeddedTVDBKey   string
	EmbeddedFanartKey string
)
