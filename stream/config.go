package stream

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fd0/changewatch/fsys"
	"github.com/fd0/changewatch/platform"
)

// Mode selects how modified files are detected.
type Mode int

const (
	// ModeTimestamp reports files modified at or after the previous batch.
	ModeTimestamp Mode = iota

	// ModeCache compares files against a snapshot taken after the previous
	// batch, which also allows reporting deleted files.
	ModeCache
)

func (m Mode) String() string {
	switch m {
	case ModeTimestamp:
		return "timestamp"
	case ModeCache:
		return "cache"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) valid() bool {
	return m == ModeTimestamp || m == ModeCache
}

// ParseMode returns the mode for s ("timestamp" or "cache"). "mtime" is
// accepted as an alias for "timestamp".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "timestamp", "mtime":
		return ModeTimestamp, nil
	case "cache":
		return ModeCache, nil
	default:
		return 0, &Error{Kind: ErrInvalidConfig, Op: "parse mode", Err: fmt.Errorf("unknown mode %q", s)}
	}
}

// DefaultLatency is used when Config.Latency is zero.
const DefaultLatency = time.Second

// Callback receives the events of one batch.
type Callback func(events EventCollection)

// Config configures a Stream.
type Config struct {
	// Paths are the directories to watch, the current directory if empty.
	Paths []string

	// Since is the event ID to resume from, zero means platform.SinceNow.
	Since platform.EventID

	// Latency is the time the backend waits to coalesce notifications.
	Latency time.Duration

	Flags platform.Flags

	// Mode cannot be changed after the stream has been created.
	Mode Mode

	// Callback is required.
	Callback Callback

	// FS is used to list and stat files, fsys.OS if nil.
	FS fsys.FS

	// Now returns the current time, time.Now if nil.
	Now func() time.Time
}

// Normalize removes trailing separators and redundant elements from p.
func Normalize(p string) string {
	return filepath.Clean(p)
}

func invalid(format string, args ...interface{}) error {
	return &Error{Kind: ErrInvalidConfig, Op: "validate", Err: fmt.Errorf(format, args...)}
}

// withDefaults validates cfg and returns a copy with all defaults applied.
func (cfg Config) withDefaults() (Config, error) {
	if cfg.Callback == nil {
		return Config{}, invalid("no callback")
	}

	if !cfg.Mode.valid() {
		return Config{}, invalid("invalid mode %v", cfg.Mode)
	}

	if cfg.Latency < 0 {
		return Config{}, invalid("negative latency %v", cfg.Latency)
	}

	if cfg.Latency == 0 {
		cfg.Latency = DefaultLatency
	}

	if cfg.Since == 0 {
		cfg.Since = platform.SinceNow
	}

	if len(cfg.Paths) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, invalid("resolve current directory: %w", err)
		}

		cfg.Paths = []string{wd}
	}

	paths := make([]string, 0, len(cfg.Paths))
	for _, p := range cfg.Paths {
		if p == "" {
			return Config{}, invalid("empty path")
		}

		paths = append(paths, Normalize(p))
	}

	cfg.Paths = paths

	if cfg.FS == nil {
		cfg.FS = fsys.OS{}
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return cfg, nil
}

// Normalized validates cfg and returns a copy with all defaults applied, as
// New would use it.
func (cfg Config) Normalized() (Config, error) {
	return cfg.withDefaults()
}
