package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func write(t testing.TB, filename string, data []byte) {
	err := os.WriteFile(filename, data, 0600)
	if err != nil {
		t.Fatalf("write %v failed: %v", filename, err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	filename := filepath.Join(t.TempDir(), "config.yml")
	write(t, filename, []byte(`
paths:
  - /tmp
  - /var/tmp
mode: cache
latency: 500ms
backend: fsnotify
exec: make -C build
ignore:
  - "*.swp"
pushover: true
`))

	cfg, err := LoadConfig(filename)
	if err != nil {
		t.Fatal(err)
	}

	want := Config{
		Paths:    []string{"/tmp", "/var/tmp"},
		Mode:     "cache",
		Latency:  500 * time.Millisecond,
		Backend:  "fsnotify",
		Exec:     "make -C build",
		Ignore:   []string{"*.swp"},
		Pushover: true,
	}

	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("wrong config, want\n  %+v\ngot\n  %+v", want, cfg)
	}
}

func TestLoadConfigStrict(t *testing.T) {
	t.Parallel()

	filename := filepath.Join(t.TempDir(), "config.yml")
	write(t, filename, []byte("paths: [/tmp]\nlatencyy: 1s\n"))

	_, err := LoadConfig(filename)
	if err == nil {
		t.Fatal("expected error not found")
	}

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Fatal("expected error not found")
	}
}

// TestApplyFlags modifies the global opts, so it does not run in parallel.
func TestApplyFlags(t *testing.T) {
	file := Config{
		Paths:   []string{"/from/config"},
		Mode:    "cache",
		Latency: 2 * time.Second,
		Ignore:  []string{"*.o"},
	}

	var tests = []struct {
		args []string
		cfg  Config
		want Config
	}{
		{
			args: nil,
			cfg:  Config{},
			want: Config{Mode: "timestamp", Latency: time.Second, Backend: "notify"},
		},
		{
			args: nil,
			cfg:  file,
			want: Config{
				Paths:   []string{"/from/config"},
				Mode:    "cache",
				Latency: 2 * time.Second,
				Backend: "notify",
				Ignore:  []string{"*.o"},
			},
		},
		{
			args: []string{"--mode", "timestamp", "--latency", "100ms", "--ignore", "*.swp", "--since", "23", "/a", "/b"},
			cfg:  file,
			want: Config{
				Paths:   []string{"/a", "/b"},
				Mode:    "timestamp",
				Latency: 100 * time.Millisecond,
				Since:   23,
				Backend: "notify",
				Ignore:  []string{"*.o", "*.swp"},
			},
		},
	}

	for _, test := range tests {
		fs := newFlagSet()

		err := fs.Parse(test.args)
		if err != nil {
			t.Fatal(err)
		}

		cfg := test.cfg
		cfg.Ignore = append([]string(nil), test.cfg.Ignore...)
		if len(cfg.Ignore) == 0 {
			cfg.Ignore = nil
		}

		got := applyFlags(fs, cfg, fs.Args())
		if len(got.Ignore) == 0 {
			got.Ignore = nil
		}

		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("args %v: wrong config, want\n  %+v\ngot\n  %+v", test.args, test.want, got)
		}
	}
}
