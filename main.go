package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fd0/changewatch/platform"
	"github.com/fd0/changewatch/report"
	"github.com/fd0/changewatch/state"
	"github.com/fd0/changewatch/stream"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

var opts = struct {
	Config   string
	Mode     string
	Latency  time.Duration
	Since    uint64
	Flags    uint32
	Backend  string
	State    string
	Exec     string
	Ignore   []string
	Pushover bool
	Verbose  bool
}{}

// setupRootContext creates a root context that is cancelled when SIGINT is
// received, tied to a new errgroup.Group. The returned cancel() function
// cancels the outermost context.
func setupRootContext() (wg *errgroup.Group, ctx context.Context, cancel func()) {
	// create new root context, cancel on SIGINT
	ctx, cancel = context.WithCancel(context.Background())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)

	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()

	// couple this context with an errgroup
	wg, ctx = errgroup.WithContext(ctx)

	return wg, ctx, cancel
}

// applyFlags overrides cfg with all flags set on the command line.
func applyFlags(fs *pflag.FlagSet, cfg Config, args []string) Config {
	if len(args) > 0 {
		cfg.Paths = args
	}

	if fs.Changed("mode") || cfg.Mode == "" {
		cfg.Mode = opts.Mode
	}

	if fs.Changed("latency") || cfg.Latency == 0 {
		cfg.Latency = opts.Latency
	}

	if fs.Changed("since") {
		cfg.Since = opts.Since
	}

	if fs.Changed("flags") {
		cfg.Flags = opts.Flags
	}

	if fs.Changed("backend") || cfg.Backend == "" {
		cfg.Backend = opts.Backend
	}

	if fs.Changed("state") {
		cfg.State = opts.State
	}

	if fs.Changed("exec") {
		cfg.Exec = opts.Exec
	}

	cfg.Ignore = append(cfg.Ignore, opts.Ignore...)

	if fs.Changed("pushover") {
		cfg.Pushover = opts.Pushover
	}

	return cfg
}

// setupReporters returns the filter and reporters configured in cfg.
func setupReporters(log logrus.FieldLogger, cfg Config) (*report.Filter, []report.Reporter, error) {
	filter, err := report.NewFilter(cfg.Ignore)
	if err != nil {
		return nil, nil, err
	}

	reporters := []report.Reporter{&report.Console{}}

	if cfg.Exec != "" {
		e, err := report.ParseExec(cfg.Exec)
		if err != nil {
			return nil, nil, fmt.Errorf("parse exec: %w", err)
		}

		e.SetLogger(log)
		reporters = append(reporters, e)
	}

	if cfg.Pushover {
		p, err := report.PushoverFromEnv()
		if err != nil {
			return nil, nil, fmt.Errorf("pushover: %w", err)
		}

		p.SetLogger(log)
		reporters = append(reporters, p)
	}

	return filter, reporters, nil
}

func run(log logrus.FieldLogger, cfg Config) error {
	mode, err := stream.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}

	for _, dir := range cfg.Paths {
		err = CheckWatchDir(dir)
		if err != nil {
			return err
		}
	}

	backend, err := platform.Open(cfg.Backend)
	if err != nil {
		return err
	}

	if b, ok := backend.(interface{ SetLogger(logrus.FieldLogger) }); ok {
		b.SetLogger(log)
	}

	filter, reporters, err := setupReporters(log, cfg)
	if err != nil {
		return err
	}

	wg, ctx, cancel := setupRootContext()
	defer cancel()

	watcher := &Watcher{Filter: filter, Reporters: reporters}
	watcher.SetLogger(log)

	scfg := stream.Config{
		Paths:    cfg.Paths,
		Since:    platform.EventID(cfg.Since),
		Latency:  cfg.Latency,
		Flags:    platform.Flags(cfg.Flags),
		Mode:     mode,
		Callback: watcher.Callback(ctx),
	}

	// resume where the previous run stopped
	if scfg.Since == 0 && cfg.State != "" {
		scfg.Since, err = resumeFrom(cfg.State, scfg)
		if err != nil {
			return err
		}
	}

	s, err := stream.New(backend, scfg)
	if err != nil {
		return err
	}

	s.SetLogger(log)

	loop := platform.NewLoop()

	err = s.Startup(loop)
	if err != nil {
		s.Release()

		return err
	}

	log.Infof("watching %v for changes (%v mode)", s.Config().Paths, s.Mode())

	wg.Go(func() error {
		return loop.Run(ctx)
	})

	err = wg.Wait()

	s.Shutdown()
	loop.Stop()

	if cfg.State != "" {
		serr := saveState(cfg.State, s)
		if serr != nil && err == nil {
			err = serr
		}
	}

	return err
}

// resumeFrom returns the event ID saved in filename, if it was recorded for
// the same paths.
func resumeFrom(filename string, scfg stream.Config) (platform.EventID, error) {
	st, err := state.Load(filename)
	if err != nil {
		return 0, err
	}

	norm, err := scfg.Normalized()
	if err != nil {
		return 0, err
	}

	return st.Since(norm.Paths), nil
}

// saveState records the last event ID of s in filename. Nothing is written if
// no event ID is known.
func saveState(filename string, s *stream.Stream) error {
	id := s.LastEventID()
	if id == platform.SinceNow {
		return nil
	}

	st := state.State{
		LastEventID: id,
		Paths:       s.Config().Paths,
		UpdatedAt:   time.Now(),
	}

	return st.Save(filename)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("changewatch", pflag.ContinueOnError)
	fs.StringVar(&opts.Config, "config", "", "read configuration from `file`")
	fs.StringVar(&opts.Mode, "mode", "timestamp", "detect changes by `mode` (timestamp, cache)")
	fs.DurationVar(&opts.Latency, "latency", stream.DefaultLatency, "coalesce notifications for `duration`")
	fs.Uint64Var(&opts.Since, "since", 0, "resume from event `id`")
	fs.Uint32Var(&opts.Flags, "flags", 0, "pass `flags` to the backend")
	fs.StringVar(&opts.Backend, "backend", "notify", "use notification `backend` (notify, fsnotify, fsevents)")
	fs.StringVar(&opts.State, "state", "", "save the last event ID to `file` on exit and resume from it")
	fs.StringVar(&opts.Exec, "exec", "", "run `command` with the modified files as arguments")
	fs.StringSliceVar(&opts.Ignore, "ignore", nil, "ignore files matching `pattern`")
	fs.BoolVar(&opts.Pushover, "pushover", false, "send pushover notifications")
	fs.BoolVar(&opts.Verbose, "verbose", false, "print verbose messages")

	return fs
}

func main() {
	fs := newFlagSet()

	err := fs.Parse(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log := logrus.StandardLogger()
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	var cfg Config
	if opts.Config != "" {
		cfg, err = LoadConfig(opts.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	cfg = applyFlags(fs, cfg, fs.Args())

	err = run(log, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
