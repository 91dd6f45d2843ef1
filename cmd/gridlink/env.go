package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/1broseidon/gridlink/internal/config"
	"github.com/1broseidon/gridlink/internal/link"
	"github.com/1broseidon/gridlink/internal/logging"
	"github.com/1broseidon/gridlink/internal/platform"
	"github.com/1broseidon/gridlink/internal/tiling"
)

type commonFlags struct {
	configPath string
	display    string
	logFile    string
	logLevel   string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.configPath, "config", "", "Config file path (default: ~/.config/gridlink/config.yaml)")
	fs.StringVar(&c.display, "display", "", "X11 display (default: config display, then $DISPLAY)")
	fs.StringVar(&c.logFile, "log-file", "", "Write logs to this file, rotated at 10MB keeping 3 old files")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error (default: config log_level)")
	return c
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// session holds what a command needs to talk to the display server.
type session struct {
	cfg     *config.Config
	logger  *log.Logger
	backend *platform.LinuxBackend
	tiler   *tiling.Tiler
	closers []io.Closer
}

// open loads the config, sets up logging and connects to the display.
func (c *commonFlags) open(ctx context.Context) (context.Context, *session, error) {
	res, err := loadConfig(c.configPath)
	if err != nil {
		return ctx, nil, err
	}
	s := &session{cfg: res.Config}

	level := s.cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	var w io.Writer = os.Stderr
	if c.logFile != "" {
		f, err := logging.OpenFile(logging.FileConfig{Path: c.logFile})
		if err != nil {
			return ctx, nil, err
		}
		s.closers = append(s.closers, f)
		w = f
	}
	s.logger = logging.New(w, logging.ParseLevel(level))
	ctx = logging.WithLogger(ctx, s.logger)

	display := c.display
	if display == "" {
		display = s.cfg.Display
	}
	s.backend, err = platform.NewLinuxBackendFromDisplay(display)
	if err != nil {
		s.Close()
		return ctx, nil, err
	}
	s.tiler = tiling.NewTiler(s.backend, s.cfg, link.Default, s.logger)
	s.logger.Debug("session ready", "display", display, "config", res.Files)
	return ctx, s, nil
}

func (s *session) Close() {
	if s == nil {
		return
	}
	if s.backend != nil {
		s.backend.Disconnect()
	}
	for _, c := range s.closers {
		c.Close()
	}
}

// parseFlags parses args and maps the outcome to an exit code. ok is false
// when the command should return code right away.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}
