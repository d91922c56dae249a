// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the acm daemon: create, start, stop,
// and atomic hot reload of the served matcher.
package app

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	fsw "github.com/corey/acmatch/internal/adapters/fsnotify"
	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/adapters/web"
	"github.com/corey/acmatch/internal/domain/automaton"
	"github.com/corey/acmatch/internal/ports"
)

// loaded is one immutable generation of the served matcher.
type loaded struct {
	matcher     ports.Matcher
	origin      string
	replacement string
	keywords    int
}

// App is the top-level container wiring all components together.
type App struct {
	Config    Config
	Paths     *Paths
	Server    *socket.Server
	WebServer *web.Server  // nil unless Config.HTTP
	Watcher   ports.Watcher // nil unless Config.Watch with a keyword file
	Log       *logrus.Logger

	current  atomic.Pointer[loaded]
	reloads  atomic.Int64
	reloadMu sync.Mutex // serializes rebuilds; searches never take it
	started  time.Time
}

var _ socket.Engine = (*App)(nil)

// New creates an App and builds the initial matcher. Does not start services.
// A logger may be injected with WithLogger; otherwise one is created from
// cfg.LogLevel writing to stderr.
func New(cfg Config, opts ...Option) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, errors.New("project root required")
	}
	cfg = cfg.withDefaults()

	a := &App{
		Config: cfg,
		Paths:  NewPaths(cfg.ProjectRoot),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Log == nil {
		log, err := NewLogger(cfg.LogLevel, os.Stderr)
		if err != nil {
			return nil, err
		}
		a.Log = log
	}

	if err := a.Paths.EnsureDirs(); err != nil {
		return nil, errors.Wrap(err, "create .acm dirs")
	}

	if _, err := a.rebuild(); err != nil {
		return nil, err
	}

	a.Server = socket.NewServer(a, socket.SocketPath(cfg.ProjectRoot))
	if cfg.HTTP {
		a.WebServer = web.NewServer(a, a.Paths.PortFile)
	}
	if cfg.Watch && cfg.KeywordFile != "" && a.Watcher == nil {
		w, err := fsw.NewWatcher()
		if err != nil {
			return nil, errors.Wrap(err, "create watcher")
		}
		a.Watcher = w
	}
	return a, nil
}

// Option customizes an App at construction.
type Option func(*App)

// WithLogger injects the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(a *App) { a.Log = log }
}

// WithWatcher injects the keyword-file watcher.
func WithWatcher(w ports.Watcher) Option {
	return func(a *App) { a.Watcher = w }
}

// Start begins the daemon (socket server + optional HTTP server + optional watcher).
func (a *App) Start() error {
	a.started = time.Now()
	if err := a.Server.Start(); err != nil {
		return errors.Wrap(err, "start server")
	}
	fields := logrus.Fields{
		"socket":   a.Server.Addr(),
		"engine":   a.Config.Engine,
		"keywords": a.Info().KeywordCount,
	}

	// HTTP is non-fatal if the port is unavailable
	if a.WebServer != nil {
		port := a.Config.HTTPPort
		if port == 0 {
			port = web.DefaultPort(a.Config.ProjectRoot)
		}
		if err := a.WebServer.Start(port); err != nil {
			a.Log.WithError(err).Warn("HTTP API unavailable")
		} else {
			fields["http"] = a.WebServer.URL()
		}
	}

	// Watcher is non-fatal if setup fails
	if a.Watcher != nil {
		if err := a.Watcher.Watch(a.Config.KeywordFile, a.onKeywordFileChanged); err != nil {
			a.Log.WithError(err).Warn("keyword file watcher unavailable")
		} else {
			fields["watch"] = a.Config.KeywordFile
		}
	}

	a.Log.WithFields(fields).Info("daemon started")
	return nil
}

// Stop gracefully shuts down all services.
func (a *App) Stop() error {
	if a.Watcher != nil {
		a.Watcher.Stop()
	}
	if a.WebServer != nil {
		a.WebServer.Stop()
	}
	err := a.Server.Stop()
	a.Paths.CleanEphemeral()
	a.Log.WithField("uptime", time.Since(a.started).Round(time.Second)).Info("daemon stopped")
	return err
}

// Current returns the matcher being served. Never nil.
// Implements socket.Engine.
func (a *App) Current() ports.Matcher {
	if l := a.current.Load(); l != nil {
		return l.matcher
	}
	return (*automaton.Automaton)(nil)
}

// Replacement returns the default replacement: the configured one, else the
// keyword file's.
func (a *App) Replacement() string {
	if a.Config.Replacement != "" {
		return a.Config.Replacement
	}
	if l := a.current.Load(); l != nil {
		return l.replacement
	}
	return ""
}

// Reload rebuilds the matcher from the configured source and swaps it in.
// Searches already running keep the generation they started with. On
// failure the previous matcher stays in service.
// Implements socket.Engine.
func (a *App) Reload() (socket.ReloadResult, error) {
	start := time.Now()
	l, err := a.rebuild()
	if err != nil {
		a.Log.WithError(err).Warn("reload failed, keeping previous keywords")
		return socket.ReloadResult{}, err
	}
	n := a.reloads.Add(1)
	elapsed := time.Since(start)
	a.Log.WithFields(logrus.Fields{
		"source":   l.origin,
		"keywords": l.keywords,
		"reloads":  n,
		"elapsed":  elapsed,
	}).Info("keywords reloaded")
	return socket.ReloadResult{
		Source:       l.origin,
		KeywordCount: l.keywords,
		Elapsed:      elapsed.String(),
	}, nil
}

// Info describes the served matcher.
// Implements socket.Engine.
func (a *App) Info() socket.EngineInfo {
	info := socket.EngineInfo{
		Engine:  a.Config.Engine,
		Reloads: int(a.reloads.Load()),
	}
	if l := a.current.Load(); l != nil {
		info.Source = l.origin
		info.KeywordCount = l.keywords
	}
	return info
}

// rebuild loads the source, builds a matcher and publishes it.
func (a *App) rebuild() (*loaded, error) {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	src, err := LoadSource(a.Config)
	if err != nil {
		return nil, err
	}
	m, err := NewMatcher(a.Config.Engine, src.Keywords)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s engine", a.Config.Engine)
	}
	l := &loaded{
		matcher:     m,
		origin:      src.Origin,
		replacement: src.Replacement,
		keywords:    len(m.Keywords()),
	}
	a.current.Store(l)
	a.Log.WithFields(logrus.Fields{
		"engine":   a.Config.Engine,
		"source":   l.origin,
		"keywords": l.keywords,
	}).Debug("matcher built")
	return l, nil
}

// onKeywordFileChanged handles a debounced write to the keyword file.
func (a *App) onKeywordFileChanged(path string) {
	a.Log.WithField("file", path).Debug("keyword file changed")
	a.Reload()
}
