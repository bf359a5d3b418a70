package preview

import (
	"context"
	"log/slog"
	"time"
)

// fileServer and rebuildWatcher are the two lifecycles a session composes.
// Satisfied by *Server and *Watcher; narrowed to interfaces so the shutdown
// ordering is testable with fakes.
type fileServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	URL() string
}

type rebuildWatcher interface {
	Start() error
	Stop()
	Dir() string
}

const shutdownTimeout = 5 * time.Second

// Session owns a preview server and, optionally, a rebuild watcher for the
// duration of one `scribe view` invocation. The session is the only owner of
// both handles: nothing else may start or stop them.
type Session struct {
	server  fileServer
	watcher rebuildWatcher // nil when watching is disabled
	logger  *slog.Logger
}

// NewSession composes a server and an optional watcher. watcher may be nil.
func NewSession(server *Server, watcher *Watcher, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{server: server, logger: logger}
	if watcher != nil {
		s.watcher = watcher
	}
	return s
}

// Run drives the session lifecycle: start the server, start the watcher when
// present, block until ctx is cancelled, then tear down watcher before
// server. The watcher stop is synchronous — its goroutine has fully
// terminated before the server shutdown begins.
func (s *Session) Run(ctx context.Context) error {
	log := s.logger
	if log == nil {
		log = slog.Default()
	}
	if err := s.server.Start(ctx); err != nil {
		return err
	}
	log.Info("Your build may be previewed at", "url", s.server.URL())
	log.Info("Use [Ctrl]+[C] to halt the server")

	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = s.server.Stop(stopCtx)
			return err
		}
		log.Info("Watching for changes", "dir", s.watcher.Dir())
	}

	<-ctx.Done()

	log.Info("Closing preview server")
	if s.watcher != nil {
		s.watcher.Stop()
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Stop(stopCtx)
}
