package pubsite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/pubsite/internal/logfields"
)

const rebuildDelay = 300 * time.Millisecond

// Serve builds the site, serves OutputDir on Addr and rebuilds whenever a
// file under ContentDir or StaticDir changes. It returns when ctx is done.
func (s *Site) Serve(ctx context.Context) error {
	if err := s.rebuild(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("pubsite: fsnotify: %w", err)
	}
	defer watcher.Close()
	for _, dir := range []string{s.Config.ContentDir, s.Config.StaticDir} {
		if _, err := os.Stat(dir); err == nil {
			addDirsRecursive(watcher, dir, s.logger)
		}
	}

	e := s.newPreviewServer()
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", logfields.Addr(s.Config.Addr))
		errc <- e.Start(s.Config.Addr)
	}()

	rebuildReq, trigger := newDebouncer(rebuildDelay)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				s.logger.Info("change detected, rebuilding")
				if err := s.rebuild(ctx); err != nil {
					s.logger.Warn("rebuild failed", logfields.Error(err))
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.logger.Info("shutting down preview server")
			return e.Shutdown(shutdownCtx)
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("pubsite: preview server: %w", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldIgnoreEvent(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					addDirsRecursive(watcher, ev.Name, s.logger)
				}
			}
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

// rebuild runs Build and only propagates errors that are not page failures;
// a broken page should not take the preview down.
func (s *Site) rebuild(ctx context.Context) error {
	_, err := s.Build(ctx)
	var pe *PageError
	if err != nil && errors.As(err, &pe) {
		s.logger.Warn("build finished with page errors", logfields.Error(err))
		return nil
	}
	return err
}

// newDebouncer returns a channel that receives once per burst of trigger
// calls, delay after the last one.
func newDebouncer(delay time.Duration) (<-chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	req := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case req <- struct{}{}:
			default:
			}
		})
	}
	return req, trigger
}

func (s *Site) newPreviewServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			return path.Ext(c.Request().URL.Path) != ""
		},
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
	e.Use(noCacheMiddleware)
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:       ".",
		Index:      "index.html",
		Filesystem: http.Dir(s.Config.OutputDir),
	}))
	return e
}

// noCacheMiddleware keeps browsers from holding on to pages between rebuilds.
func noCacheMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		return next(c)
	}
}

func (s *Site) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusNotFound {
		if page, readErr := os.ReadFile(filepath.Join(s.Config.OutputDir, "404.html")); readErr == nil {
			_ = c.HTMLBlob(http.StatusNotFound, page)
			return
		}
	}
	c.Echo().DefaultHTTPErrorHandler(err, c)
}

func addDirsRecursive(w *fsnotify.Watcher, root string, logger *slog.Logger) {
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(p); err != nil {
				logger.Warn("watch add failed", logfields.Source(p), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports whether a filesystem event comes from a hidden,
// swap or lock file that should not trigger a rebuild.
func shouldIgnoreEvent(name string) bool {
	base := filepath.Base(name)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db", base == "4913":
		return true
	}
	return false
}
