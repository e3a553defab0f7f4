package main

import (
	"context"
	"fmt"

	"github.com/odvcencio/textgrid/pkg/logging"
	"github.com/odvcencio/textgrid/pkg/server"
	"github.com/odvcencio/textgrid/pkg/telemetry"
	"github.com/odvcencio/textgrid/pkg/watch"
)

type renderServer interface {
	Start(ctx context.Context) error
}

var newServerFn = func(e *env, opts server.Options) (renderServer, error) {
	return server.New(e.cfg, opts)
}

func (a *app) runServe(ctx context.Context, args []string) error {
	var common commonFlags
	var bind string
	var trace bool
	var watchPaths []string
	fs := a.newFlagSet("serve", "[FLAGS]")
	common.register(fs)
	fs.StringVar(&bind, "bind", "", "address to listen on (default: server.bind)")
	fs.BoolVar(&trace, "trace", false, "export request spans to stderr")
	fs.StringSliceVar(&watchPaths, "watch-path", nil, "publish watch.changed events for these files (repeatable)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	e, err := a.setup(&common, fs)
	if err != nil {
		return err
	}
	defer e.Close()
	if bind != "" {
		e.cfg.Server.Bind = bind
	}
	if trace {
		e.cfg.Server.Trace = true
	}

	hub := telemetry.NewHub()
	srv, err := newServerFn(e, server.Options{
		Logger:      e.logger,
		Hub:         hub,
		TraceOutput: a.stderr,
		Version:     version,
	})
	if err != nil {
		return withExitCode(err, exitConfig)
	}

	if len(watchPaths) > 0 {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := a.watchInputs(ctx, e, watchPaths, publishChanges(hub)); err != nil {
				e.errOut.Error("watch: %v", err)
			}
		}()
	}

	e.errOut.Info("serving on http://%s", e.cfg.Server.Bind)
	if err := srv.Start(ctx); err != nil {
		e.logger.Error(logging.CategoryServer, "serve_failed", err, nil)
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// publishChanges forwards file changes to event stream subscribers.
func publishChanges(hub *telemetry.Hub) watch.Handler {
	return func(changes []watch.Change) {
		for _, c := range changes {
			hub.Publish(telemetry.Event{
				Type:      telemetry.EventWatchChanged,
				Timestamp: c.Time,
				Data:      map[string]any{"path": c.Path, "change": string(c.Type)},
			})
		}
	}
}
