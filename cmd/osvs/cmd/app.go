package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	guardcel "github.com/osvs/memberportal/internal/adapter/outbound/cel"
	"github.com/osvs/memberportal/internal/adapter/outbound/httpapi"
	"github.com/osvs/memberportal/internal/adapter/outbound/state"
	"github.com/osvs/memberportal/internal/config"
	"github.com/osvs/memberportal/internal/domain/auth"
	"github.com/osvs/memberportal/internal/domain/guard"
	"github.com/osvs/memberportal/internal/domain/notice"
	"github.com/osvs/memberportal/internal/domain/request"
	"github.com/osvs/memberportal/internal/domain/session"
	"github.com/osvs/memberportal/internal/telemetry"
	"github.com/osvs/memberportal/internal/ux"
)

// errReported marks a failure the banner has already shown.
var errReported = errors.New("request failed")

// errNotFound is printed inline by Execute.
var errNotFound = errors.New("not found")

// app is everything one command invocation needs, wired from config.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	out     ux.Formatter
	notices *notice.Channel
	banner  *ux.Banner

	jar    *httpapi.RecordingJar
	client *httpapi.Client
	store  *state.FileSessionStore
	saved  *state.SessionFile
	cache  *session.Cache
	guards *guardcel.Evaluator

	registry      *prometheus.Registry
	shutdownTrace func(context.Context) error
	loggedOut     bool
}

// withApp wires an app for cmd, runs fn, then persists the session and
// flushes telemetry whatever fn returned.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return nil, err
	}
	if outputFormat != "" {
		cfg.Output.Format = outputFormat
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Debug("loaded config", "file", configFile)
	}

	out, err := ux.NewFormatter(cfg.Output.Format, &ux.FormatterOptions{Writer: cmd.OutOrStdout(), NoColor: noColor})
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Setup(ctx, stderr, cfg.Telemetry.Trace, Version)
	if err != nil {
		return nil, err
	}

	guards, err := guardcel.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("create guard evaluator: %w", err)
	}

	notices := notice.New(notice.WithDuration(cfg.NoticeDuration()))
	banner := ux.NewBanner(stderr, noColor)
	banner.Attach(notices)

	store := state.NewFileSessionStore(cfg.Session.File, logger)
	saved, err := store.Load()
	if err != nil {
		logger.Warn("ignoring unreadable session file", "path", store.Path(), "error", err)
		saved = nil
	}

	jar := httpapi.NewRecordingJar()
	if saved.For(cfg.Backend.URL) {
		jar.Restore(saved.Cookies)
	}

	registry := telemetry.NewRegistry()
	client := httpapi.NewClient(
		httpapi.WithBaseURL(cfg.Backend.URL),
		httpapi.WithTimeout(cfg.RequestTimeout()),
		httpapi.WithCookieJar(jar),
		httpapi.WithLogger(logger),
		httpapi.WithMetrics(httpapi.NewMetrics(registry)),
		httpapi.WithUserAgent("osvs/"+Version),
	)

	return &app{
		cfg:           cfg,
		logger:        logger,
		out:           out,
		notices:       notices,
		banner:        banner,
		jar:           jar,
		client:        client,
		store:         store,
		saved:         saved,
		cache:         session.NewCache(client, session.WithLogger(logger)),
		guards:        guards,
		registry:      registry,
		shutdownTrace: shutdown,
	}, nil
}

func (a *app) close() {
	a.persist()
	if err := telemetry.WriteMetrics(a.cfg.Telemetry.MetricsFile, a.registry); err != nil {
		a.logger.Warn("failed to write metrics", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdownTrace(ctx); err != nil {
		a.logger.Warn("failed to flush traces", "error", err)
	}
	a.notices.Close()
}

// persist writes the cookies and the last confirmed principal back to the
// session file. A logged-out or empty session removes the file.
func (a *app) persist() {
	var prev *state.SessionFile
	if a.saved.For(a.cfg.Backend.URL) {
		prev = a.saved
	}

	var principal *auth.Principal
	if prev != nil {
		principal = prev.Principal
	}
	if a.cache.State() != session.StateUnknown {
		principal = a.cache.Principal()
	}
	cookies := a.jar.Saved()

	if a.loggedOut || (len(cookies) == 0 && principal == nil) {
		if a.store.Exists() {
			if err := a.store.Clear(); err != nil {
				a.logger.Warn("failed to remove session file", "error", err)
			}
		}
		return
	}

	file := &state.SessionFile{
		Backend:   a.cfg.Backend.URL,
		Cookies:   cookies,
		Principal: principal,
	}
	if prev != nil {
		file.CreatedAt = prev.CreatedAt
	}
	if err := a.store.Save(file); err != nil {
		a.logger.Warn("failed to save session", "path", a.store.Path(), "error", err)
	}
}

// require evaluates a guard rule against the session.
func (a *app) require(ctx context.Context, rule guard.Rule) (*auth.Principal, error) {
	p, err := guard.Check(ctx, a.cache, a.guards, rule)
	if errors.Is(err, guard.ErrLoginRequired) {
		return nil, fmt.Errorf("%w; run `osvs login` first", err)
	}
	return p, err
}

// render writes a result with the configured formatter.
func (a *app) render(v any) error {
	return a.out.Format(v)
}

// fetch runs op through a fresh Hook. A 404 becomes errNotFound for what;
// any other failure has already been shown on the banner.
func fetch[T any](ctx context.Context, a *app, what string, op request.Operation[T]) (T, error) {
	h := request.New[T](a.notices)
	defer h.Close()

	v, err := h.Run(ctx, op)
	if err == nil {
		return v, nil
	}
	if h.NotFound() {
		return v, fmt.Errorf("%s: %w", what, errNotFound)
	}
	a.logger.Debug("request failed", "what", what, "error", err)
	return v, errReported
}

// await is fetch for an operation already running elsewhere; the value
// arrives on ch.
func await[T any](ctx context.Context, a *app, what string, ch <-chan request.Settled[T]) (T, error) {
	h := request.New[T](a.notices)
	defer h.Close()

	v, err := h.Await(ctx, ch)
	if err == nil {
		return v, nil
	}
	if h.NotFound() {
		return v, fmt.Errorf("%s: %w", what, errNotFound)
	}
	a.logger.Debug("request failed", "what", what, "error", err)
	return v, errReported
}

// do runs an operation without a result through a Hook.
func do(ctx context.Context, a *app, what string, op func(ctx context.Context) error) error {
	_, err := fetch(ctx, a, what, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}

// optional returns a pointer to the flag's value when it was set.
func optional(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}
