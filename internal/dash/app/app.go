package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aussiebroadwan/hdbdash/internal/dash/store"
	"github.com/aussiebroadwan/hdbdash/pkg/httpx"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
	"github.com/aussiebroadwan/hdbdash/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Streams are the terminal the dashboard talks to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process stdin, stdout and stderr.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Application holds the dependencies every command shares.
type Application struct {
	cfg    Config
	logger *slog.Logger
	clock  clockwork.Clock

	store  store.Store
	client *resalesdk.SDKClient

	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader

	unsubscribe func()
}

// New opens storage and builds the API client. Call Close when done.
func New(ctx context.Context, cfg Config, streams Streams) (*Application, error) {
	if streams.Err == nil {
		streams.Err = io.Discard
	}
	if streams.Out == nil {
		streams.Out = io.Discard
	}
	if streams.In == nil {
		streams.In = strings.NewReader("")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "hdbdash",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Writer:  streams.Err,
		}),
		clock:  clockwork.NewRealClock(),
		out:    streams.Out,
		errOut: streams.Err,
		in:     bufio.NewReader(streams.In),
	}

	s, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.store = s

	app.initClient()
	return app, nil
}

func (app *Application) initClient() {
	mws := []httpx.Middleware{
		httpx.UserAgent("hdbdash/" + BuildVersion),
		httpx.RequestID(),
	}

	limit := httpx.RateLimitConfig{
		RequestsPerWindow: app.cfg.API.RateLimit,
		Window:            time.Second,
		Burst:             app.cfg.API.RateBurst,
	}
	if limit.Enabled() {
		mws = append(mws, httpx.RateLimitByHost(limit))
	}
	mws = append(mws, slogx.Transport(app.logger))

	base := http.DefaultTransport.(*http.Transport).Clone()

	client := resalesdk.NewSDKClient(app.cfg.API.URL, app.store)
	client.HTTPClient = &http.Client{Transport: httpx.Chain(base, mws...)}
	client.RequestTimeout = app.cfg.API.RequestTimeout
	app.client = client

	app.unsubscribe = client.State().Subscribe(func(s resalesdk.Snapshot) {
		app.logger.Debug("session changed",
			"authenticated", s.Authenticated,
			"username", s.Username,
		)
	})
}

// Start restores the session from storage. A stored token the API no
// longer accepts leaves the dashboard logged out rather than failing.
func (app *Application) Start(ctx context.Context) {
	snap, err := app.client.Rehydrate(ctx)
	if err != nil {
		app.logger.Debug("session not restored", "error", err)
		return
	}
	if snap.Authenticated {
		app.logger.Debug("session restored", "username", snap.Username)
	}
}

// Close releases storage.
func (app *Application) Close() error {
	if app.unsubscribe != nil {
		app.unsubscribe()
	}
	return app.store.Close()
}

func (app *Application) Client() *resalesdk.SDKClient { return app.client }

func (app *Application) Logger() *slog.Logger { return app.logger }

// SetClock replaces the clock used for relative times. For tests.
func (app *Application) SetClock(c clockwork.Clock) { app.clock = c }

// prompt returns value if set, else asks for it on the error stream and
// reads one line from the input.
func (app *Application) prompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}

	fmt.Fprintf(app.errOut, "%s: ", label)
	line, err := app.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
