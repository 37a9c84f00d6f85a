package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/aussiebroadwan/hdbdash/internal/dash/render"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
	"github.com/aussiebroadwan/hdbdash/pkg/slogx"
)

// CLI is the kong grammar of hdbdash. Global flags override the loaded
// configuration.
type CLI struct {
	Config      string `help:"Path to a YAML config file." short:"c" type:"path"`
	APIURL      string `help:"Resale API base URL." name:"api-url"`
	Storage     string `help:"Storage driver: file, sqlite, redis or memory."`
	StoragePath string `help:"Storage directory (file) or database file (sqlite)." name:"storage-path" type:"path"`
	LogLevel    string `help:"Log level: debug, info, warn or error." name:"log-level"`
	JSON        bool   `help:"Print JSON instead of tables."`

	Login          LoginCmd          `cmd:"" help:"Log in and store the credential pair."`
	Logout         LogoutCmd         `cmd:"" help:"Forget stored credentials."`
	Signup         SignupCmd         `cmd:"" help:"Create an account."`
	Whoami         WhoamiCmd         `cmd:"" help:"Show who is logged in."`
	Profile        ProfileCmd        `cmd:"" help:"Show the account profile."`
	UpdateProfile  UpdateProfileCmd  `cmd:"" name:"update-profile" help:"Change username or email."`
	ForgotPassword ForgotPasswordCmd `cmd:"" name:"forgot-password" help:"Request a password reset email."`
	ResetPassword  ResetPasswordCmd  `cmd:"" name:"reset-password" help:"Set a new password using a reset token."`

	Towns    TownsCmd    `cmd:"" help:"List towns."`
	Years    YearsCmd    `cmd:"" help:"List years with transactions."`
	Listings ListingsCmd `cmd:"" help:"Show resale transactions of a town."`
	Compare  CompareCmd  `cmd:"" help:"Compare average prices of up to five towns."`
	Recent   RecentCmd   `cmd:"" help:"Show or replay recent comparisons."`
	Trends   TrendsCmd   `cmd:"" help:"Average price per flat type over the years in a town."`
	Analysis AnalysisCmd `cmd:"" help:"Price trends or volatility across towns."`
	Predict  PredictCmd  `cmd:"" help:"Predicted prices for the next five years."`
	Status   StatusCmd   `cmd:"" help:"Show configuration, storage and session status."`
}

func (c *CLI) apply(cfg *Config) {
	if c.APIURL != "" {
		cfg.API.URL = c.APIURL
	}
	if c.Storage != "" {
		cfg.Storage.Driver = c.Storage
	}
	if c.StoragePath != "" {
		cfg.Storage.Path = c.StoragePath
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
}

// Commands that establish or drop the session themselves skip the
// startup profile check.
var sessionCommands = map[string]bool{
	"login":           true,
	"logout":          true,
	"signup":          true,
	"forgot-password": true,
	"reset-password":  true,
}

// runContext is bound into every command's Run method.
type runContext struct {
	ctx  context.Context
	app  *Application
	json bool
}

// show prints v as JSON when --json is set, otherwise calls table.
func (rc *runContext) show(v any, table func()) error {
	if rc.json {
		return render.JSON(rc.app.out, v)
	}
	table()
	return nil
}

func (rc *runContext) println(a ...any) {
	fmt.Fprintln(rc.app.out, a...)
}

// Execute parses args, builds the application and runs the selected
// command.
func Execute(ctx context.Context, args []string, streams Streams, opts ...kong.Option) error {
	if streams.Out == nil || streams.Err == nil {
		std := StdStreams()
		if streams.Out == nil {
			streams.Out = std.Out
		}
		if streams.Err == nil {
			streams.Err = std.Err
		}
	}

	var cli CLI
	parser, err := kong.New(&cli, append([]kong.Option{
		kong.Name("hdbdash"),
		kong.Description("Singapore HDB resale prices from the terminal."),
		kong.UsageOnError(),
		kong.Writers(streams.Out, streams.Err),
	}, opts...)...)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	cli.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	app, err := New(ctx, cfg, streams)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.logger.Warn("failed to close storage", "error", err)
		}
	}()

	command := strings.Fields(kctx.Command())[0]
	ctx = slogx.WithContext(ctx, app.logger.With("command", command))
	if !sessionCommands[command] {
		app.Start(ctx)
	}

	if err := kctx.Run(&runContext{ctx: ctx, app: app, json: cli.JSON}); err != nil {
		app.logger.Debug("command failed", "command", command, "error", err)
		return &commandError{err: err}
	}
	return nil
}

// commandError marks a failure of the command itself, as opposed to
// argument parsing or startup.
type commandError struct{ err error }

func (e *commandError) Error() string { return e.err.Error() }

func (e *commandError) Unwrap() error { return e.err }

// ErrorMessage is what the terminal shows for an error from Execute.
// Command failures go through resalesdk.UserMessage; startup errors are
// shown as is.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, resalesdk.ErrNotAuthenticated) {
		return "Not logged in."
	}

	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return resalesdk.UserMessage(err)
	}
	return err.Error()
}
