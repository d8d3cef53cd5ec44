package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/target/deckgen/config"
	"github.com/target/deckgen/internal/bootstrap"
	"github.com/target/deckgen/internal/migrate"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 30 * time.Second
)

var errUsage = errors.New("invalid arguments")

func main() {
	logger := bootstrap.InitLogger(os.Getenv("LOG_LEVEL"))

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		stop()
		if errors.Is(runErr, errUsage) {
			os.Exit(2) //nolint:forbidigo // CLI must distinguish usage errors from runtime failures
		}
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run presentation catalog migrations",
			run:         runMigrations,
		},
		"status": {
			name:        "status",
			description: "Show the status of a presentation job: status <id>",
			run:         runStatus,
		},
		"delete": {
			name:        "delete",
			description: "Delete a presentation and its stored deck: delete <id>",
			run:         runDelete,
		},
		"usage": {
			name:        "usage",
			description: "Show daily generation usage for a user: usage [--date YYYY-MM-DD] <user>",
			run:         runUsage,
		},
		"queue-depth": {
			name:        "queue-depth",
			description: "Show the number of tasks waiting in the work queue",
			run:         runQueueDepth,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: deckgen-admin <command> [flags] [args]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands()[name]
		if err := writef(w, "  %-14s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := migrateOptions{}
	fs.DurationVar(&opts.Timeout, "timeout", defaultMigrationTimeout, "maximum time to wait for migrations")
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %w", errUsage, err)
	}
	if opts.Timeout <= 0 {
		return opts, fmt.Errorf("%w: --timeout must be positive", errUsage)
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}
	if !cmdCtx.Config.Postgres.Enabled {
		return errors.New("presentation catalog is disabled (DB_ENABLED=false)")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	cmdCtx.Logger.Info("running database migrations")

	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return fmt.Errorf("run migrations: %w", migrateErr)
	}

	cmdCtx.Logger.Info("migrations completed successfully")

	applied, err := migrate.Applied(ctx, db)
	if err != nil {
		return fmt.Errorf("list applied migrations: %w", err)
	}
	return printApplied(cmdCtx.Out, applied)
}

// singleArg returns the one positional argument a command expects.
func singleArg(name string, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("%w: %s requires exactly one argument", errUsage, name)
	}
	return args[0], nil
}

func runStatus(cmdCtx *commandContext, args []string) error {
	id, err := singleArg("status", args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	in, err := openInfra(ctx, cmdCtx, infraOptions{})
	if err != nil {
		return err
	}
	defer in.close(cmdCtx.Logger)

	return printStatus(ctx, cmdCtx.Out, in.stores.Jobs, id)
}

func runDelete(cmdCtx *commandContext, args []string) error {
	id, err := singleArg("delete", args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	in, err := openInfra(ctx, cmdCtx, infraOptions{WantDB: true, WantServices: true})
	if err != nil {
		return err
	}
	defer in.close(cmdCtx.Logger)

	return deletePresentation(ctx, cmdCtx.Out, in.services.Presentations, id)
}

type usageOptions struct {
	Date   string
	UserID string
}

func parseUsageFlags(args []string) (usageOptions, error) {
	fs := flag.NewFlagSet("usage", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := usageOptions{}
	fs.StringVar(&opts.Date, "date", "", "UTC day to inspect (YYYY-MM-DD); defaults to today")
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %w", errUsage, err)
	}
	user, err := singleArg("usage", fs.Args())
	if err != nil {
		return opts, err
	}
	opts.UserID = user
	return opts, nil
}

func (o usageOptions) day(now time.Time) (time.Time, error) {
	if o.Date == "" {
		return now.UTC(), nil
	}
	d, err := time.Parse(time.DateOnly, o.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --date: %w", errUsage, err)
	}
	return d, nil
}

func runUsage(cmdCtx *commandContext, args []string) error {
	opts, err := parseUsageFlags(args)
	if err != nil {
		return err
	}
	day, err := opts.day(time.Now())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	in, err := openInfra(ctx, cmdCtx, infraOptions{})
	if err != nil {
		return err
	}
	defer in.close(cmdCtx.Logger)

	return printUsageCount(ctx, &usageReport{
		Out:   cmdCtx.Out,
		Usage: in.stores.Usage,
		User:  opts.UserID,
		Day:   day,
		Limit: cmdCtx.Config.Limits.DailyLimit,
	})
}

func runQueueDepth(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	in, err := openInfra(ctx, cmdCtx, infraOptions{})
	if err != nil {
		return err
	}
	defer in.close(cmdCtx.Logger)

	return printQueueDepth(ctx, cmdCtx.Out, in.stores.Queue)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
