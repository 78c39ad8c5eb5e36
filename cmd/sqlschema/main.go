package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/alexanderjulianmartinez/sqlite-schema/internal/command"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/config"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/drift"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/publish"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/render"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/server"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source/mysql"
	"github.com/alexanderjulianmartinez/sqlite-schema/internal/source/sqlite"
)

const mysqlPrefix = "mysql:"

var errDriftBlocked = errors.New("blocking schema drift detected")

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "sqlschema error: load .env: %v\n", err)
		os.Exit(1)
	}
	if err := run(context.Background(), os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "sqlschema error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 2 {
		printUsage(stdout)
		return nil
	}

	switch args[1] {
	case "schema":
		return runSchema(ctx, args[2:], stdout)
	case "diff":
		return runDiff(ctx, args[2:], stdout)
	case "publish":
		return runPublish(ctx, args[2:], stdout)
	case "serve":
		return runServe(ctx, args[2:])
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

// env holds the state shared by every subcommand after flag parsing.
type env struct {
	cfg *config.Config
	log *logrus.Logger
}

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("SQLSCHEMA_CONFIG"), "Path to config.yaml")
	return fs, configPath
}

func loadEnv(configPath string) (*env, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}
	if level := os.Getenv("SQLSCHEMA_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	log, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log}, nil
}

func (e *env) sqliteOptions() []sqlite.Option {
	return []sqlite.Option{
		sqlite.WithDriver(e.cfg.Source.Driver),
		sqlite.WithTimeout(e.cfg.Source.Timeout),
		sqlite.WithLogger(e.log),
	}
}

func runSchema(ctx context.Context, args []string, stdout io.Writer) error {
	fs, configPath := newFlagSet("schema")
	driver := fs.String("driver", "", "SQLite driver: sqlite or sqlite3")
	format := fs.String("format", "", "Output format: "+strings.Join(render.Formats, ", "))
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(*configPath)
	if err != nil {
		return err
	}
	if *driver != "" {
		e.cfg.Source.Driver = *driver
	}
	if *format != "" {
		e.cfg.Output.Format = *format
	}
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	// The text format goes through the dispatcher, exactly as a host
	// would call it.
	if e.cfg.Output.Format == render.FormatText {
		out, err := command.NewDispatcher(e.log, e.sqliteOptions()...).Run(ctx, command.SchemaCommand, fs.Args())
		if err != nil {
			return err
		}
		_, err = io.WriteString(stdout, out.Text)
		return err
	}

	if fs.NArg() == 0 || fs.Arg(0) == "" {
		return fmt.Errorf("%w: need path to db", source.ErrMissingArgument)
	}
	info, err := sqlite.NewInspector(fs.Arg(0), e.sqliteOptions()...).Inspect(ctx)
	if err != nil {
		return err
	}
	text, err := render.Format(info, e.cfg.Output.Format)
	if err != nil {
		return err
	}
	_, err = io.WriteString(stdout, text)
	return err
}

func runDiff(ctx context.Context, args []string, stdout io.Writer) error {
	fs, configPath := newFlagSet("diff")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: diff needs <old> and <new>", source.ErrMissingArgument)
	}

	e, err := loadEnv(*configPath)
	if err != nil {
		return err
	}

	oldInfo, err := e.inspect(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	newInfo, err := e.inspect(ctx, fs.Arg(1))
	if err != nil {
		return err
	}

	report := drift.Compare(oldInfo, newInfo)
	if _, err := io.WriteString(stdout, report.String()); err != nil {
		return err
	}
	if report.HasBlocking() {
		return errDriftBlocked
	}
	return nil
}

// inspect reads target, a SQLite path or "mysql:<dsn>".
func (e *env) inspect(ctx context.Context, target string) (*source.DatabaseInfo, error) {
	if dsn, ok := strings.CutPrefix(target, mysqlPrefix); ok {
		i, err := mysql.NewInspector(ctx, dsn, e.log)
		if err != nil {
			return nil, err
		}
		defer i.Close()
		return i.Inspect(ctx)
	}
	return sqlite.NewInspector(target, e.sqliteOptions()...).Inspect(ctx)
}

func runPublish(ctx context.Context, args []string, stdout io.Writer) error {
	fs, configPath := newFlagSet("publish")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return fmt.Errorf("missing required flag: --config")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: need path to db", source.ErrMissingArgument)
	}

	e, err := loadEnv(*configPath)
	if err != nil {
		return err
	}
	if err := e.cfg.RequireKafka(); err != nil {
		return err
	}

	info, err := e.inspect(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	w, err := publish.NewKafkaWriter(strings.Join(e.cfg.Kafka.Brokers, ","), e.cfg.Kafka.Topic)
	if err != nil {
		return err
	}
	p := publish.New(w, e.log)
	defer p.Close()

	id, err := p.Publish(ctx, info)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Published snapshot %s (%d columns) to %s\n", id, len(info.Tables), e.cfg.Kafka.Topic)
	return nil
}

func runServe(ctx context.Context, args []string) error {
	fs, configPath := newFlagSet("serve")
	addr := fs.String("addr", "", "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := loadEnv(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		e.cfg.Server.Addr = *addr
	}

	srv := server.NewServer(e.cfg.Server.Addr, command.NewDispatcher(e.log, e.sqliteOptions()...), e.log)

	errCh := make(chan error, 1)
	go func() {
		e.log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	e.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `sqlschema - list SQLite table columns and their declared types

Usage:
  sqlschema schema [--config <path>] [--driver sqlite|sqlite3] [--format text|detailed|json|yaml] <db>
  sqlschema diff [--config <path>] <old> <new>
  sqlschema publish --config <path> <db>
  sqlschema serve [--config <path>] [--addr <host:port>]

Commands:
  schema    Print each column's table and declared type
  diff      Compare two schemas; <old>/<new> are SQLite paths or mysql:<dsn>
  publish   Publish a schema snapshot to Kafka
  serve     Expose commands over HTTP
  help      Show this help message
`)
}
