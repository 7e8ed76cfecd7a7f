// Package main is the TreeRec CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/treerec/internal/cli"
	"github.com/hyperjump/treerec/internal/config"
	"github.com/hyperjump/treerec/internal/models"
	"github.com/hyperjump/treerec/internal/server"
	"github.com/hyperjump/treerec/internal/session"
	"github.com/hyperjump/treerec/internal/storage"
	"github.com/hyperjump/treerec/internal/watcher"
	"github.com/hyperjump/treerec/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultServerURL = "http://localhost:8080"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}
	command, rest := args[0], args[1:]
	switch command {
	case "server":
		return runServer(rest, stderr)
	case "search", "social", "stream", "view":
		return runAction(command, rest, stdout, stderr)
	case "recommend":
		return runRecommend(rest, stdout, stderr)
	case "interests":
		return runInterests(rest, stdout, stderr)
	case "status":
		return runStatus(rest, stdout, stderr)
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "treerec version %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}
}

func runServer(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file path (default: "+config.DefaultPath+", then ./"+config.LocalPath+")")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, resolvedPath, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", debugMode))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sess, err := session.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize session", zap.Error(err))
		return 1
	}
	defer sess.Close()

	var srvOpts []server.ServerOption
	if len(cfg.Watch.Directories) > 0 {
		watchSvc := newCatalogWatcher(cfg, sess, logger, debugMode)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Error("failed to start watcher", zap.Error(err))
			return 1
		}
		defer watchSvc.Stop()
		watchSvc.SyncExistingFiles()
		srvOpts = append(srvOpts, server.WithWatcher(watchSvc))
	}

	srv := server.NewServer(sess, &cfg.Server, logger, srvOpts...)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		logger.Error("server failed", zap.Error(err))
		return 1
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	return 0
}

func newCatalogWatcher(cfg *config.Config, sess *session.Session, logger *zap.Logger, debug bool) *watcher.Watcher {
	var opts []watcher.WatcherOption
	if debug {
		opts = append(opts, watcher.WithLogger(logger))
	}
	return watcher.NewWatcher(
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		func(ctx context.Context, path string) {
			if _, err := sess.ImportFile(ctx, path); err != nil {
				logger.Warn("catalog import failed", zap.String("path", path), zap.Error(err))
			}
		},
		opts...,
	)
}

// commonFlags are shared by every client subcommand.
type commonFlags struct {
	configPath string
	serverURL  string
	output     string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file path for in-process mode")
	fs.StringVar(&c.serverURL, "server", defaultServerURL, `server URL (empty = run in-process on a fresh session)`)
	fs.StringVar(&c.output, "output", "text", "output format: text or json")
}

// backend returns the client for the chosen mode and a cleanup func.
func (c *commonFlags) backend(ctx context.Context) (cli.Backend, func(), error) {
	if c.serverURL != "" {
		return cli.NewClient(c.serverURL), func() {}, nil
	}
	cfg, _, err := config.Resolve(c.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	// a one-shot session never touches the configured journal file
	cfg.Storage.DatabasePath = storage.MemoryPath
	logger := zap.NewNop()
	if cfg.Debug {
		if logger, err = utils.NewLogger(true); err != nil {
			return nil, nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	sess, err := session.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return cli.NewLocal(sess), func() {
		_ = sess.Close()
		_ = logger.Sync()
	}, nil
}

// argsReorder moves flags that appear after positional arguments to the front so that
// flag.Parse sees them ("treerec search tênis --output json").
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// joinArgs joins positional args so multi-word input works with or without quotes.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAction(command string, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	fs.Usage = func() { printActionUsage(fs, command) }
	if err := fs.Parse(argsReorder(args)); err != nil {
		return 2
	}
	input := joinArgs(fs.Args())
	if input == "" {
		printActionUsage(fs, command)
		return 1
	}
	format, err := cli.ParseOutputFormat(common.output)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	ctx := context.Background()
	b, cleanup, err := common.backend(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer cleanup()

	result, err := dispatchAction(ctx, b, command, input)
	if err != nil {
		fmt.Fprintf(stderr, "%s failed: %v\n", command, err)
		return 1
	}
	if err := cli.WriteActionResult(stdout, result, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func dispatchAction(ctx context.Context, b cli.Backend, command, input string) (*models.ActionResult, error) {
	switch command {
	case "search":
		return b.Search(ctx, input)
	case "social":
		return b.SocialPost(ctx, input)
	case "stream":
		return b.Streaming(ctx, input)
	case "view":
		return b.View(ctx, input)
	default:
		return nil, fmt.Errorf("unknown action %q", command)
	}
}

func printActionUsage(fs *flag.FlagSet, command string) {
	arg := map[string]string{
		"search": "<query>",
		"social": "<post text>",
		"stream": "<watched title>",
		"view":   "<item id>",
	}[command]
	fmt.Fprintf(fs.Output(), "Usage: treerec %s [flags] %s\n\n", command, arg)
	fs.PrintDefaults()
}

func runRecommend(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	limit := fs.Int("limit", 0, "number of recommendations (0 = server default)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(common.output)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	ctx := context.Background()
	b, cleanup, err := common.backend(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer cleanup()

	recs, err := b.Recommendations(ctx, *limit)
	if err != nil {
		fmt.Fprintf(stderr, "recommend failed: %v\n", err)
		return 1
	}
	if err := cli.WriteRecommendations(stdout, recs, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func runInterests(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("interests", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(common.output)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	ctx := context.Background()
	b, cleanup, err := common.backend(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer cleanup()

	entries, err := b.Interests(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "interests failed: %v\n", err)
		return 1
	}
	if err := cli.WriteInterests(stdout, entries, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func runStatus(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(common.output)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	ctx := context.Background()
	b, cleanup, err := common.backend(ctx)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer cleanup()

	st, err := b.Status(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Status failed: %v\n", err)
		return 1
	}
	if err := cli.WriteStatus(stdout, st, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `TreeRec - interest-driven product recommendations

Usage:
  treerec server [--config path] [--debug]
  treerec search [flags] <query>
  treerec social [flags] <post text>
  treerec stream [flags] <watched title>
  treerec view [flags] <item id>
  treerec recommend [--limit n] [flags]
  treerec interests [flags]
  treerec status [flags]
  treerec version

Client flags:
  --server url     server URL (default `+defaultServerURL+`; "" runs in-process on a fresh session)
  --config path    config file for in-process mode
  --output format  text or json

Examples:
  treerec search tênis de corrida
  treerec social "treino de yoga hoje" --output json
  treerec view p1
  treerec recommend --limit 3
`)
}
