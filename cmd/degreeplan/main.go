package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hpungsan/degreeplan/internal/advisor"
	"github.com/hpungsan/degreeplan/internal/cache"
	"github.com/hpungsan/degreeplan/internal/config"
	"github.com/hpungsan/degreeplan/internal/db"
	"github.com/hpungsan/degreeplan/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"import": true, "export": true, "majors": true,
	"evaluate": true, "suggest": true, "advise": true, "preview": true,
	"history": true, "show": true, "purge": true,
	"serve": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	for _, arg := range args[1:] {
		if cliCommands[arg] {
			return true
		}
		switch arg {
		case "--help", "-h", "--version", "-v":
			return true
		case "--verbose":
			continue
		}
		return false
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	switch args[1] {
	case "--help", "-h", "--version", "-v", "help":
		return true
	}
	return false
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
       _                                  _
    __| | ___  __ _ _ __ ___  ___ _ __ | | __ _ _ __
   / _' |/ _ \/ _' | '__/ _ \/ _ \ '_ \| |/ _' | '_ \
  | (_| |  __/ (_| | | |  __/  __/ |_) | | (_| | | | |
   \__,_|\___|\__, |_|  \___|\___| .__/|_|\__,_|_| |_|
              |___/              |_|

  Major progress from a course list

  Usage: degreeplan <command> [options]
         degreeplan --help

  MCP server mode requires piped input.`)
}

// newLogger writes console-encoded logs to stderr; stdout carries results
// and the MCP protocol.
func newLogger(level zap.AtomicLevel) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newAdvisor wires the configured generator and advice cache. The returned
// func releases both.
func newAdvisor(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*advisor.Advisor, func()) {
	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	if cfg.Advisor.Disabled {
		return advisor.New(nil, advisor.WithLogger(logger)), cleanup
	}

	gen, err := advisor.NewGenerator(ctx, cfg.AdvisorSettings())
	if err != nil {
		logger.Warn("advisor disabled", zap.Error(err))
		return advisor.New(nil, advisor.WithLogger(logger)), cleanup
	}
	if c, ok := gen.(io.Closer); ok {
		closers = append(closers, c)
	}

	var adviceCache cache.Cache = cache.NewMemory()
	if addr := cfg.Cache.RedisAddr; addr != "" {
		r := cache.NewRedis(addr)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := r.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, using in-process cache", zap.String("addr", addr), zap.Error(err))
			_ = r.Close()
		} else {
			adviceCache = r
			closers = append(closers, r)
		}
	}

	return advisor.New(gen,
		advisor.WithCache(adviceCache, cfg.CacheTTL()),
		advisor.WithLogger(logger),
	), cleanup
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	logger := newLogger(level)
	defer func() { _ = logger.Sync() }()

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion(os.Args) {
		app := newCLIApp(&appDeps{logger: logger, level: level})
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}
	baseDir := filepath.Join(homeDir, ".degreeplan")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	config.ApplyEnv(cfg, os.Getenv)
	db.ConfigurePool(database, cfg)

	adv, closeAdvisor := newAdvisor(context.Background(), cfg, logger)
	defer closeAdvisor()

	deps := &appDeps{db: database, cfg: cfg, advisor: adv, logger: logger, level: level}

	// CLI mode: known subcommand
	if isCLIMode(os.Args) {
		app := newCLIApp(deps)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'degreeplan --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(database, cfg, adv, logger, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
