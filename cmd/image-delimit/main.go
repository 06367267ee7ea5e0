package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ironsheep/image-delimit/internal/batch"
	"github.com/ironsheep/image-delimit/internal/config"
	"github.com/ironsheep/image-delimit/internal/logging"
	"github.com/ironsheep/image-delimit/internal/server"
	"github.com/ironsheep/image-delimit/internal/sink"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("image-delimit %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "serve", "split":
			cmd = args[0]
			args = args[1:]
		}
	}

	var err error
	switch cmd {
	case "split":
		err = runSplit(args)
	default:
		err = runServe(args)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "image-delimit: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("image-delimit - split scanned batches on blank delimiter pages")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  image-delimit [serve] [-config file.yaml]     Run the MCP server on stdin/stdout")
	fmt.Println("  image-delimit split -input DIR|PDF -output DIR [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Run 'image-delimit split -h' for split options.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=#FFFFFF   Delimiter color\n", config.EnvColor)
	fmt.Printf("  %s=10     Blank threshold (0-255)\n", config.EnvThreshold)
	fmt.Printf("  %s=debug   Log level\n", config.EnvLogLevel)
}

// loadConfig layers defaults, the config file and the environment.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Debug("starting server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit))

	srv := server.New(server.WithConfig(cfg), server.WithLogger(logger))
	return srv.Run()
}

func runSplit(args []string) error {
	fs := flag.NewFlagSet("split", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML config file")
	input := fs.String("input", "", "Directory of images, scanned PDF, or single image")
	output := fs.String("output", "", "Output directory")
	color := fs.String("color", "", "Delimiter color #RRGGBB (overrides config)")
	threshold := fs.Float64("threshold", -1, "Blank threshold 0-255 (overrides config)")
	scheme := fs.String("scheme", "", "Naming scheme prefix (overrides config)")
	folders := fs.Bool("folders", true, "Put each group in its own folder")
	move := fs.Bool("move", false, "Move files instead of copying")
	dryRun := fs.Bool("dry-run", false, "Print the plan without writing files")
	workers := fs.Int("workers", 0, "Decode workers (overrides config)")
	smooth := fs.Float64("smooth", -1, "Gaussian blur radius before sampling (overrides config)")
	dpi := fs.Int("dpi", 0, "PDF render DPI (overrides config)")
	grid := fs.Int("grid", 0, "Sample an n x n grid instead of the three fixed points (overrides config)")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("-input is required")
	}
	if *output == "" && !*dryRun {
		return errors.New("-output is required unless -dry-run is set")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	// Only flags given on the command line override the file and environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "color":
			cfg.DelimiterColor = *color
		case "threshold":
			cfg.ColorThreshold = *threshold
		case "scheme":
			cfg.NamingScheme = *scheme
		case "folders":
			cfg.CreateFolders = *folders
		case "move":
			cfg.Move = *move
		case "workers":
			cfg.Workers = *workers
		case "smooth":
			cfg.SmoothRadius = *smooth
		case "dpi":
			cfg.PDFDPI = *dpi
		case "grid":
			cfg.SampleGrid = *grid
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var out sink.Sink = &sink.FolderSink{
		Root:          *output,
		Scheme:        cfg.NamingScheme,
		CreateFolders: cfg.CreateFolders,
		Move:          cfg.Move,
		Logger:        logger,
	}
	if *dryRun {
		out = sink.DryRun{Root: *output, Scheme: cfg.NamingScheme, CreateFolders: cfg.CreateFolders}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := batch.NewRunner(cfg, nil, logger).Run(ctx, *input, out)
	if report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			logger.Error("failed to write report", zap.Error(encErr))
		}
	}
	return err
}
