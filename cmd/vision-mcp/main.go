package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/vision-nodes-mcp/internal/config"
	"github.com/ironsheep/vision-nodes-mcp/internal/server"
	"github.com/ironsheep/vision-nodes-mcp/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "vision-mcp - MCP server for computer vision nodes")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: vision-mcp [options]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment variables (flags take precedence):")
	fmt.Fprintf(out, "  %s=debug       Log level\n", config.EnvLogLevel)
	fmt.Fprintf(out, "  %s=json       Log format (text or json)\n", config.EnvLogFormat)
	fmt.Fprintf(out, "  %s=native        Vision engine (native or opencv)\n", config.EnvEngine)
	fmt.Fprintf(out, "  %s=:8080         Serve MCP over websocket instead of stdio\n", config.EnvListen)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Without a listen address the server speaks MCP over stdin/stdout.")
	fmt.Fprintln(out, "Configure it in your MCP client (e.g., Claude Desktop).")
}

func main() {
	// Handle the bare version and help words the same as their flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			printVersion()
			return
		case "help":
			usage()
			return
		}
	}

	cfg := config.FromEnv()

	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Print version information")
	flag.BoolVar(&showVersion, "v", false, "Print version information (shorthand)")
	flag.StringVar(&cfg.Listen, "listen", cfg.Listen, "Websocket listen address, e.g. :8080")
	flag.StringVar(&cfg.Engine, "engine", cfg.Engine, "Vision engine: native or opencv")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: trace, debug, info, warn or error")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		printVersion()
		return
	}

	if err := cfg.Validate(vision.EngineNative, vision.EngineOpenCV); err != nil {
		fmt.Fprintf(os.Stderr, "vision-mcp: %v\n", err)
		os.Exit(2)
	}

	// Logs go to stderr; stdout is for the MCP protocol
	log := cfg.NewLogger(os.Stderr)
	log.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
		"engine":  cfg.Engine,
	}).Debug("starting vision MCP server")

	engine, err := vision.NewEngine(cfg.Engine)
	if err != nil {
		log.WithError(err).Fatal("failed to create vision engine")
	}

	srv := server.New(vision.NewProcessor(engine), server.Options{
		Logger:  log,
		Version: Version,
	})

	if cfg.Listen == "" {
		if err := srv.Run(); err != nil {
			log.WithError(err).Fatal("server error")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
		log.WithError(err).Fatal("server error")
	}
}

func printVersion() {
	fmt.Printf("vision-mcp %s\n", Version)
	fmt.Printf("  Build time: %s\n", BuildTime)
	fmt.Printf("  Git commit: %s\n", GitCommit)
}
