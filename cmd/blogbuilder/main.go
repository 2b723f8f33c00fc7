package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/history"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/metrics"
	"git.home.luguber.info/inful/blogbuilder/internal/preview"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"blogbuilder.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Source      []string `short:"s" help:"Input root (directory or git URL), repeatable"`
		Output      string   `short:"o" help:"Output directory for the generated site"`
		Title       string   `help:"Site title"`
		Description string   `help:"Site description"`
		Share       []string `help:"Share provider spec Name:URLTemplate, repeatable"`
		HistoryDB   string   `help:"Build history database path" default:"blogbuilder-history.db"`
		NoHistory   bool     `help:"Do not record this build in the history database"`
	} `cmd:"" help:"Compile posts into a single self-contained HTML page"`

	Preview struct {
		Source []string `short:"s" help:"Input root (directory or git URL), repeatable"`
		Port   int      `short:"p" help:"Listen port" default:"8080"`
	} `cmd:"" help:"Serve the site locally and rebuild on source changes"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	History struct {
		HistoryDB string `help:"Build history database path" default:"blogbuilder-history.db"`
		Limit     int    `help:"Number of builds to show" default:"20"`
	} `cmd:"" help:"Show recent builds"`
}

func main() {
	ctx := kong.Parse(&CLI)

	var err error
	switch ctx.Command() {
	case "build":
		err = runBuild()
	case "preview":
		err = runPreview()
	case "init":
		err = runInit()
	case "history":
		err = runHistory()
	}
	if err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
}

// loadConfig merges the config file with command-line overrides.
func loadConfig(sources []string, output, title, description string, share []string) (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if len(sources) > 0 {
		cfg.Sources = sources
	}
	if output != "" {
		cfg.Output.Directory = output
	}
	if title != "" {
		cfg.Site.Title = title
	}
	if description != "" {
		cfg.Site.Description = description
	}
	if len(share) > 0 {
		cfg.Share = share
	}
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("no input sources configured (use --source or the sources key in %s)", CLI.Config)
	}
	cfg.SetupLogger(CLI.Verbose)
	return cfg, nil
}

func runBuild() error {
	cfg, err := loadConfig(CLI.Build.Source, CLI.Build.Output, CLI.Build.Title, CLI.Build.Description, CLI.Build.Share)
	if err != nil {
		return err
	}

	builder, err := build.NewBuilder(cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}

	report, buildErr := builder.Run(context.Background())
	reportIssues(report)
	if !CLI.Build.NoHistory {
		persistHistory(report)
	}
	return buildErr
}

func runPreview() error {
	cfg, err := loadConfig(CLI.Preview.Source, "", "", "", nil)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	builder, err := build.NewBuilder(cfg, metrics.NewPrometheusRecorder(registry))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return preview.Serve(ctx, cfg, builder, CLI.Preview.Port, registry)
}

func runInit() error {
	slog.Info("Initializing configuration", logfields.Path(CLI.Config))
	return config.Init(CLI.Config, CLI.Init.Force)
}

func runHistory() error {
	store, err := history.Open(CLI.History.HistoryDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(context.Background(), CLI.History.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no builds recorded")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-8s  %6dms  %s\n",
			e.Start.Format(time.RFC3339), e.Outcome, e.DurationMS, e.BuildID)
	}
	return nil
}

// reportIssues surfaces collected document-scoped problems as a summary next
// to the (possibly successful) artifact.
func reportIssues(report *build.Report) {
	if report == nil {
		return
	}
	for _, issue := range report.Issues {
		slog.Warn("Build issue",
			slog.String("severity", issue.Severity),
			slog.String("category", issue.Category),
			slog.String("message", issue.Message),
			slog.Any("context", issue.Context))
	}
}

func persistHistory(report *build.Report) {
	if report == nil {
		return
	}
	store, err := history.Open(CLI.Build.HistoryDB)
	if err != nil {
		slog.Warn("Cannot open build history", logfields.Error(err))
		return
	}
	defer func() { _ = store.Close() }()
	if err := store.Append(context.Background(), report); err != nil {
		slog.Warn("Cannot record build history", logfields.Error(err))
	}
}
