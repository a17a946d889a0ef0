package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/eringen/pubsite"
)

// version is set at build time via ldflags.
var version = "dev"

// CLI is the root command line. Global flags apply to every subcommand.
type CLI struct {
	Config  string `short:"c" help:"Site configuration file" default:"site.yaml"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Build   BuildCmd   `cmd:"" help:"Build the site into the output directory"`
	Serve   ServeCmd   `cmd:"" help:"Build, serve and rebuild the site on change"`
	New     NewCmd     `cmd:"" help:"Create a new site project"`
	Version VersionCmd `cmd:"" help:"Print the pubsite version"`
}

// AfterApply runs after flag parsing and installs the default logger.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// BuildCmd implements 'pubsite build'.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory, overrides output_dir"`
	Drafts bool   `help:"Include draft documents"`
	Force  bool   `short:"f" help:"Rewrite every page even when unchanged"`
}

func (b *BuildCmd) Run(ctx context.Context, cli *CLI) error {
	cfg, err := pubsite.LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.OutputDir = b.Output
	}
	if b.Drafts {
		cfg.IncludeDrafts = true
	}

	site, err := pubsite.New(cfg, pubsite.WithLogger(slog.Default()), pubsite.WithForce(b.Force))
	if err != nil {
		return err
	}
	report, err := site.Build(ctx)
	fmt.Printf("%d rendered, %d unchanged, %d drafts skipped, %d images resized -> %s\n",
		report.Rendered, report.Unchanged, report.Drafts, report.Images, cfg.OutputDir)
	return err
}

// ServeCmd implements 'pubsite serve'.
type ServeCmd struct {
	Addr   string `short:"a" help:"Listen address, overrides addr"`
	Drafts bool   `help:"Include draft documents"`
}

func (s *ServeCmd) Run(ctx context.Context, cli *CLI) error {
	cfg, err := pubsite.LoadConfig(cli.Config)
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Addr = s.Addr
	}
	if s.Drafts {
		cfg.IncludeDrafts = true
	}

	site, err := pubsite.New(cfg, pubsite.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	return site.Serve(ctx)
}

// NewCmd implements 'pubsite new'.
type NewCmd struct {
	Name string `arg:"" help:"Project directory to create"`
}

func (n *NewCmd) Run() error {
	return runNew(n.Name, os.Stdout)
}

// VersionCmd implements 'pubsite version'.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Printf("pubsite %s\n", version)
	return nil
}

func main() {
	// A missing .env is fine; it only supplies PUBSITE_* overrides.
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pubsite"),
		kong.Description("A static blog generator: markdown in, HTML out."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(&cli); err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
