// Package main provides the sitemd build CLI.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/euforicio/sitemd/internal/buildinfo"
	"github.com/euforicio/sitemd/internal/compiler"
	"github.com/euforicio/sitemd/internal/config"
	"github.com/euforicio/sitemd/internal/media"
	"github.com/euforicio/sitemd/internal/site"
)

func main() {
	cfg := config.Default()

	// The config file has to be applied before the other flags bind their
	// defaults, so --config is pre-parsed with unknown flags allowed.
	pre := pflag.NewFlagSet("sitemd", pflag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.Usage = func() {}
	preConfig := pre.StringP("config", "c", os.Getenv("SITEMD_CONFIG"), "")
	_ = pre.Parse(os.Args[1:])

	if *preConfig != "" {
		if err := config.LoadFile(*preConfig, &cfg); err != nil {
			slog.Error("load config file failed", slog.Any("err", err))
			os.Exit(1)
		}
	}
	config.ApplyEnvOverrides(&cfg)

	flags := pflag.NewFlagSet("sitemd", pflag.ExitOnError)
	flags.StringP("config", "c", *preConfig, "optional YAML config file")
	config.RegisterFlags(flags, &cfg)
	if err := flags.Parse(os.Args[1:]); err != nil {
		slog.Error("flag parsing failed", slog.Any("err", err))
		os.Exit(1)
	}

	if err := config.Finalize(&cfg); err != nil {
		slog.Error("invalid configuration", slog.Any("err", err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("starting sitemd",
		slog.String("version", buildinfo.Summary()),
		slog.String("root", cfg.RootDir),
		slog.String("output", cfg.OutputDir))

	var resizer media.Resizer
	switch cfg.ResizeTool {
	case config.ResizeNative:
		resizer = media.NativeResizer{}
	default:
		resizer = media.MagickResizer{}
	}

	comp := compiler.New(
		media.FileMeasurer{},
		media.NewThumbnailer(resizer, logger),
		logger,
		&compiler.Options{Parallelism: cfg.Parallelism},
	)

	builder, err := site.New(comp, logger, site.Options{
		Root:        cfg.RootDir,
		OutputDir:   cfg.OutputDir,
		Extensions:  cfg.Extensions,
		CleanOutput: cfg.CleanOutput,
	})
	if err != nil {
		logger.Error("init builder failed", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := builder.Build(ctx); err != nil {
		logger.Error("build failed", slog.Any("err", err))
		if !cfg.Watch {
			os.Exit(1)
		}
	}

	if cfg.Watch {
		if err := builder.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("watch failed", slog.Any("err", err))
			os.Exit(1)
		}
	}
}
