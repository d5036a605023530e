// Package main provides a one-shot thumbnail tool using the same naming
// scheme and cache semantics as the site builder.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/euforicio/sitemd/internal/buildinfo"
	"github.com/euforicio/sitemd/internal/config"
	"github.com/euforicio/sitemd/internal/media"
	"github.com/euforicio/sitemd/internal/scale"
)

func main() {
	flags := pflag.NewFlagSet("sitemd-thumb", pflag.ExitOnError)
	width := flags.IntP("width", "W", 0, "target width in pixels")
	height := flags.IntP("height", "H", 0, "target height in pixels")
	tool := flags.String("resizer", config.ResizeMagick, "resizer: magick or native")
	verbose := flags.BoolP("verbose", "v", false, "enable verbose logging")
	version := flags.Bool("version", false, "print version and exit")

	if err := flags.Parse(os.Args[1:]); err != nil {
		slog.Error("flag parsing failed", slog.Any("err", err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *version {
		logger.Info("sitemd-thumb", slog.String("version", buildinfo.Summary()))
		return
	}

	if flags.NArg() != 1 {
		logger.Error("usage: sitemd-thumb [--width N] [--height N] <image>")
		os.Exit(2)
	}
	src := flags.Arg(0)

	var req scale.Request
	switch {
	case *width > 0 && *height > 0:
		req = scale.Both(*width, *height)
	case *width > 0:
		req = scale.WidthOnly(*width)
	case *height > 0:
		req = scale.HeightOnly(*height)
	default:
		logger.Error("at least one of --width or --height is required")
		os.Exit(2)
	}

	var resizer media.Resizer
	switch *tool {
	case config.ResizeNative:
		resizer = media.NativeResizer{}
	case config.ResizeMagick:
		resizer = media.MagickResizer{}
	default:
		logger.Error("unknown resizer", slog.String("resizer", *tool))
		os.Exit(2)
	}

	ctx := context.Background()

	size, err := media.FileMeasurer{}.Measure(ctx, src)
	if err != nil {
		logger.Error("measure failed", slog.Any("err", err))
		os.Exit(1)
	}

	rendered, err := scale.Compute(req, size)
	if err != nil {
		logger.Error("compute failed", slog.Any("err", err))
		os.Exit(1)
	}

	thumb, err := media.NewThumbnailer(resizer, logger).Materialize(ctx, src, req)
	if err != nil {
		logger.Error("thumbnail failed", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("thumbnail ready",
		slog.String("path", thumb),
		slog.String("source", size.String()),
		slog.String("rendered", rendered.String()))
}
