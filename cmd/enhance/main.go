// Command enhance uploads images to the enhancer server and prints or
// downloads the processed results.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatalf("enhance: %v", err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "enhance",
		Usage:     "Enhance images with the image-enhance server",
		ArgsUsage: "IMAGE...",
		Flags:     flags(),
		Action:    run,
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Base URL of the enhancer server",
			Value:   "http://localhost:8080",
			Sources: cli.EnvVars("ENHANCER_URL"),
		},
		&cli.StringFlag{
			Name:  "logo",
			Usage: "Logo image to composite onto every output",
		},
		&cli.StringSliceFlag{
			Name:    "option",
			Aliases: []string{"o"},
			Usage:   "Enhancement to apply (denoise, brightness, contrast, sharpen, temperature)",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format (png, jpeg, webp)",
			Value: "png",
		},
		&cli.IntFlag{Name: "brightness", Usage: "Brightness slider (0-100)", Value: 50},
		&cli.IntFlag{Name: "contrast", Usage: "Contrast slider (0-100)", Value: 50},
		&cli.IntFlag{Name: "sharpen", Usage: "Sharpen slider (0-100)", Value: 25},
		&cli.IntFlag{Name: "temp", Usage: "Temperature slider (0-100)", Value: 50},
		&cli.StringFlag{
			Name:  "position",
			Usage: "Logo position (top-left, top-right, bottom-left, bottom-right, center)",
			Value: "bottom-right",
		},
		&cli.StringFlag{Name: "opacity", Usage: "Logo opacity (0-1)", Value: "0.8"},
		&cli.StringFlag{Name: "scale", Usage: "Logo width relative to the image", Value: "0.25"},
		&cli.StringFlag{
			Name:  "out",
			Usage: "Directory to download processed images into",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout (0 for none)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log debug output",
		},
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
