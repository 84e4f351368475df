package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/phambaophuc/image-enhance/internal/client"
	"github.com/phambaophuc/image-enhance/internal/form"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var errSubmission = errors.New("submission failed")

func run(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	state, closeFiles, err := buildState(cmd, logger)
	if err != nil {
		return err
	}
	defer closeFiles()

	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	submitter := client.NewSubmitter(cmd.String("server"), &http.Client{}, logger)
	page := client.NewPage()

	res := submitter.Submit(ctx, state, page)
	return report(ctx, cmd.Writer, submitter, page, res, cmd.String("out"))
}

// buildState fills the form from flags and opens every selected file.
func buildState(cmd *cli.Command, logger *zap.Logger) (form.State, func(), error) {
	var opened []io.Closer
	closeAll := func() {
		for _, c := range opened {
			c.Close()
		}
	}

	openFile := func(path string) (form.File, error) {
		f, err := os.Open(path)
		if err != nil {
			return form.File{}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		opened = append(opened, f)
		return form.File{Name: filepath.Base(path), Reader: f}, nil
	}

	state := form.State{
		Options:      cmd.StringSlice("option"),
		OutputFormat: cmd.String("format"),
		Position:     cmd.String("position"),
		Opacity:      cmd.String("opacity"),
		Scale:        cmd.String("scale"),
	}

	for _, path := range cmd.Args().Slice() {
		f, err := openFile(path)
		if err != nil {
			closeAll()
			return form.State{}, nil, err
		}
		state.Images = append(state.Images, f)
	}

	if path := cmd.String("logo"); path != "" {
		f, err := openFile(path)
		if err != nil {
			closeAll()
			return form.State{}, nil, err
		}
		state.Logo = &f
	}

	sliders, err := readSliders(cmd, logger)
	if err != nil {
		closeAll()
		return form.State{}, nil, err
	}
	state.Sliders = sliders

	return state, closeAll, nil
}

// readSliders moves each slider to its flag value through a bound panel,
// so labels are rendered the same way the page renders them.
func readSliders(cmd *cli.Command, logger *zap.Logger) (form.Sliders, error) {
	panel := form.NewPanel(form.Sliders{Brightness: 50, Contrast: 50, Sharpen: 50, Temp: 50})
	if err := form.BindSliderLabels(panel); err != nil {
		return form.Sliders{}, err
	}

	for _, name := range form.SliderNames {
		panel.Slider(name).Set(int(cmd.Int(name)))
		logger.Debug("Slider", zap.String("name", name), zap.String("label", panel.LabelFor(name)))
	}

	return panel.Snapshot()
}

func report(ctx context.Context, w io.Writer, submitter *client.Submitter, page *client.Page, res client.Result, outDir string) error {
	fmt.Fprintln(w, page.Status())
	for _, src := range page.Results() {
		fmt.Fprintln(w, src)
	}

	switch res.Outcome {
	case client.OutcomeHTTPError, client.OutcomeClientError:
		if res.Err != nil {
			return fmt.Errorf("%w: %v", errSubmission, res.Err)
		}
		return errSubmission
	}

	if outDir == "" {
		return nil
	}

	for _, src := range page.Results() {
		dest, err := submitter.Download(ctx, src, outDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "saved %s\n", dest)
	}
	return nil
}
