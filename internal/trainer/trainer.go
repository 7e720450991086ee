// Package trainer shells out to an external YOLOv5 training entry point with
// a fixed set of hyperparameters. It is invocation glue only; the training
// itself happens in the external process.
package trainer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Hyperparameters passed to the training script unless overridden.
const (
	DefaultImageSize = 416
	DefaultBatchSize = 1
	DefaultEpochs    = 100
	DefaultWorkers   = 0

	defaultPython = "python3"
)

// Options configures one training invocation.
type Options struct {
	// Python is the interpreter binary. Defaults to "python3".
	Python string
	// TrainScript is the path to the YOLOv5 train.py entry point.
	TrainScript string
	// Data is the dataset description YAML passed as --data.
	Data string
	// Weights is the initial weights file passed as --weights.
	Weights string

	ImageSize int
	BatchSize int
	Epochs    int
	Workers   int

	// DryRun prints the command line without executing it.
	DryRun bool

	// Stdout/Stderr receive the training process output. Default to the
	// process streams.
	Stdout io.Writer
	Stderr io.Writer
}

func (o Options) python() string {
	if o.Python == "" {
		return defaultPython
	}
	return o.Python
}

func (o Options) withDefaults() Options {
	if o.ImageSize == 0 {
		o.ImageSize = DefaultImageSize
	}
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Epochs == 0 {
		o.Epochs = DefaultEpochs
	}
	// Workers defaults to 0 already, which is the value we want.
	return o
}

// Args returns the argument vector handed to the interpreter.
func (o Options) Args() []string {
	o = o.withDefaults()
	args := []string{
		o.TrainScript,
		"--img", strconv.Itoa(o.ImageSize),
		"--batch", strconv.Itoa(o.BatchSize),
		"--epochs", strconv.Itoa(o.Epochs),
		"--workers", strconv.Itoa(o.Workers),
	}
	if o.Data != "" {
		args = append(args, "--data", o.Data)
	}
	if o.Weights != "" {
		args = append(args, "--weights", o.Weights)
	}
	return args
}

// CommandLine renders the full command for logging and dry runs.
func (o Options) CommandLine() string {
	return o.python() + " " + strings.Join(o.Args(), " ")
}

// Run validates the options and executes (or, in dry-run mode, prints) the
// training command, streaming its output.
func Run(ctx context.Context, o Options) error {
	if o.TrainScript == "" {
		return fmt.Errorf("no training script given")
	}

	stdout := o.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := o.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	if o.DryRun {
		fmt.Fprintf(stdout, "[DRY-RUN] Would execute: %s\n", o.CommandLine())
		return nil
	}

	cmd := exec.CommandContext(ctx, o.python(), o.Args()...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("training run failed: %w", err)
	}
	return nil
}
