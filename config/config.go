package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
)

const (
	// MeasureEdit selects the edit distance metric.
	MeasureEdit = "edit"
	// MeasureKmer selects a k-mer frequency metric.
	MeasureKmer = "kmer"

	// DefaultCheckpointDir is used when no checkpoint directory is configured.
	DefaultCheckpointDir = "./seqdist.checkpoint"
)

var (
	// ErrMissingOption is returned when a mandatory option is empty.
	ErrMissingOption = errors.New("missing mandatory option")

	// ErrInvalidOption is returned when an option value fails validation.
	ErrInvalidOption = errors.New("invalid option")
)

// OptionError describes a rejected option value.
type OptionError struct {
	Name   string
	Value  string
	Reason string
	cause  error
}

func (e *OptionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("option %s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("option %s %q: %s", e.Name, e.Value, e.Reason)
}

func (e *OptionError) Unwrap() error { return e.cause }

// Options is the run configuration.
type Options struct {
	// NCores is the number of workers. It must not exceed the number of CPUs.
	NCores int
	// DistMatFile is the path of the memory-mapped matrix file.
	DistMatFile string
	// Fasta is the path of the input sequences.
	Fasta string
	// Measure is "edit" or "kmer".
	Measure string
	// SubMeasure selects the kmer variant ("cosine" or "euclidean").
	SubMeasure string
	// MeasureOpt is the cost matrix path for edit, or k for kmer.
	MeasureOpt string
	// CheckpointDir holds the options and worker checkpoints.
	CheckpointDir string
	// PrintResult dumps the matrix after the run.
	PrintResult bool
	// Restart resumes a previous run from CheckpointDir. Not tracked.
	Restart bool
}

// Default returns options with every default applied.
func Default() Options {
	return Options{
		NCores:        runtime.NumCPU(),
		CheckpointDir: DefaultCheckpointDir,
	}
}

// Validate checks every option and returns all problems joined together.
// On restart only the fields that cannot come from the checkpoint are checked.
func (o *Options) Validate() error {
	var errs []error

	if o.CheckpointDir == "" {
		errs = append(errs, &OptionError{Name: "checkpointdir", Reason: "must not be empty", cause: ErrMissingOption})
	}

	if o.Restart {
		return errors.Join(errs...)
	}

	if err := o.ValidateNCores(); err != nil {
		errs = append(errs, err)
	}

	if o.DistMatFile == "" {
		errs = append(errs, &OptionError{Name: "distmatfname", Reason: "matrix file name is required", cause: ErrMissingOption})
	}

	if o.Fasta == "" {
		errs = append(errs, &OptionError{Name: "fasta", Reason: "sequence file is required", cause: ErrMissingOption})
	} else if _, err := os.Stat(o.Fasta); err != nil {
		errs = append(errs, &OptionError{Name: "fasta", Value: o.Fasta, Reason: "file does not exist", cause: err})
	}

	switch o.Measure {
	case MeasureEdit, MeasureKmer:
	case "":
		errs = append(errs, &OptionError{Name: "measure", Reason: "known measures are: edit, kmer", cause: ErrMissingOption})
	default:
		errs = append(errs, &OptionError{Name: "measure", Value: o.Measure, Reason: "known measures are: edit, kmer", cause: ErrInvalidOption})
	}

	return errors.Join(errs...)
}

// ValidateNCores checks that NCores is between 1 and the number of CPUs.
// Restarts call it on the restored options.
func (o *Options) ValidateNCores() error {
	if o.NCores <= 0 || o.NCores > runtime.NumCPU() {
		return &OptionError{
			Name:   "ncores",
			Value:  strconv.Itoa(o.NCores),
			Reason: fmt.Sprintf("must be between 1 and the number of system cores (%d)", runtime.NumCPU()),
			cause:  ErrInvalidOption,
		}
	}
	return nil
}

// Field is a tracked option with its text codec.
type Field struct {
	Name string
	Get  func(o *Options) string
	Set  func(o *Options, value string) error
}

var tracked = []Field{
	{
		Name: "ncores",
		Get:  func(o *Options) string { return strconv.Itoa(o.NCores) },
		Set: func(o *Options, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			o.NCores = n
			return nil
		},
	},
	{
		Name: "distmatfname",
		Get:  func(o *Options) string { return o.DistMatFile },
		Set:  func(o *Options, v string) error { o.DistMatFile = v; return nil },
	},
	{
		Name: "fasta",
		Get:  func(o *Options) string { return o.Fasta },
		Set:  func(o *Options, v string) error { o.Fasta = v; return nil },
	},
	{
		Name: "measure",
		Get:  func(o *Options) string { return o.Measure },
		Set:  func(o *Options, v string) error { o.Measure = v; return nil },
	},
	{
		Name: "submeasure",
		Get:  func(o *Options) string { return o.SubMeasure },
		Set:  func(o *Options, v string) error { o.SubMeasure = v; return nil },
	},
	{
		Name: "measureopt",
		Get:  func(o *Options) string { return o.MeasureOpt },
		Set:  func(o *Options, v string) error { o.MeasureOpt = v; return nil },
	},
	{
		Name: "checkpointdir",
		Get:  func(o *Options) string { return o.CheckpointDir },
		Set:  func(o *Options, v string) error { o.CheckpointDir = v; return nil },
	},
	{
		Name: "printresult",
		Get:  func(o *Options) string { return strconv.FormatBool(o.PrintResult) },
		Set: func(o *Options, v string) error {
			switch v {
			case "true":
				o.PrintResult = true
			case "false":
				o.PrintResult = false
			default:
				return fmt.Errorf("boolean value %q is neither 'true' nor 'false'", v)
			}
			return nil
		},
	},
}

// Tracked returns the persisted options in checkpoint order.
// The restart flag is deliberately absent.
func Tracked() []Field {
	out := make([]Field, len(tracked))
	copy(out, tracked)
	return out
}
