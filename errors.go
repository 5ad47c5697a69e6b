package seqdist

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/seqdist/checkpoint"
	"github.com/hupe1980/seqdist/config"
	"github.com/hupe1980/seqdist/distance"
	"github.com/hupe1980/seqdist/engine"
	"github.com/hupe1980/seqdist/export"
	"github.com/hupe1980/seqdist/internal/resource"
	"github.com/hupe1980/seqdist/kmer"
	"github.com/hupe1980/seqdist/matrix"
	"github.com/hupe1980/seqdist/sequence"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is never produced by Run.
	KindUnknown Kind = iota
	// KindConfig covers rejected options and unusable input.
	KindConfig
	// KindIO covers file system and storage failures.
	KindIO
	// KindCorruption covers unreadable checkpoints, matrices and archives.
	KindCorruption
	// KindInvariant covers violated matrix invariants.
	KindInvariant
	// KindInterrupted means the run was canceled and can be restarted.
	KindInterrupted
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindIO:
		return "io"
	case KindCorruption:
		return "corruption"
	case KindInvariant:
		return "invariant"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// ExitCode is the process exit status the CLI uses for k.
func (k Kind) ExitCode() int {
	switch k {
	case KindConfig:
		return 2
	case KindIO:
		return 3
	case KindCorruption:
		return 4
	case KindInvariant:
		return 5
	case KindInterrupted:
		return 130
	default:
		return 1
	}
}

// Error is the error type returned by Run and its helpers.
//
// The original error can be accessed via errors.Unwrap.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err. Errors not produced by this package are
// classified the same way Run would classify them.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return classify(err)
}

var (
	configErrors = []error{
		config.ErrMissingOption,
		config.ErrInvalidOption,
		sequence.ErrNoSequences,
		distance.ErrUnknownMeasure,
		distance.ErrUnknownSubMeasure,
		distance.ErrInvalidMeasureOpt,
		distance.ErrCostMatrixFormat,
		distance.ErrAsymmetricCost,
		distance.ErrNegativeCost,
		distance.ErrUnknownBase,
		distance.ErrEmptySequence,
		kmer.ErrInvalidK,
		kmer.ErrInvalidBase,
		checkpoint.ErrNoCheckpointDir,
		engine.ErrInvalidThreads,
		export.ErrUnknownCompression,
		export.ErrUnknownCodec,
		export.ErrIDCount,
		resource.ErrMemoryLimitExceeded,
		ErrIncomplete,
	}
	corruptionErrors = []error{
		checkpoint.ErrLabelMismatch,
		checkpoint.ErrTruncated,
		checkpoint.ErrInvalidValue,
		checkpoint.ErrWorkerMismatch,
		checkpoint.ErrInconsistent,
		matrix.ErrNotTriangular,
		engine.ErrSizeMismatch,
		export.ErrBadMagic,
		export.ErrUnsupportedVersion,
		export.ErrCorrupt,
	}
	invariantErrors = []error{
		matrix.ErrOutOfRange,
		matrix.ErrDoubleWrite,
		matrix.ErrInvalidValue,
		matrix.ErrInvalidSize,
		matrix.ErrReadOnly,
		matrix.ErrClosed,
		kmer.ErrLength,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindInterrupted
	case isAny(err, corruptionErrors):
		return KindCorruption
	case isAny(err, invariantErrors):
		return KindInvariant
	case isAny(err, configErrors):
		return KindConfig
	default:
		return KindIO
	}
}

func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: classify(err), Op: op, Err: err}
}
