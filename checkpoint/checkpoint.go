package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hupe1980/seqdist/config"
	"github.com/hupe1980/seqdist/internal/fs"
)

const (
	// OptionsFile is the options checkpoint name inside the directory.
	OptionsFile = "options.checkpoint"

	labelWorker = "workernum"
	labelRow    = "i"

	dirPerm  = 0o755
	filePerm = 0o644
)

var (
	// ErrNoCheckpointDir is returned when the checkpoint directory is missing.
	ErrNoCheckpointDir = errors.New("checkpoint directory does not exist")

	// ErrLabelMismatch is returned when a label line differs from the expected name.
	ErrLabelMismatch = errors.New("checkpoint label mismatch")

	// ErrTruncated is returned when a label or value line is missing.
	ErrTruncated = errors.New("checkpoint truncated")

	// ErrInvalidValue is returned when a value cannot be parsed.
	ErrInvalidValue = errors.New("invalid checkpoint value")

	// ErrWorkerMismatch is returned when a worker file names another worker.
	ErrWorkerMismatch = errors.New("checkpoint belongs to another worker")

	// ErrInconsistent is returned when a worker's last row is not one it owns.
	ErrInconsistent = errors.New("inconsistent worker checkpoint")
)

// LabelError reports an unexpected label line.
type LabelError struct {
	File     string
	Line     int
	Expected string
	Got      string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("%s line %d: expected label %q, got %q", e.File, e.Line, e.Expected, e.Got)
}

func (e *LabelError) Unwrap() error { return ErrLabelMismatch }

type options struct {
	fs     fs.FileSystem
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*options)

// WithFileSystem sets the file system used for all checkpoint I/O.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithLogger sets the logger for non-fatal warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Manager reads and writes the checkpoints of one directory.
type Manager struct {
	dir  string
	opts options
}

// New returns a manager for dir. Nothing is touched until a method is called.
func New(dir string, optFns ...Option) *Manager {
	opts := options{
		fs:     fs.Default,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{dir: dir, opts: opts}
}

// Dir returns the checkpoint directory.
func (m *Manager) Dir() string { return m.dir }

// WorkerFile returns the file name of a worker checkpoint.
func WorkerFile(worker int) string {
	return fmt.Sprintf("worker%d.checkpoint", worker)
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, name)
}

func (m *Manager) requireDir() error {
	ok, err := fs.DirExists(m.opts.fs, m.dir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoCheckpointDir, m.dir)
	}
	return nil
}

// Clean removes every entry of the checkpoint directory. The directory must
// already exist; Clean never creates what it is about to wipe.
func (m *Manager) Clean() error {
	if err := m.requireDir(); err != nil {
		return err
	}

	entries, err := m.opts.fs.ReadDir(m.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := m.opts.fs.RemoveAll(m.path(e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// WriteOptions creates the directory if needed and persists the tracked
// options in their fixed order.
func (m *Manager) WriteOptions(o *config.Options) error {
	if err := m.opts.fs.MkdirAll(m.dir, dirPerm); err != nil {
		return fmt.Errorf("create checkpoint directory %s: %w", m.dir, err)
	}

	var b strings.Builder
	for _, f := range config.Tracked() {
		writePair(&b, f.Name, f.Get(o))
	}

	if err := fs.WriteFileAtomic(m.opts.fs, m.path(OptionsFile), []byte(b.String()), filePerm); err != nil {
		return fmt.Errorf("write options checkpoint: %w", err)
	}
	return nil
}

// ReadOptions overwrites the tracked fields of o with the persisted values.
// Untracked fields, including Restart, are left alone. Content after the last
// tracked option is logged and ignored.
func (m *Manager) ReadOptions(o *config.Options) error {
	if err := m.requireDir(); err != nil {
		return err
	}

	name := m.path(OptionsFile)
	data, err := fs.ReadFile(m.opts.fs, name)
	if err != nil {
		return fmt.Errorf("read options checkpoint: %w", err)
	}

	r := newPairReader(name, string(data))
	restored := *o
	for _, f := range config.Tracked() {
		value, err := r.expect(f.Name)
		if err != nil {
			return err
		}
		if err := f.Set(&restored, value); err != nil {
			return fmt.Errorf("%w: %s option %s %q: %w", ErrInvalidValue, name, f.Name, value, err)
		}
	}

	if rest := r.rest(); rest != "" {
		m.opts.logger.Warn("trailing data in options checkpoint",
			"file", name,
			"line", r.line+1,
			"data", truncate(rest, 40),
		)
	}

	*o = restored
	return nil
}

// WriteWorker records row as the last row worker fully completed.
func (m *Manager) WriteWorker(row, worker int) error {
	var b strings.Builder
	writePair(&b, labelWorker, strconv.Itoa(worker))
	writePair(&b, labelRow, strconv.Itoa(row))

	if err := fs.WriteFileAtomic(m.opts.fs, m.path(WorkerFile(worker)), []byte(b.String()), filePerm); err != nil {
		return fmt.Errorf("write worker %d checkpoint: %w", worker, err)
	}
	return nil
}

// ReadWorker returns the last row worker completed.
func (m *Manager) ReadWorker(worker int) (int, error) {
	name := m.path(WorkerFile(worker))
	data, err := fs.ReadFile(m.opts.fs, name)
	if err != nil {
		return 0, fmt.Errorf("read worker %d checkpoint: %w", worker, err)
	}

	r := newPairReader(name, string(data))

	v, err := r.expect(labelWorker)
	if err != nil {
		return 0, err
	}
	got, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s workernum %q", ErrInvalidValue, name, v)
	}
	if got != worker {
		return 0, fmt.Errorf("%w: %s names worker %d, want %d", ErrWorkerMismatch, name, got, worker)
	}

	v, err = r.expect(labelRow)
	if err != nil {
		return 0, err
	}
	row, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s i %q", ErrInvalidValue, name, v)
	}
	return row, nil
}

// InitWorkers writes, for every worker, the row just before its first one
// (worker - nthreads). A restart then resumes each worker at its first row
// even if it never completed one.
func (m *Manager) InitWorkers(nthreads int) error {
	for w := 0; w < nthreads; w++ {
		if err := m.WriteWorker(w-nthreads, w); err != nil {
			return err
		}
	}
	return nil
}

// ResumeRow returns the first row worker still has to compute.
func (m *Manager) ResumeRow(worker, nthreads int) (int, error) {
	last, err := m.ReadWorker(worker)
	if err != nil {
		return 0, err
	}
	if last < worker-nthreads || (last-worker)%nthreads != 0 {
		return 0, fmt.Errorf("%w: worker %d of %d reports row %d", ErrInconsistent, worker, nthreads, last)
	}
	return last + nthreads, nil
}

func writePair(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteByte('\n')
	b.WriteString(value)
	b.WriteByte('\n')
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
