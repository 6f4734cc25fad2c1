package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Writer delivers a serialized report.
type Writer interface {
	Write(data []byte) error
}

// NewWriter returns a FileWriter for path, or a StdoutWriter over out when
// path is empty or "-".
func NewWriter(path string, out io.Writer, opts ...FileWriterOption) Writer {
	if path == "" || path == "-" {
		return NewStdoutWriter(out)
	}

	return NewFileWriter(path, opts...)
}

// StdoutWriter copies reports to a stream. A nil stream means os.Stdout.
type StdoutWriter struct {
	out io.Writer
}

func NewStdoutWriter(w io.Writer) *StdoutWriter {
	if w == nil {
		w = os.Stdout
	}

	return &StdoutWriter{out: w}
}

func (sw *StdoutWriter) Write(data []byte) error {
	if _, err := sw.out.Write(data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}

// FileWriter replaces a report file atomically: data goes to a temporary
// file in the target directory which is then renamed over path.
type FileWriter struct {
	path   string
	perm   os.FileMode
	logger *slog.Logger
}

type FileWriterOption func(*FileWriter)

// WithPermissions sets the mode of the written file. Default 0644.
func WithPermissions(perm os.FileMode) FileWriterOption {
	return func(fw *FileWriter) { fw.perm = perm }
}

func WithLogger(logger *slog.Logger) FileWriterOption {
	return func(fw *FileWriter) { fw.logger = logger }
}

func NewFileWriter(path string, opts ...FileWriterOption) *FileWriter {
	fw := &FileWriter{path: path, perm: 0o644, logger: slog.Default()}
	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Path returns the target file path.
func (fw *FileWriter) Path() string { return fw.path }

func (fw *FileWriter) Write(data []byte) (err error) {
	dir := filepath.Dir(fw.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fw.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file in %s: %w", dir, err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", fw.path, err)
	}

	if err = tmp.Chmod(fw.perm); err != nil {
		return fmt.Errorf("setting mode of %s: %w", fw.path, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", fw.path, err)
	}

	if _, statErr := os.Stat(fw.path); statErr == nil {
		fw.logger.Debug("replacing report", slog.String("path", fw.path))
	}

	if err = os.Rename(tmp.Name(), fw.path); err != nil {
		return fmt.Errorf("replacing %s: %w", fw.path, err)
	}

	return nil
}
