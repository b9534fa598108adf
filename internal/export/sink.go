package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// BufferSink keeps the delivered artifact in memory. The HTTP layer uses
// it to stream the file back as an attachment.
type BufferSink struct {
	Data     []byte
	Filename string
}

func (s *BufferSink) Deliver(_ context.Context, data []byte, filename string) error {
	s.Data = data
	s.Filename = filename
	return nil
}

// FileSink writes the delivered artifact into a directory.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Deliver(_ context.Context, data []byte, filename string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: create export directory: %s", ErrStorageUnavailable, err)
	}
	path := filepath.Join(s.Dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write export file: %s", ErrStorageUnavailable, err)
	}
	return nil
}
