package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// LineSource provides an iterator over raw log lines.
// Implementations must be safe for sequential access (not concurrent).
type LineSource interface {
	// Next returns the next line.
	// Returns io.EOF when no more lines are available.
	Next(ctx context.Context) (*LogLine, error)

	// Close releases any resources held by the source.
	Close() error
}

// ReaderSource implements LineSource over an io.Reader.
type ReaderSource struct {
	name    string
	reader  *bufio.Reader
	lineNum int
}

// NewReaderSource creates a LineSource reading lines from r.
// The name is reported as the Source of each line.
func NewReaderSource(r io.Reader, name string) *ReaderSource {
	return &ReaderSource{
		name:   name,
		reader: bufio.NewReaderSize(r, 64*1024),
	}
}

// Next returns the next line with its "\n" or "\r\n" terminator removed.
// Lines may be of any length. Bytes that are not valid UTF-8 are dropped.
func (s *ReaderSource) Next(ctx context.Context) (*LogLine, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	line, err := s.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading %s: %w", s.name, err)
	}
	if err == io.EOF && line == "" {
		return nil, io.EOF
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	s.lineNum++
	return &LogLine{
		Raw:     strings.ToValidUTF8(line, ""),
		Source:  s.name,
		LineNum: s.lineNum,
	}, nil
}

// Close is a no-op; the caller owns the underlying reader.
func (s *ReaderSource) Close() error {
	return nil
}

// FileSource implements LineSource for a single log file.
// The file is opened on the first call to Next.
type FileSource struct {
	path string

	file   *os.File
	reader *ReaderSource
	done   bool
}

// NewFileSource creates a LineSource that reads the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Next returns the next line of the file.
// Returns io.EOF once the file has been exhausted.
func (s *FileSource) Next(ctx context.Context) (*LogLine, error) {
	if s.done {
		return nil, io.EOF
	}

	if s.reader == nil {
		if err := s.open(); err != nil {
			return nil, err
		}
	}

	line, err := s.reader.Next(ctx)
	if err == io.EOF {
		s.done = true
		if cerr := s.closeFile(); cerr != nil {
			return nil, cerr
		}
	}
	return line, err
}

// Close releases the open file, if any.
func (s *FileSource) Close() error {
	return s.closeFile()
}

// Path returns the file path this source reads.
func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) open() error {
	f, err := os.Open(s.path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", s.path, err)
	}
	s.file = f
	s.reader = NewReaderSource(f, s.path)
	return nil
}

func (s *FileSource) closeFile() error {
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}
