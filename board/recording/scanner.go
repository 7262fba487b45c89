package recording

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// MaxLineSize matches the relay's default websocket read limit
const MaxLineSize = 64 * 1024

var ErrLineTooLong = errors.New("line longer than the relay read limit")

// Scanner reads a recording line by line. Unlike bufio.Scanner it survives
// over-long lines.
type Scanner struct {
	r       *bufio.Reader
	line    int
	text    []byte
	lineErr error
	err     error
}

// NewScanner reads from r
func NewScanner(r io.Reader) *Scanner {
	// one extra byte so a line of exactly MaxLineSize fits with its newline
	return &Scanner{r: bufio.NewReaderSize(r, MaxLineSize+1)}
}

// Scan advances to the next line. It returns false at the end of input or on
// a read error, which Err then reports.
func (s *Scanner) Scan() bool {
	s.text = s.text[:0]
	s.lineErr = nil

	tooLong, started := false, false
	for {
		chunk, isPrefix, err := s.r.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
				return false
			}
			if !started {
				return false
			}
			// input ended inside a long line
			break
		}
		started = true

		if !tooLong {
			if len(s.text)+len(chunk) > MaxLineSize {
				tooLong = true
				s.text = s.text[:0]
			} else {
				s.text = append(s.text, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}

	s.line++
	if tooLong {
		s.lineErr = fmt.Errorf("%w (%d bytes)", ErrLineTooLong, MaxLineSize)
	}
	return true
}

// Bytes returns the current line without its line ending. It is empty for a
// line that was too long, and only valid until the next Scan.
func (s *Scanner) Bytes() []byte { return s.text }

// Line is the 1-based number of the current line
func (s *Scanner) Line() int { return s.line }

// LineErr reports a problem with the current line only
func (s *Scanner) LineErr() error { return s.lineErr }

// Err returns the read error that stopped Scan, if any
func (s *Scanner) Err() error { return s.err }
