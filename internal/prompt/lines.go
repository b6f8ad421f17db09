package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// lineReader hands out at most one line per Read, so a prompt that wraps
// it in its own scanner consumes only its own answer.
type lineReader struct {
	r       *bufio.Reader
	pending []byte

	// served counts bytes handed out since the last reset.
	served int
	eof    bool
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (l *lineReader) Read(p []byte) (int, error) {
	if len(l.pending) == 0 {
		line, err := l.r.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return 0, err
			}
			l.eof = true
		}
		if len(line) == 0 {
			return 0, io.EOF
		}
		l.pending = line
	}

	n := copy(p, l.pending)
	l.pending = l.pending[n:]
	l.served += n
	return n, nil
}

func (l *lineReader) reset() {
	l.served = 0
}

// exhausted reports whether input ended before anything was read since
// the last reset.
func (l *lineReader) exhausted() bool {
	return l.eof && l.served == 0 && len(l.pending) == 0
}

// readLine returns the next line without its line ending.
func (l *lineReader) readLine() (string, error) {
	line := l.pending
	l.pending = nil

	if len(line) == 0 || line[len(line)-1] != '\n' {
		rest, err := l.r.ReadBytes('\n')
		line = append(line, rest...)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("read input: %w", err)
			}
			l.eof = true
			if len(line) == 0 {
				return "", ErrAborted
			}
		}
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}
