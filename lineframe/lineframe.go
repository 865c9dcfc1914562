// Package lineframe turns a child process's stdout into a sequence of JSON
// object lines, tolerating the banner text and log chatter real agent CLIs
// occasionally interleave with their JSONL protocol.
package lineframe

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// maxLineBytes bounds a single JSONL line. Assistant turns can carry long
// tool output, so this is generous rather than tight.
const maxLineBytes = 16 * 1024 * 1024

// Scanner reads newline-delimited JSON objects from a byte stream, silently
// dropping blank lines and non-JSON chatter. Every line that starts with '{'
// is handed back unparsed, with surrounding whitespace removed; the caller
// decodes it and reports malformed JSON.
//
// Partial trailing data at EOF (no terminating newline) is treated as if a
// newline had followed it, matching bufio.Scanner's own behavior.
type Scanner struct {
	scanner *bufio.Scanner
	err     error
}

// New constructs a Scanner over r.
func New(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &Scanner{scanner: s}
}

// Next advances to the next JSON object line, returning its raw bytes. It
// returns false when the stream is exhausted or reading it failed; call Err
// to distinguish the two.
func (s *Scanner) Next() ([]byte, bool) {
	if s.err != nil {
		return nil, false
	}
	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		trimmed := bytes.TrimRight(trimLeadingSpace(line), " \t\r\n")
		if len(trimmed) == 0 {
			continue
		}
		if trimmed[0] != '{' {
			continue
		}
		out := make([]byte, len(trimmed))
		copy(out, trimmed)
		return out, true
	}
	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("lineframe: read stdout: %w", err)
	}
	return nil, false
}

// Err returns a non-nil error only when the underlying read failed. Framing
// errors (malformed JSON on a '{'-prefixed line) are the caller's concern:
// the caller decodes the bytes Next returns and surfaces its own decode
// error as a fatal event, since only it knows the wire dialect.
func (s *Scanner) Err() error {
	return s.err
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\r', '\n':
			i++
			continue
		}
		break
	}
	return b[i:]
}
