// Package transcript scans Claude Code session transcripts backwards to
// recover the /loop slash-command invocation that activated a loop.
//
// Transcripts are append-only JSONL files that can grow large; the scan
// reads fixed-size blocks from the end and stops at the first match, so
// the common case touches only the tail of the file.
package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// defaultBlockSize is the read granularity of the backward scan.
const defaultBlockSize = 4096

// ReverseScanner yields the non-empty lines of a file in reverse order.
// It mirrors the bufio.Scanner shape: Scan, Text, Err.
type ReverseScanner struct {
	r         io.ReaderAt
	pos       int64 // lower bound of the region not yet read
	remainder []byte
	pending   []string // parsed lines, last-read first
	line      string
	err       error
	blockSize int
}

// NewReverseScanner scans r backwards starting from offset size.
func NewReverseScanner(r io.ReaderAt, size int64) *ReverseScanner {
	return &ReverseScanner{r: r, pos: size, blockSize: defaultBlockSize}
}

// Scan advances to the previous non-empty line. It returns false at the
// start of the file or on a read error.
func (s *ReverseScanner) Scan() bool {
	for {
		if len(s.pending) > 0 {
			s.line = s.pending[0]
			s.pending = s.pending[1:]
			if s.line != "" {
				return true
			}
			continue
		}

		if s.pos == 0 {
			if left := strings.TrimSpace(string(s.remainder)); left != "" {
				s.remainder = nil
				s.line = left
				return true
			}
			return false
		}

		n := int64(s.blockSize)
		if n > s.pos {
			n = s.pos
		}
		s.pos -= n
		buf := make([]byte, n)
		if _, err := s.r.ReadAt(buf, s.pos); err != nil {
			s.err = err
			return false
		}

		chunk := append(buf, s.remainder...)
		parts := bytes.Split(chunk, []byte("\n"))
		if s.pos > 0 {
			// The first part may be the tail of a line that starts in an
			// earlier block; hold it back until that block is read.
			s.remainder = parts[0]
			parts = parts[1:]
		} else {
			s.remainder = nil
		}
		for i := len(parts) - 1; i >= 0; i-- {
			s.pending = append(s.pending, strings.TrimSpace(string(parts[i])))
		}
	}
}

// Text returns the current line with surrounding whitespace trimmed.
func (s *ReverseScanner) Text() string { return s.line }

// Err returns the first read error encountered, if any.
func (s *ReverseScanner) Err() error { return s.err }

// entry is the subset of a transcript line the scan cares about. Content
// is decoded loosely: slash-command invocations carry a plain string,
// tool results carry structured blocks that are skipped.
type entry struct {
	Type    string `json:"type"`
	Message struct {
		Content any `json:"content"`
	} `json:"message"`
}

// Resolver finds slash-command invocations in transcripts. CommandName is
// the slash command to look for, without the leading slash; it defaults
// to "loop".
type Resolver struct {
	CommandName string
}

// LoopArgs returns the argument string of the most recent invocation of
// the command in the transcript at path. A transcript with no matching
// entry, or whose matching lines are malformed, reports ok=false rather
// than an error: callers treat both as "nothing found".
func (r Resolver) LoopArgs(path string) (args string, ok bool, err error) {
	name := r.CommandName
	if name == "" {
		name = "loop"
	}
	re, err := commandRe(name)
	if err != nil {
		return "", false, err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("transcript: open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", false, fmt.Errorf("transcript: stat: %w", err)
	}

	sc := NewReverseScanner(f, info.Size())
	for sc.Scan() {
		var e entry
		if jsonErr := json.Unmarshal([]byte(sc.Text()), &e); jsonErr != nil {
			continue
		}
		if e.Type != "user" {
			continue
		}
		content, isStr := e.Message.Content.(string)
		if !isStr {
			continue
		}
		if m := re.FindStringSubmatch(content); m != nil {
			return strings.TrimSpace(m[1]), true, nil
		}
	}
	if scanErr := sc.Err(); scanErr != nil {
		return "", false, fmt.Errorf("transcript: scan: %w", scanErr)
	}
	return "", false, nil
}

// commandRe matches the command-name/command-args markup Claude Code
// records for a slash-command invocation.
func commandRe(name string) (*regexp.Regexp, error) {
	pattern := `(?s)<command-name>/` + regexp.QuoteMeta(name) + `</command-name>.*?<command-args>(.*?)</command-args>`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("transcript: command pattern: %w", err)
	}
	return re, nil
}
