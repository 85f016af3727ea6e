// Package history keeps an append-only JSONL log of loop lifecycle
// events. The log backs `looper status` and `looper watch` read-back; it
// carries no control state and losing it never affects a running loop.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the history file name inside the .claude directory.
const FileName = "loop-history.jsonl"

// Kind identifies a lifecycle event.
type Kind string

const (
	KindStarted   Kind = "started"
	KindContinued Kind = "continued"
	KindVerifying Kind = "verifying"
	KindVerified  Kind = "verified"
	KindExhausted Kind = "exhausted"
	KindCancelled Kind = "cancelled"
)

// Record is one history line. Task is recorded only on started events to
// keep the log compact.
type Record struct {
	Time      time.Time `json:"time"`
	Kind      Kind      `json:"kind"`
	Iteration int       `json:"iteration,omitempty"`
	Total     int       `json:"total,omitempty"`
	Task      string    `json:"task,omitempty"`
}

// Log appends to and reads back the history file in one .claude
// directory. Retention bounds the number of records kept; 0 keeps all.
type Log struct {
	Dir       string
	Retention int
}

// Path returns the location of the history file.
func (l *Log) Path() string { return filepath.Join(l.Dir, FileName) }

// Append writes one record, stamping it with the current time if unset,
// and syncs so the line survives an immediate process exit. Retention is
// enforced after the write.
func (l *Log) Append(rec Record) error {
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("history: marshal: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(l.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("history: open: %w", err)
	}
	if _, writeErr := f.Write(data); writeErr != nil {
		f.Close()
		return fmt.Errorf("history: write: %w", writeErr)
	}
	if syncErr := f.Sync(); syncErr != nil {
		f.Close()
		return fmt.Errorf("history: sync: %w", syncErr)
	}
	if closeErr := f.Close(); closeErr != nil {
		return fmt.Errorf("history: close: %w", closeErr)
	}

	return l.trim()
}

// Records reads the whole log, oldest first. Malformed lines are skipped;
// a missing file is an empty log.
func (l *Log) Records() ([]Record, error) {
	data, err := os.ReadFile(l.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("history: read: %w", err)
	}

	var recs []Record
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		recs = append(recs, r)
	}
	return recs, nil
}

// trim rewrites the log keeping only the newest Retention records. The
// rewrite goes through a temp file and rename, as with the state file.
func (l *Log) trim() error {
	if l.Retention <= 0 {
		return nil
	}
	recs, err := l.Records()
	if err != nil {
		return err
	}
	if len(recs) <= l.Retention {
		return nil
	}
	recs = recs[len(recs)-l.Retention:]

	var buf bytes.Buffer
	for _, r := range recs {
		line, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("history: marshal: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(l.Dir, ".loop-history-*.tmp")
	if err != nil {
		return fmt.Errorf("history: create temp: %w", err)
	}
	if _, writeErr := tmp.Write(buf.Bytes()); writeErr != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("history: rewrite: %w", writeErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("history: close: %w", closeErr)
	}
	if renameErr := os.Rename(tmp.Name(), l.Path()); renameErr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("history: finalize: %w", renameErr)
	}
	return nil
}
