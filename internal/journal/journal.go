// Package journal persists a JSONL log of volume propagations so users can
// inspect what the daemon has been doing.
package journal

import (
	"bufio"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmsalzman/volink/internal/link"
)

// ErrClosed is returned when operating on a closed journal.
var ErrClosed = errors.New("journal is closed")

// Entry is one recorded volume propagation.
type Entry struct {
	ID        string  `json:"id"` // ULID, sortable by creation time
	Timestamp int64   `json:"timestamp"`
	Direction string  `json:"direction"`
	FromID    string  `json:"from_id"`
	FromName  string  `json:"from_name"`
	ToID      string  `json:"to_id"`
	ToName    string  `json:"to_name"`
	Volume    float64 `json:"volume"`
}

// Journal is an append-oriented JSONL store of sync events. All operations
// are safe for concurrent use.
type Journal struct {
	mu      sync.RWMutex
	path    string
	file    *os.File
	entries []Entry
	closed  bool
}

// Open opens (or creates) the journal at path and hydrates existing entries.
// Corrupted lines are skipped rather than failing the open.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}

	j := &Journal{path: path, file: file}
	if err := j.hydrate(); err != nil {
		file.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) hydrate() error {
	if _, err := j.file.Seek(0, 0); err != nil {
		return err
	}
	scanner := bufio.NewScanner(j.file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		j.entries = append(j.entries, e)
	}
	return scanner.Err()
}

// Record appends a sync event.
func (j *Journal) Record(ev link.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}

	id, err := ulid.New(ulid.Timestamp(ev.Time), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate entry id: %w", err)
	}

	e := Entry{
		ID:        id.String(),
		Timestamp: ev.Time.Unix(),
		Direction: string(ev.Direction),
		FromID:    ev.FromID,
		FromName:  ev.FromName,
		ToID:      ev.ToID,
		ToName:    ev.ToName,
		Volume:    ev.Volume,
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}

	j.entries = append(j.entries, e)
	return nil
}

// Recent returns the most recent n entries, newest first. n <= 0 returns all.
func (j *Journal) Recent(n int) []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	total := len(j.entries)
	if n <= 0 || n > total {
		n = total
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = j.entries[total-1-i]
	}
	return out
}

// Count returns the number of entries.
func (j *Journal) Count() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Prune keeps only the newest max entries and rewrites the file. max <= 0 is
// a no-op.
func (j *Journal) Prune(max int) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return ErrClosed
	}
	if max <= 0 || len(j.entries) <= max {
		return nil
	}

	j.entries = j.entries[len(j.entries)-max:]
	return j.rewrite()
}

// rewrite replaces the journal file with the in-memory entries. Caller holds
// the write lock.
func (j *Journal) rewrite() error {
	tmpPath := j.path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, e := range j.entries {
		data, err := json.Marshal(e)
		if err != nil {
			tmp.Close()
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := j.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, j.path); err != nil {
		return err
	}

	file, err := os.OpenFile(j.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	j.file = file
	return nil
}

// Close releases the underlying file handle.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true
	return j.file.Close()
}

// Age returns how long ago the entry was recorded.
func (e Entry) Age() time.Duration {
	return time.Since(time.Unix(e.Timestamp, 0))
}
