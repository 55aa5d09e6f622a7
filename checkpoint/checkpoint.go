// Package checkpoint persists the backfill's progress as a JSON array of
// article IDs so an interrupted batch resumes where it left off.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
)

// Log is the append-only record of fully processed article IDs. It is
// rewritten in full after each append; a single-writer process is assumed
// and no file locking is taken.
type Log struct {
	path  string
	done  map[string]bool
	order []string
}

// Open loads an existing checkpoint file. A missing file starts an empty
// log; that is the normal first-run case, not an error.
func Open(path string) (*Log, error) {
	l := &Log{path: path, done: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parsing checkpoint: %w", err)
	}

	for _, id := range ids {
		if !l.done[id] {
			l.done[id] = true
			l.order = append(l.order, id)
		}
	}
	return l, nil
}

func (l *Log) Contains(id string) bool {
	return l.done[id]
}

func (l *Log) Len() int {
	return len(l.order)
}

// Add records an ID and immediately rewrites the file, synced to disk.
// Callers must only invoke this after every adapter call for the item has
// settled; a crash before Add safely reprocesses the item.
func (l *Log) Add(id string) error {
	if l.done[id] {
		return nil
	}
	l.done[id] = true
	l.order = append(l.order, id)

	data, err := json.Marshal(l.order)
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening checkpoint: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing checkpoint: %w", err)
	}
	return f.Close()
}
