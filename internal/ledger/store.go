package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// header is the CSV column order persisted on disk.
var header = []string{"Order ID", "Warehouse ID", "Dock ID", "Start Time", "End Time"}

// Store is the durable, atomically-rewritten ledger file for one pathway.
// Concurrent requests against the same Store serialize their
// read→compute→merge→write span through an in-process mutex plus a
// cross-process advisory file lock, since multiple server instances may
// share the same ledger directory.
type Store struct {
	path string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewStore opens (without yet reading) the ledger file at path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load reads every entry currently on disk. A missing file is not an error:
// it is treated as an empty ledger.
func (s *Store) Load() ([]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: open %s: %w", s.path, err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue // header
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 5 {
			continue
		}
		start, err := time.Parse(layout, fields[3])
		if err != nil {
			continue
		}
		end, err := time.Parse(layout, fields[4])
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			OrderID:     fields[0],
			WarehouseID: fields[1],
			DockID:      fields[2],
			Start:       start,
			End:         end,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ledger: read %s: %w", s.path, err)
	}
	return entries, nil
}

// Save atomically rewrites the ledger file with the given entries: write to
// a temp file in the same directory, then rename over the original so
// readers never observe a partial file.
func (s *Store) Save(entries []Entry) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("ledger: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	w := bufio.NewWriter(tmp)
	if _, err := w.WriteString(strings.Join(header, ",") + "\n"); err != nil {
		tmp.Close()
		return err
	}
	for _, e := range entries {
		line := strings.Join([]string{
			e.OrderID,
			e.WarehouseID,
			e.DockID,
			e.Start.Format(layout),
			e.End.Format(layout),
		}, ",")
		if _, err := w.WriteString(line + "\n"); err != nil {
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

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("ledger: rename %s -> %s: %w", tmpPath, s.path, err)
	}
	return nil
}

// WithLock acquires the in-process mutex and cross-process file lock for the
// full span of fn, which should read, compute and merge, returning the
// entries to persist. WithLock saves them before releasing the lock. If fn
// returns a nil slice and no error, nothing is written — callers use this to
// abort a commit (e.g. stage-2 infeasible) without touching the file.
func (s *Store) WithLock(fn func(existing []Entry) (toSave []Entry, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("ledger: acquire file lock: %w", err)
	}
	defer s.lock.Unlock()

	existing, err := s.Load()
	if err != nil {
		return err
	}

	toSave, err := fn(existing)
	if err != nil {
		return err
	}
	if toSave == nil {
		return nil
	}

	return s.Save(toSave)
}
