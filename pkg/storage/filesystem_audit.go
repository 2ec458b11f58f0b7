package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ntoledo319/HELLDECK/pkg/domain"
)

// ErrEventsLocked is returned when another writer holds the audit trail lock.
var ErrEventsLocked = errors.New("audit trail is locked by another writer")

// AppendEvent chains a new event onto the trail. build receives the hash of
// the last recorded event ("" for an empty trail) and returns the event to
// write. Reading the tail and appending happen under the same in-process
// mutex and lock file, so concurrent writers never fork the chain.
func (r *FilesystemRepository) AppendEvent(ctx context.Context, build func(prevHash string) domain.Event) (domain.Event, error) {
	r.eventsMu.Lock()
	defer r.eventsMu.Unlock()

	unlock, err := r.lockFile(ctx, EventsLockFile, ErrEventsLocked)
	if err != nil {
		return domain.Event{}, err
	}
	defer unlock()

	events, err := r.LoadEvents()
	if err != nil {
		return domain.Event{}, err
	}
	prevHash := ""
	if len(events) > 0 {
		prevHash = events[len(events)-1].Hash
	}

	event := build(prevHash)
	if err := r.appendEvent(event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

// appendEvent writes event as one synced JSON line. Callers hold the lock.
func (r *FilesystemRepository) appendEvent(event domain.Event) error {
	path, err := r.ResolvePath(EventsFile)
	if err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}
	data = append(data, '\n')

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open events file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write event %s: %w", event.ID, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync events file: %w", err)
	}
	return f.Close()
}

// LoadEvents returns the trail in append order. Lines that do not decode are
// dropped; the hash chain then reports the gap. A missing file is an empty
// trail.
func (r *FilesystemRepository) LoadEvents() ([]domain.Event, error) {
	path, err := r.ResolvePath(EventsFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Event{}, nil
		}
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()

	events := []domain.Event{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e domain.Event
		if json.Unmarshal(line, &e) != nil {
			continue
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}
	return events, nil
}
