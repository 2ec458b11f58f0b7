package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

// ErrProfileLocked is returned when another writer holds the profile lock.
var ErrProfileLocked = errors.New("quality profiles are locked by another writer")

// LoadProfiles reads quality_profiles.yaml. A missing file yields the shipped
// defaults.
func (r *FilesystemRepository) LoadProfiles() (*quality.Profiles, error) {
	path, err := r.ResolvePath(ProfilesFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return quality.DefaultProfiles(), nil
		}
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var p quality.Profiles
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profiles: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProfiles replaces the profile store under the profile lock.
func (r *FilesystemRepository) SaveProfiles(p *quality.Profiles) error {
	return r.UpdateProfiles(context.Background(), func(*quality.Profiles) (*quality.Profiles, bool, error) {
		return p, true, nil
	})
}

// UpdateProfiles loads the store, hands it to mutate, and writes the result
// once when mutate reports a change. The whole read-modify-write happens under
// the in-process mutex and the cross-process lock file.
func (r *FilesystemRepository) UpdateProfiles(ctx context.Context, mutate func(*quality.Profiles) (*quality.Profiles, bool, error)) error {
	r.profilesMu.Lock()
	defer r.profilesMu.Unlock()

	unlock, err := r.lockFile(ctx, ProfilesLockFile, ErrProfileLocked)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := r.LoadProfiles()
	if err != nil {
		return err
	}
	next, changed, err := mutate(current)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := next.Validate(); err != nil {
		return err
	}
	return r.writeProfiles(next)
}

// writeProfiles replaces the profile file with a single rename so readers
// never observe a partial document.
func (r *FilesystemRepository) writeProfiles(p *quality.Profiles) error {
	path, err := r.ResolvePath(ProfilesFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".quality_profiles-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp profiles file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync profiles: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close profiles: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace profiles: %w", err)
	}
	return nil
}
