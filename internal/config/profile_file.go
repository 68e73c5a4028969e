// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config provides the on-disk profile file handling: loading,
// saving, reloading, and diffing. A ProfileFile wraps a path, the decoded
// profile, and the original bytes it was loaded from, so Diff/HasChanges
// can operate off that pair without a second read.
package config

import (
	"bytes"
	"fmt"
	"os"

	"grimm.is/relayprofile/internal/typed"
)

// ProfileFile wraps a profile on disk: its path, the decoded Profile, and
// the original bytes it was loaded from (kept so Diff/HasChanges can
// compare against the source of truth without a second read).
type ProfileFile struct {
	Path     string
	Profile  *typed.Profile
	original []byte
}

// Load reads and decodes the profile at path.
func Load(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return LoadFromBytes(path, data)
}

// LoadFromBytes decodes data as though it had been read from path, without
// touching the filesystem. Load calls it after reading the file.
func LoadFromBytes(path string, data []byte) (*ProfileFile, error) {
	profile, err := typed.DecodeProfile(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &ProfileFile{Path: path, Profile: profile, original: data}, nil
}

// Save encodes pf.Profile and writes it to pf.Path, then updates the
// in-memory "original" baseline to the bytes just written so a subsequent
// HasChanges reports false until the caller mutates Profile again.
func (pf *ProfileFile) Save() error {
	out := typed.EncodeProfile(pf.Profile)
	if err := os.WriteFile(pf.Path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", pf.Path, err)
	}
	pf.original = out
	return nil
}

// Reload discards in-memory changes and reloads pf.Profile from disk.
func (pf *ProfileFile) Reload() error {
	fresh, err := Load(pf.Path)
	if err != nil {
		return err
	}
	*pf = *fresh
	return nil
}

// HasChanges reports whether pf.Profile, re-encoded, differs from the
// canonical re-encoding of the bytes it was loaded from. A profile whose
// source text was not in canonical form therefore reports no changes until
// it is modified.
func (pf *ProfileFile) HasChanges() bool {
	original, err := typed.DecodeProfile(pf.original)
	if err != nil {
		return true
	}
	return !bytes.Equal(typed.EncodeProfile(original), typed.EncodeProfile(pf.Profile))
}

// Diff returns the structured diff between the bytes pf was loaded from
// and pf.Profile's current (possibly modified) state.
func (pf *ProfileFile) Diff() (*Diff, error) {
	original, err := typed.DecodeProfile(pf.original)
	if err != nil {
		return nil, fmt.Errorf("decode original for diff: %w", err)
	}
	return DiffProfiles(original, pf.Profile), nil
}
