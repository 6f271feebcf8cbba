package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
)

// snapshot is the on-disk payload shape: the records plus when they were
// captured, in Unix milliseconds.
type snapshot[T any] struct {
	Records  []T   `json:"records"`
	CachedAt int64 `json:"cachedAt"`
}

// Disk is a per-identifier JSON snapshot tier. Files never expire; each
// successful live fetch overwrites the snapshot wholesale, and reads treat
// any missing or corrupt file as absence of data.
type Disk[T any] struct {
	dir    string
	prefix string
}

// NewDisk creates a disk tier writing files named "<prefix>_<id>.json"
// under dir.
func NewDisk[T any](dir, prefix string) *Disk[T] {
	return &Disk[T]{dir: dir, prefix: prefix}
}

var unsafeIdentRe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// SanitizeIdentifier replaces every character outside [a-zA-Z0-9.-] with an
// underscore so an identifier can never traverse outside the data directory.
func SanitizeIdentifier(id string) string {
	return unsafeIdentRe.ReplaceAllString(id, "_")
}

func (d *Disk[T]) fileFor(id string) string {
	return filepath.Join(d.dir, d.prefix+"_"+SanitizeIdentifier(id)+".json")
}

// Read returns the snapshot records for id, or nil when no usable snapshot
// exists. Corrupt files count as missing.
func (d *Disk[T]) Read(id string) []T {
	raw, err := os.ReadFile(d.fileFor(id))
	if err != nil {
		return nil
	}
	var snap snapshot[T]
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil
	}
	return snap.Records
}

// Write persists the records for id, creating the data directory on demand.
func (d *Disk[T]) Write(id string, records []T) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return eris.Wrap(err, "cache: create data dir")
	}
	raw, err := json.MarshalIndent(snapshot[T]{
		Records:  records,
		CachedAt: time.Now().UnixMilli(),
	}, "", "  ")
	if err != nil {
		return eris.Wrap(err, "cache: marshal snapshot")
	}
	if err := os.WriteFile(d.fileFor(id), raw, 0o644); err != nil {
		return eris.Wrap(err, "cache: write snapshot")
	}
	return nil
}
