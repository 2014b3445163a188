package codec

import (
	"context"
	"fmt"
	"io"
	"sort"

	"relkv/internal/kv"
)

// SnapshotVersion is written into every exported snapshot
const SnapshotVersion = 1

// Snapshot is a full copy of one backend prefix.
// Keys are logical (unprefixed); values are the stored row and index documents.
type Snapshot struct {
	Version int               `json:"version" yaml:"version"`
	Entries map[string]string `json:"entries" yaml:"entries"`
}

// Keys returns the entry keys in sorted order
func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.Entries))
	for k := range s.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Importer reads snapshots from a serialized form
type Importer interface {
	Parse(r io.Reader) (*Snapshot, error)
	Format() string
}

// Exporter writes snapshots to a serialized form
type Exporter interface {
	Export(snap *Snapshot, w io.Writer) error
	Format() string
}

// Codec is both an Importer and an Exporter
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered for a format name
func ForFormat(format string) (Codec, error) {
	switch format {
	case "json", "":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("unknown snapshot format: %s", format)
}

// Backup dumps every entry of backend into a snapshot
func Backup(ctx context.Context, backend kv.Backend) (*Snapshot, error) {
	entries, err := backend.Dump(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to dump backend: %w", err)
	}

	snap := &Snapshot{Version: SnapshotVersion, Entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		snap.Entries[k] = string(v)
	}
	return snap, nil
}

// Restore writes every snapshot entry into backend.
// Existing keys not present in the snapshot are left alone.
func Restore(ctx context.Context, backend kv.Backend, snap *Snapshot) error {
	if err := snap.check(); err != nil {
		return err
	}

	entries := make(map[string][]byte, len(snap.Entries))
	for k, v := range snap.Entries {
		entries[k] = []byte(v)
	}
	if err := backend.Load(ctx, entries); err != nil {
		return fmt.Errorf("failed to load backend: %w", err)
	}
	return nil
}

func (s *Snapshot) check() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %d", s.Version)
	}
	if s.Entries == nil {
		s.Entries = make(map[string]string)
	}
	return nil
}
