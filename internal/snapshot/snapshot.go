// Package snapshot writes and reads point-in-time dumps of a string slot map.
//
// Snapshots are an inspection aid for the REPL. They record the handles that
// were live when the dump was taken, but loading a snapshot issues new
// handles: a map never accepts handles it did not issue itself.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/slotmap/internal/config"
	"github.com/calvinalkan/slotmap/pkg/slotmap"
)

// ErrUnknownFormat indicates a format other than json or yaml.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// Snapshot is the serialized form of a map's live entries in packed order.
type Snapshot struct {
	Capacity int     `json:"capacity" yaml:"capacity"`
	Len      int     `json:"len"      yaml:"len"`
	Entries  []Entry `json:"entries"  yaml:"entries"`
}

// Entry is one live value and the handle it had when the snapshot was taken.
type Entry struct {
	Handle     string `json:"handle"     yaml:"handle"`
	Slot       uint32 `json:"slot"       yaml:"slot"`
	Generation uint32 `json:"generation" yaml:"generation"`
	Value      string `json:"value"      yaml:"value"`
}

// Take captures the live entries of m.
func Take(m *slotmap.SlotMap[string]) Snapshot {
	snap := Snapshot{
		Capacity: m.Cap(),
		Len:      m.Len(),
		Entries:  make([]Entry, 0, m.Len()),
	}

	for h, v := range m.Entries() {
		snap.Entries = append(snap.Entries, Entry{
			Handle:     h.String(),
			Slot:       h.SlotIndex(),
			Generation: h.Generation(),
			Value:      v,
		})
	}

	return snap
}

// FormatForPath picks the format from the file extension (.json, .yaml,
// .yml, .db, .bolt) and falls back to fallback for anything else.
func FormatForPath(path, fallback string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return config.FormatJSON
	case ".yaml", ".yml":
		return config.FormatYAML
	case ".db", ".bolt":
		return config.FormatBolt
	default:
		return fallback
	}
}

// Encode serializes snap in the given format. Bolt snapshots are databases
// rather than byte streams; use [WriteFile] for them.
func Encode(snap Snapshot, format string) ([]byte, error) {
	switch format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}

		return append(data, '\n'), nil
	case config.FormatYAML:
		data, err := yaml.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}

		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Decode parses data in the given format.
func Decode(data []byte, format string) (Snapshot, error) {
	var snap Snapshot

	switch format {
	case config.FormatJSON:
		err := json.Unmarshal(data, &snap)
		if err != nil {
			return Snapshot{}, fmt.Errorf("decode json: %w", err)
		}
	case config.FormatYAML:
		err := yaml.Unmarshal(data, &snap)
		if err != nil {
			return Snapshot{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return snap, nil
}

// WriteFile atomically replaces path with the encoded snapshot.
func WriteFile(path string, snap Snapshot, format string) error {
	if format == config.FormatBolt {
		return writeBolt(path, snap)
	}

	data, err := Encode(snap, format)
	if err != nil {
		return err
	}

	err = atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}

	return nil
}

// ReadFile reads and decodes the snapshot at path.
func ReadFile(path, format string) (Snapshot, error) {
	if format == config.FormatBolt {
		return readBolt(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	snap, err := Decode(data, format)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}

	return snap, nil
}

// Restore adds every entry's value to m in snapshot order and returns the
// new handles, index-aligned with snap.Entries.
//
// Restore stops before the first value that does not fit and returns the
// handles added so far with an error wrapping [slotmap.ErrFull].
func Restore(m *slotmap.SlotMap[string], snap Snapshot) ([]slotmap.Handle, error) {
	handles := make([]slotmap.Handle, 0, len(snap.Entries))

	for i, entry := range snap.Entries {
		if m.Full() {
			return handles, fmt.Errorf("restored %d of %d entries: %w", i, len(snap.Entries), slotmap.ErrFull)
		}

		handles = append(handles, m.Add(entry.Value))
	}

	return handles, nil
}
