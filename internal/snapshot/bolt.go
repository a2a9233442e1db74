package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	metaBucket    = []byte("meta")
	entriesBucket = []byte("entries")
	capacityKey   = []byte("capacity")
)

// ErrCorruptBolt indicates a bolt file that is not a slotmap snapshot.
var ErrCorruptBolt = errors.New("not a slotmap bolt snapshot")

const boltOpenTimeout = time.Second

// writeBolt stores snap in a bolt database at path, replacing any previous
// snapshot in a single transaction. Entries are keyed by their big-endian
// packed position so a cursor walk returns them in order.
func writeBolt(path string, snap Snapshot) error {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{metaBucket, entriesBucket} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
		}

		meta, err := tx.CreateBucket(metaBucket)
		if err != nil {
			return err
		}

		err = meta.Put(capacityKey, binary.BigEndian.AppendUint32(nil, uint32(snap.Capacity)))
		if err != nil {
			return err
		}

		entries, err := tx.CreateBucket(entriesBucket)
		if err != nil {
			return err
		}

		for i, entry := range snap.Entries {
			data, err := json.Marshal(entry)
			if err != nil {
				return err
			}

			err = entries.Put(binary.BigEndian.AppendUint32(nil, uint32(i)), data)
			if err != nil {
				return err
			}
		}

		return nil
	})

	return errors.Join(wrapPath("write snapshot", path, err), db.Close())
}

func readBolt(path string) (Snapshot, error) {
	// Open creates missing files, even read-only; report those like ReadFile does.
	_, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: boltOpenTimeout, ReadOnly: true})
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap Snapshot

	err = db.View(func(tx *bolt.Tx) error {
		meta, entries := tx.Bucket(metaBucket), tx.Bucket(entriesBucket)
		if meta == nil || entries == nil {
			return ErrCorruptBolt
		}

		capacity := meta.Get(capacityKey)
		if len(capacity) != 4 {
			return fmt.Errorf("%w: capacity", ErrCorruptBolt)
		}

		snap.Capacity = int(binary.BigEndian.Uint32(capacity))
		snap.Entries = []Entry{}

		err := entries.ForEach(func(_, v []byte) error {
			var entry Entry

			err := json.Unmarshal(v, &entry)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCorruptBolt, err)
			}

			snap.Entries = append(snap.Entries, entry)

			return nil
		})
		if err != nil {
			return err
		}

		snap.Len = len(snap.Entries)

		return nil
	})

	err = errors.Join(wrapPath("read snapshot", path, err), db.Close())
	if err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

func wrapPath(op, path string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s %s: %w", op, path, err)
}
