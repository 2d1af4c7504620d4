package paralleldataset

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// Lineage is the subset of Dataset[T]'s behavior the Checkpointer needs
// without itself being generic over T: persist/unpersist bookkeeping and
// checkpoint I/O. Every *Dataset[T] implements Lineage.
type Lineage interface {
	ID() uint64
	Persist()
	Unpersist()
	IsPersisted() bool
	Checkpoint(dir string) error
	DeleteCheckpoint() error
	IsCheckpointed() bool
}

// ID returns the dataset's lineage identifier, unique within a process.
func (d *Dataset[T]) ID() uint64 {
	return d.id
}

// Persist marks the dataset as materialized, mirroring a cluster
// implementation's cache-to-memory/disk call. The in-memory backing here is
// already fully materialized, so Persist only flips the bookkeeping flag the
// Checkpointer inspects.
func (d *Dataset[T]) Persist() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.persisted = true
}

// Unpersist clears the persisted flag. Safe to call whether or not the
// dataset was ever persisted.
func (d *Dataset[T]) Unpersist() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.persisted = false
}

// IsPersisted reports whether Persist has been called without a matching
// Unpersist.
func (d *Dataset[T]) IsPersisted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.persisted
}

// Checkpoint writes the dataset's contents to dir/checkpoint-<id>.gob using
// encoding/gob, the same serialization mechanism used for whole-model
// persistence elsewhere in this stack, scoped down here to lineage-
// truncation snapshots (see SPEC_FULL.md §6).
func (d *Dataset[T]) Checkpoint(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("paralleldataset: checkpoint mkdir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("checkpoint-%d.gob", d.id))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("paralleldataset: checkpoint create: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(d.partitions); err != nil {
		return fmt.Errorf("paralleldataset: checkpoint encode: %w", err)
	}

	d.mu.Lock()
	d.checkpointed = true
	d.checkpointPath = path
	d.mu.Unlock()
	return nil
}

// DeleteCheckpoint removes the on-disk checkpoint file, if any. Per
// SPEC_FULL.md §6/§7, deletion failures are the caller's responsibility to
// log-and-swallow; DeleteCheckpoint itself just reports the OS error.
func (d *Dataset[T]) DeleteCheckpoint() error {
	d.mu.Lock()
	path := d.checkpointPath
	d.checkpointed = false
	d.checkpointPath = ""
	d.mu.Unlock()

	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsCheckpointed reports whether Checkpoint has succeeded without a
// subsequent DeleteCheckpoint.
func (d *Dataset[T]) IsCheckpointed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checkpointed
}
