package paralleldataset

import (
	"github.com/ezoic/gbtreecore/pkg/log"
)

// StorageLevel mirrors a cluster cache's storage tier selector. The local
// backend in this package always keeps data in process memory regardless of
// level; the value is threaded through so callers targeting a distributed
// backend can honor it.
type StorageLevel int

const (
	// MemoryOnly keeps persisted datasets in memory only.
	MemoryOnly StorageLevel = iota
	// MemoryAndDisk spills to disk under memory pressure.
	MemoryAndDisk
	// DiskOnly never keeps persisted datasets in memory.
	DiskOnly
)

// Checkpointer truncates dataset lineage by periodically persisting and
// checkpointing the datasets threaded through a growing computation (here,
// a tree's per-level node-id and histogram datasets), matching the FIFO
// queue discipline in SPEC_FULL.md §5/§6: at most 3 persisted datasets live
// at once, and only one checkpoint is kept on disk at a time.
type Checkpointer struct {
	interval     int
	storageLevel StorageLevel
	checkpointDir string
	logger       log.Logger

	updates int

	persistQueue     []Lineage
	lastCheckpoint   Lineage
}

const maxPersistQueue = 3

// NewCheckpointer constructs a Checkpointer. interval=-1 disables
// checkpointing entirely (Update still manages the persist queue).
// checkpointDir is the directory checkpoint files are written under; an
// empty dir also disables checkpointing even if interval > 0.
func NewCheckpointer(interval int, storageLevel StorageLevel, checkpointDir string) *Checkpointer {
	return &Checkpointer{
		interval:      interval,
		storageLevel:  storageLevel,
		checkpointDir: checkpointDir,
		logger:        log.GetLoggerWithName("paralleldataset.checkpointer"),
	}
}

// Update persists ds if not already persisted, evicts the oldest persisted
// dataset once the queue exceeds maxPersistQueue, and every interval
// updates writes a checkpoint and deletes the previous one. Checkpoint I/O
// failures are logged and swallowed; Update never returns an error to the
// training loop (SPEC_FULL.md §7).
func (c *Checkpointer) Update(ds Lineage) {
	if !ds.IsPersisted() {
		ds.Persist()
		c.persistQueue = append(c.persistQueue, ds)
		for len(c.persistQueue) > maxPersistQueue {
			oldest := c.persistQueue[0]
			c.persistQueue = c.persistQueue[1:]
			oldest.Unpersist()
		}
	}

	if c.interval <= 0 || c.checkpointDir == "" {
		return
	}

	c.updates++
	if c.updates%c.interval != 0 {
		return
	}

	if err := ds.Checkpoint(c.checkpointDir); err != nil {
		c.logger.Error("checkpoint write failed", "err", err, "dataset_id", ds.ID())
		return
	}

	previous := c.lastCheckpoint
	c.lastCheckpoint = ds
	if previous != nil && previous.ID() != ds.ID() {
		// Deletion runs off the critical path: failures are best-effort and
		// must never block the training loop (SPEC_FULL.md §5).
		go func(l Lineage) {
			if err := l.DeleteCheckpoint(); err != nil {
				c.logger.Error("checkpoint deletion failed", "err", err, "dataset_id", l.ID())
			}
		}(previous)
	}
}

// UnpersistAll unpersists every dataset this Checkpointer has persisted.
// Called at tree teardown.
func (c *Checkpointer) UnpersistAll() {
	for _, ds := range c.persistQueue {
		ds.Unpersist()
	}
	c.persistQueue = nil
}

// DeleteAllCheckpoints deletes the checkpoint file this Checkpointer is
// currently tracking, if any. Called at tree teardown.
func (c *Checkpointer) DeleteAllCheckpoints() {
	if c.lastCheckpoint == nil {
		return
	}
	if err := c.lastCheckpoint.DeleteCheckpoint(); err != nil {
		c.logger.Error("final checkpoint deletion failed", "err", err, "dataset_id", c.lastCheckpoint.ID())
	}
	c.lastCheckpoint = nil
}
