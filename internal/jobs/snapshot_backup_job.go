package jobs

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/evcrm/charger-crm/internal/metrics"
	"github.com/evcrm/charger-crm/internal/storage"
	"go.uber.org/zap"
)

// SnapshotBackupJobName is the scheduler name of the backup job
const SnapshotBackupJobName = "snapshot_backup"

// backupTimeLayout names one backup folder per run
const backupTimeLayout = "20060102T150405Z"

// SnapshotExporter returns the current encoded collections keyed by slot
type SnapshotExporter interface {
	Export() (map[string][]byte, error)
}

// SnapshotBackupJob copies every collection snapshot to backup storage
// under <prefix>/<timestamp>/<slot>.json.
type SnapshotBackupJob struct {
	state   SnapshotExporter
	storage storage.Storage
	prefix  string
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewSnapshotBackupJob creates the job. The timeout bounds one run.
func NewSnapshotBackupJob(state SnapshotExporter, store storage.Storage, prefix string, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *SnapshotBackupJob {
	return &SnapshotBackupJob{
		state:   state,
		storage: store,
		prefix:  prefix,
		timeout: timeout,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes one backup; it is called by the scheduler
func (j *SnapshotBackupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	folder, err := j.Backup(ctx)
	j.metrics.BackupFinished(err)
	if err != nil {
		j.logger.Error("snapshot backup failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("snapshot backup completed",
		zap.String("folder", folder),
		zap.Duration("duration", time.Since(start)))
}

// Backup writes all slots and returns the folder they were written to.
// Every slot is attempted; the first failure is returned.
func (j *SnapshotBackupJob) Backup(ctx context.Context) (string, error) {
	snapshots, err := j.state.Export()
	if err != nil {
		return "", fmt.Errorf("failed to export snapshots: %w", err)
	}

	folder := path.Join(j.prefix, j.now().UTC().Format(backupTimeLayout))

	slots := make([]string, 0, len(snapshots))
	for slot := range snapshots {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	var firstErr error
	for _, slot := range slots {
		name := path.Join(folder, slot+".json")
		if _, err := j.storage.Upload(ctx, name, "application/json", bytes.NewReader(snapshots[slot])); err != nil {
			j.logger.Warn("failed to back up slot",
				zap.String("slot", slot),
				zap.String("object", name),
				zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to back up %s: %w", slot, err)
			}
		}
	}

	return folder, firstErr
}
