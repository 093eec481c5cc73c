package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evcrm/charger-crm/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SnapshotRepository stores collection snapshots in the snapshots table
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load returns the stored payload of slot, or nil when the slot has never been written
func (r *SnapshotRepository) Load(ctx context.Context, slot string) ([]byte, error) {
	var snap domain.Snapshot
	err := r.db.WithContext(ctx).Where("slot = ?", slot).First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot %s: %w", slot, err)
	}
	return []byte(snap.Payload), nil
}

// Save writes the payload of slot, bumping its version
func (r *SnapshotRepository) Save(ctx context.Context, slot string, data []byte) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Snapshot
		err := tx.Where("slot = ?", slot).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&domain.Snapshot{
				Slot:      slot,
				Payload:   datatypes.JSON(data),
				Version:   1,
				UpdatedAt: time.Now().UTC(),
			}).Error
		case err != nil:
			return fmt.Errorf("failed to read snapshot %s: %w", slot, err)
		}

		return tx.Model(&domain.Snapshot{}).
			Where("slot = ?", slot).
			Updates(map[string]interface{}{
				"payload":    datatypes.JSON(data),
				"version":    existing.Version + 1,
				"updated_at": time.Now().UTC(),
			}).Error
	})
}

// List returns every stored snapshot ordered by key
func (r *SnapshotRepository) List(ctx context.Context) ([]domain.Snapshot, error) {
	var snaps []domain.Snapshot
	err := r.db.WithContext(ctx).Order("slot ASC").Find(&snaps).Error
	return snaps, err
}
