package repository

import (
	"strings"

	"github.com/evcrm/charger-crm/internal/domain"
)

// ChargerFilters narrows a catalog listing
type ChargerFilters struct {
	Search string
	Brand  *domain.ChargerBrand
}

// ChargerRepository holds the charger catalog in memory
type ChargerRepository struct {
	h   holder[Chargers, domain.ChargerModel]
	ids *IDGenerator
}

// NewChargerRepository creates an empty catalog
func NewChargerRepository(ids *IDGenerator) *ChargerRepository {
	return &ChargerRepository{
		h:   holder[Chargers, domain.ChargerModel]{items: Chargers{}},
		ids: ids,
	}
}

// Slot returns the snapshot slot of the collection
func (r *ChargerRepository) Slot() string { return SlotChargers }

// Version returns the change counter of the collection
func (r *ChargerRepository) Version() uint64 {
	_, v := r.h.current()
	return v
}

// All returns a deep copy of the catalog
func (r *ChargerRepository) All() Chargers {
	items, _ := r.h.current()
	return items.Clone()
}

// GetByID returns a copy of the model with id
func (r *ChargerRepository) GetByID(id string) (*domain.ChargerModel, error) {
	items, _ := r.h.current()
	m, ok := items.Find(id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	out := m.Clone()
	return &out, nil
}

// List returns models matching filters. Search matches the model name.
func (r *ChargerRepository) List(filters *ChargerFilters) []domain.ChargerModel {
	items, _ := r.h.current()
	out := make([]domain.ChargerModel, 0, len(items))
	for _, m := range items {
		if filters != nil {
			if filters.Brand != nil && m.Brand != *filters.Brand {
				continue
			}
			if s := strings.ToLower(strings.TrimSpace(filters.Search)); s != "" && !strings.Contains(strings.ToLower(m.Name), s) {
				continue
			}
		}
		out = append(out, m.Clone())
	}
	return out
}

// Create inserts model at the head of the catalog with blank features removed
func (r *ChargerRepository) Create(model domain.ChargerModel) domain.ChargerModel {
	items, _ := r.h.current()
	if model.ID == "" || items.Has(model.ID) {
		model.ID = r.ids.Next(ChargerIDPrefix, items.Has)
	}
	model.Features = CleanFeatures(model.Features)
	r.h.swap(items.Insert(model.Clone()))
	return model.Clone()
}

// Update replaces the model of the same id in place with blank features removed
func (r *ChargerRepository) Update(model domain.ChargerModel) (domain.ChargerModel, error) {
	items, _ := r.h.current()
	model.Features = CleanFeatures(model.Features)
	next, ok := items.Replace(model.Clone())
	if !ok {
		return domain.ChargerModel{}, ErrRecordNotFound
	}
	r.h.swap(next)
	return model.Clone(), nil
}

// Delete removes the model with id
func (r *ChargerRepository) Delete(id string) error {
	items, _ := r.h.current()
	next, ok := items.Remove(id)
	if !ok {
		return ErrRecordNotFound
	}
	r.h.swap(next)
	return nil
}

// Seed replaces the catalog with the built-in dataset
func (r *ChargerRepository) Seed() {
	r.h.swap(DefaultChargers())
}

// MarshalSnapshot encodes the catalog
func (r *ChargerRepository) MarshalSnapshot() ([]byte, uint64, error) {
	return r.h.marshal()
}

// LoadSnapshot restores the catalog from encoded data
func (r *ChargerRepository) LoadSnapshot(data []byte) error {
	return r.h.unmarshal(data)
}
