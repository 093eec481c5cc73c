package repository

import (
	"github.com/evcrm/charger-crm/internal/domain"
)

// UserRepository holds the user collection in memory
type UserRepository struct {
	h   holder[Users, domain.User]
	ids *IDGenerator
}

// NewUserRepository creates an empty user repository
func NewUserRepository(ids *IDGenerator) *UserRepository {
	return &UserRepository{
		h:   holder[Users, domain.User]{items: Users{}},
		ids: ids,
	}
}

// Slot returns the snapshot slot of the collection
func (r *UserRepository) Slot() string { return SlotUsers }

// Version returns the change counter of the collection
func (r *UserRepository) Version() uint64 {
	_, v := r.h.current()
	return v
}

// All returns a deep copy of the collection
func (r *UserRepository) All() Users {
	items, _ := r.h.current()
	return items.Clone()
}

// GetByID returns a copy of the user with id
func (r *UserRepository) GetByID(id string) (*domain.User, error) {
	items, _ := r.h.current()
	u, ok := items.Find(id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	out := u.Clone()
	return &out, nil
}

// GetByEmail returns a copy of the user with email, compared case-insensitively
func (r *UserRepository) GetByEmail(email string) (*domain.User, error) {
	items, _ := r.h.current()
	u, ok := items.FindByEmail(email)
	if !ok {
		return nil, ErrRecordNotFound
	}
	out := u.Clone()
	return &out, nil
}

// Exists reports whether a user with id is present
func (r *UserRepository) Exists(id string) bool {
	items, _ := r.h.current()
	return items.Has(id)
}

// Create appends user to the collection. A missing or duplicate id is replaced.
func (r *UserRepository) Create(user domain.User) domain.User {
	items, _ := r.h.current()
	if user.ID == "" || items.Has(user.ID) {
		user.ID = r.ids.Next(UserIDPrefix, items.Has)
	}
	if user.AssignedCustomers == nil {
		user.AssignedCustomers = []string{}
	}
	r.h.swap(items.Insert(user.Clone()))
	return user.Clone()
}

// Update replaces the stored user with the same id
func (r *UserRepository) Update(user domain.User) error {
	items, _ := r.h.current()
	next, ok := items.Replace(user.Clone())
	if !ok {
		return ErrRecordNotFound
	}
	r.h.swap(next)
	return nil
}

// Delete removes the user with id
func (r *UserRepository) Delete(id string) error {
	items, _ := r.h.current()
	next, ok := items.Remove(id)
	if !ok {
		return ErrRecordNotFound
	}
	r.h.swap(next)
	return nil
}

// Seed replaces the collection with the built-in dataset
func (r *UserRepository) Seed() {
	r.h.swap(DefaultUsers())
}

// MarshalSnapshot encodes the collection
func (r *UserRepository) MarshalSnapshot() ([]byte, uint64, error) {
	return r.h.marshal()
}

// LoadSnapshot restores the collection from encoded data
func (r *UserRepository) LoadSnapshot(data []byte) error {
	return r.h.unmarshal(data)
}
