package repository

import (
	"strings"

	"github.com/evcrm/charger-crm/internal/domain"
)

// CustomerFilters narrows a customer listing
type CustomerFilters struct {
	Search string
	Type   *domain.CustomerType
	Status *domain.ProjectStatus
}

// CustomerRepository holds the customer collection in memory
type CustomerRepository struct {
	h   holder[Customers, domain.Customer]
	ids *IDGenerator
}

// NewCustomerRepository creates an empty customer repository
func NewCustomerRepository(ids *IDGenerator) *CustomerRepository {
	return &CustomerRepository{
		h:   holder[Customers, domain.Customer]{items: Customers{}},
		ids: ids,
	}
}

// Slot returns the snapshot slot of the collection
func (r *CustomerRepository) Slot() string { return SlotCustomers }

// Version returns the change counter of the collection
func (r *CustomerRepository) Version() uint64 {
	_, v := r.h.current()
	return v
}

// All returns a deep copy of the collection
func (r *CustomerRepository) All() Customers {
	items, _ := r.h.current()
	return items.Clone()
}

// GetByID returns a copy of the customer with id
func (r *CustomerRepository) GetByID(id string) (*domain.Customer, error) {
	items, _ := r.h.current()
	c, ok := items.Find(id)
	if !ok {
		return nil, ErrRecordNotFound
	}
	out := c.Clone()
	return &out, nil
}

// List returns customers matching filters in collection order
func (r *CustomerRepository) List(filters *CustomerFilters) []domain.Customer {
	items, _ := r.h.current()
	out := make([]domain.Customer, 0, len(items))
	for _, c := range items {
		if filters != nil && !filters.matches(&c) {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

func (f *CustomerFilters) matches(c *domain.Customer) bool {
	if f.Type != nil && c.Type != *f.Type {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		if !strings.Contains(strings.ToLower(c.Name), s) && !strings.Contains(c.Phone, s) {
			return false
		}
	}
	return true
}

// NextID returns an unused customer id
func (r *CustomerRepository) NextID() string {
	items, _ := r.h.current()
	return r.ids.Next(CustomerIDPrefix, items.Has)
}

// NextNoteID returns a history id unused within customer
func (r *CustomerRepository) NextNoteID(customer *domain.Customer) string {
	return r.ids.Next(NoteIDPrefix, func(id string) bool {
		for _, n := range customer.Notes {
			if n.ID == id {
				return true
			}
		}
		return false
	})
}

// NextProposalID returns a proposal id unused within customer
func (r *CustomerRepository) NextProposalID(customer *domain.Customer) string {
	return r.ids.Next(ProposalIDPrefix, func(id string) bool {
		for _, p := range customer.Proposals {
			if p.ID == id {
				return true
			}
		}
		return false
	})
}

// Create inserts customer at the head of the collection. A missing or
// duplicate id is replaced with a fresh one.
func (r *CustomerRepository) Create(customer domain.Customer) domain.Customer {
	items, _ := r.h.current()
	if customer.ID == "" || items.Has(customer.ID) {
		customer.ID = r.ids.Next(CustomerIDPrefix, items.Has)
	}
	r.h.swap(items.Insert(customer.Clone()))
	return customer.Clone()
}

// Update replaces the stored customer with the same id
func (r *CustomerRepository) Update(customer domain.Customer) error {
	items, _ := r.h.current()
	next, ok := items.Replace(customer.Clone())
	if !ok {
		return ErrRecordNotFound
	}
	r.h.swap(next)
	return nil
}

// Delete removes the customer with id
func (r *CustomerRepository) Delete(id string) error {
	items, _ := r.h.current()
	next, ok := items.Remove(id)
	if !ok {
		return ErrRecordNotFound
	}
	r.h.swap(next)
	return nil
}

// Seed replaces the collection with the built-in dataset
func (r *CustomerRepository) Seed() {
	r.h.swap(DefaultCustomers())
}

// MarshalSnapshot encodes the collection
func (r *CustomerRepository) MarshalSnapshot() ([]byte, uint64, error) {
	return r.h.marshal()
}

// LoadSnapshot restores the collection from encoded data
func (r *CustomerRepository) LoadSnapshot(data []byte) error {
	return r.h.unmarshal(data)
}
