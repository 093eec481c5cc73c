package repository

import (
	"strings"

	"github.com/evcrm/charger-crm/internal/domain"
)

// Collections are immutable values: every mutating method returns a new
// collection and leaves the receiver untouched, so holders can detect a
// change by comparing versions.

// Customers is an ordered customer collection, newest first
type Customers []domain.Customer

// Users is an ordered user collection in creation order
type Users []domain.User

// Chargers is an ordered catalog, newest first
type Chargers []domain.ChargerModel

func indexOf[T any](items []T, id string, key func(*T) string) int {
	for i := range items {
		if key(&items[i]) == id {
			return i
		}
	}
	return -1
}

func withPrepended[T any](items []T, x T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, x)
	return append(out, items...)
}

func withAppended[T any](items []T, x T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, x)
}

func withReplaced[T any](items []T, i int, x T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[i] = x
	return out
}

func withRemoved[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func customerID(c *domain.Customer) string    { return c.ID }
func userID(u *domain.User) string            { return u.ID }
func chargerID(m *domain.ChargerModel) string { return m.ID }

// Find returns the customer with id
func (c Customers) Find(id string) (domain.Customer, bool) {
	if i := indexOf(c, id, customerID); i >= 0 {
		return c[i], true
	}
	return domain.Customer{}, false
}

// Has reports whether id is present
func (c Customers) Has(id string) bool {
	return indexOf(c, id, customerID) >= 0
}

// Insert returns a new collection with x at the head
func (c Customers) Insert(x domain.Customer) Customers {
	return withPrepended(c, x)
}

// Replace returns a new collection with the record of the same id replaced
func (c Customers) Replace(x domain.Customer) (Customers, bool) {
	i := indexOf(c, x.ID, customerID)
	if i < 0 {
		return c, false
	}
	return withReplaced(c, i, x), true
}

// Remove returns a new collection without id
func (c Customers) Remove(id string) (Customers, bool) {
	i := indexOf(c, id, customerID)
	if i < 0 {
		return c, false
	}
	return withRemoved(c, i), true
}

// Clone deep-copies the collection
func (c Customers) Clone() Customers {
	out := make(Customers, len(c))
	for i := range c {
		out[i] = c[i].Clone()
	}
	return out
}

// Find returns the user with id
func (u Users) Find(id string) (domain.User, bool) {
	if i := indexOf(u, id, userID); i >= 0 {
		return u[i], true
	}
	return domain.User{}, false
}

// Has reports whether id is present
func (u Users) Has(id string) bool {
	return indexOf(u, id, userID) >= 0
}

// FindByEmail matches email case-insensitively
func (u Users) FindByEmail(email string) (domain.User, bool) {
	email = strings.TrimSpace(email)
	for _, x := range u {
		if strings.EqualFold(x.Email, email) {
			return x, true
		}
	}
	return domain.User{}, false
}

// Insert returns a new collection with x at the tail
func (u Users) Insert(x domain.User) Users {
	return withAppended(u, x)
}

// Replace returns a new collection with the record of the same id replaced
func (u Users) Replace(x domain.User) (Users, bool) {
	i := indexOf(u, x.ID, userID)
	if i < 0 {
		return u, false
	}
	return withReplaced(u, i, x), true
}

// Remove returns a new collection without id
func (u Users) Remove(id string) (Users, bool) {
	i := indexOf(u, id, userID)
	if i < 0 {
		return u, false
	}
	return withRemoved(u, i), true
}

// Clone deep-copies the collection
func (u Users) Clone() Users {
	out := make(Users, len(u))
	for i := range u {
		out[i] = u[i].Clone()
	}
	return out
}

// Find returns the model with id
func (m Chargers) Find(id string) (domain.ChargerModel, bool) {
	if i := indexOf(m, id, chargerID); i >= 0 {
		return m[i], true
	}
	return domain.ChargerModel{}, false
}

// Has reports whether id is present
func (m Chargers) Has(id string) bool {
	return indexOf(m, id, chargerID) >= 0
}

// Insert returns a new collection with x at the head
func (m Chargers) Insert(x domain.ChargerModel) Chargers {
	return withPrepended(m, x)
}

// Replace returns a new collection with the model of the same id replaced in place
func (m Chargers) Replace(x domain.ChargerModel) (Chargers, bool) {
	i := indexOf(m, x.ID, chargerID)
	if i < 0 {
		return m, false
	}
	return withReplaced(m, i, x), true
}

// Remove returns a new collection without id
func (m Chargers) Remove(id string) (Chargers, bool) {
	i := indexOf(m, id, chargerID)
	if i < 0 {
		return m, false
	}
	return withRemoved(m, i), true
}

// Clone deep-copies the collection
func (m Chargers) Clone() Chargers {
	out := make(Chargers, len(m))
	for i := range m {
		out[i] = m[i].Clone()
	}
	return out
}

// CleanFeatures trims each feature and drops blank entries
func CleanFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
