// Package policy holds the access rules of the CRM. Every function is pure:
// it looks only at the acting user and the target record and returns a Decision.
package policy

import (
	"github.com/evcrm/charger-crm/internal/domain"
)

// Decision is the outcome of a policy check
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a negative decision with a reason
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Scope selects which visibility predicate a consuming view applies
type Scope int

const (
	// ScopeAssigned shows customers assigned to the actor
	ScopeAssigned Scope = iota
	// ScopeAssignedOrCreated also shows customers the actor created
	ScopeAssignedOrCreated
)

// technicianStatuses are the stages a technician may move a customer into
var technicianStatuses = map[domain.ProjectStatus]bool{
	domain.StatusSurveyed:   true,
	domain.StatusInstalling: true,
	domain.StatusCompleted:  true,
}

// TechnicianStatuses returns the stages a technician may set, in canonical order
func TechnicianStatuses() []domain.ProjectStatus {
	out := make([]domain.ProjectStatus, 0, len(technicianStatuses))
	for _, s := range domain.AllProjectStatuses() {
		if technicianStatuses[s] {
			out = append(out, s)
		}
	}
	return out
}

// CustomerVisible decides whether actor can see customer under the given scope.
// Administrators see everything.
func CustomerVisible(actor *domain.User, customer *domain.Customer, scope Scope) Decision {
	if actor == nil || customer == nil {
		return Deny("no acting user")
	}
	if actor.Role == domain.RoleAdmin {
		return Allow()
	}
	if customer.AssignedTo != "" && customer.AssignedTo == actor.ID {
		return Allow()
	}
	if scope == ScopeAssignedOrCreated && customer.CreatedBy != "" && customer.CreatedBy == actor.ID {
		return Allow()
	}
	return Deny("customer is not assigned to you")
}

// CanCreateCustomer allows administrators and sales representatives
func CanCreateCustomer(actor *domain.User) Decision {
	if actor == nil {
		return Deny("no acting user")
	}
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleSales:
		return Allow()
	}
	return Deny("only administrators and sales can create customers")
}

// CanEditCustomer allows administrators, and sales representatives on their own customers
func CanEditCustomer(actor *domain.User, customer *domain.Customer) Decision {
	if actor == nil || customer == nil {
		return Deny("no acting user")
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return Allow()
	case domain.RoleSales:
		if customer.AssignedTo == actor.ID {
			return Allow()
		}
		return Deny("customer is assigned to another user")
	}
	return Deny("only administrators and sales can edit customers")
}

// CanDeleteCustomer is restricted to administrators
func CanDeleteCustomer(actor *domain.User) Decision {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return Deny("only administrators can delete customers")
	}
	return Allow()
}

// CanSetStatus applies the technician stage whitelist. Other roles are unrestricted.
func CanSetStatus(actor *domain.User, status domain.ProjectStatus) Decision {
	if actor == nil {
		return Deny("no acting user")
	}
	if actor.Role == domain.RoleTechnician && !technicianStatuses[status] {
		return Deny("technicians may only set surveyed, installing or completed")
	}
	return Allow()
}

// CanManageProposals allows administrators, and sales representatives who
// own or created the customer
func CanManageProposals(actor *domain.User, customer *domain.Customer) Decision {
	if actor == nil || customer == nil {
		return Deny("no acting user")
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return Allow()
	case domain.RoleSales:
		return CustomerVisible(actor, customer, ScopeAssignedOrCreated)
	}
	return Deny("only administrators and sales can manage proposals")
}

// CanManageCatalog is restricted to administrators
func CanManageCatalog(actor *domain.User) Decision {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return Deny("only administrators can change the charger catalog")
	}
	return Allow()
}

// CanManageUsers is restricted to administrators
func CanManageUsers(actor *domain.User) Decision {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return Deny("only administrators can manage users")
	}
	return Allow()
}

// CanDeleteUser refuses to delete administrator accounts
func CanDeleteUser(actor *domain.User, target *domain.User) Decision {
	if d := CanManageUsers(actor); !d.Allowed {
		return d
	}
	if target != nil && target.Role == domain.RoleAdmin {
		return Deny("administrator accounts cannot be deleted")
	}
	return Allow()
}
