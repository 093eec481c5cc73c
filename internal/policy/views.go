package policy

import "github.com/evcrm/charger-crm/internal/domain"

// View is a screen of the CRM
type View string

const (
	ViewDashboard View = "DASHBOARD"
	ViewCustomers View = "CUSTOMERS"
	ViewProgress  View = "PROGRESS"
	ViewProposals View = "PROPOSALS"
	ViewChargers  View = "CHARGERS"
	ViewUsers     View = "USERS"
)

var viewOrder = []View{ViewDashboard, ViewCustomers, ViewProgress, ViewProposals, ViewChargers, ViewUsers}

var viewRoles = map[View][]domain.Role{
	ViewDashboard: {domain.RoleAdmin, domain.RoleSales},
	ViewCustomers: {domain.RoleAdmin, domain.RoleSales},
	ViewProgress:  {domain.RoleAdmin, domain.RoleSales, domain.RoleTechnician},
	ViewProposals: {domain.RoleAdmin, domain.RoleSales},
	ViewChargers:  {domain.RoleAdmin, domain.RoleSales, domain.RoleTechnician},
	ViewUsers:     {domain.RoleAdmin},
}

// viewScopes holds the customer visibility predicate each list view applies
var viewScopes = map[View]Scope{
	ViewDashboard: ScopeAssigned,
	ViewCustomers: ScopeAssigned,
	ViewProgress:  ScopeAssigned,
	ViewProposals: ScopeAssignedOrCreated,
}

// CanAccessView decides whether actor may open view
func CanAccessView(actor *domain.User, view View) Decision {
	if actor == nil {
		return Deny("no acting user")
	}
	roles, ok := viewRoles[view]
	if !ok {
		return Deny("unknown view")
	}
	for _, r := range roles {
		if r == actor.Role {
			return Allow()
		}
	}
	return Deny("view " + string(view) + " is not available to role " + string(actor.Role))
}

// AccessibleViews lists the views actor may open, in navigation order
func AccessibleViews(actor *domain.User) []View {
	var out []View
	for _, v := range viewOrder {
		if CanAccessView(actor, v).Allowed {
			out = append(out, v)
		}
	}
	return out
}

// ScopeFor returns the visibility predicate of a list view
func ScopeFor(view View) Scope {
	if s, ok := viewScopes[view]; ok {
		return s
	}
	return ScopeAssigned
}
