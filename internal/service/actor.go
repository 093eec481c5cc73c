package service

import (
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/evcrm/charger-crm/internal/policy"
)

// requireActor rejects a missing or locked acting user
func requireActor(actor *domain.User) error {
	if actor == nil {
		return &PermissionError{Capability: "act", Reason: "no acting user"}
	}
	if !actor.IsActive() {
		return &PermissionError{Capability: "act", Reason: "account is locked"}
	}
	return nil
}

// requireView combines the actor check with the navigation matrix
func requireView(actor *domain.User, view policy.View) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	return check("open "+string(view), policy.CanAccessView(actor, view))
}
