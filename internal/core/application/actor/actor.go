// Package actor identifies who is invoking a use case and what they are
// allowed to do. Handlers check capabilities, never roles: roles exist only
// at the edge where they expand into capability sets.
package actor

import "skycourier/internal/pkg/errs"

// Capability is one permitted operation class.
type Capability string

const (
	CapCreateOrder Capability = "orders.create"
	CapCancelOrder Capability = "orders.cancel"
	CapReadOrders  Capability = "orders.read"
	CapDispatch    Capability = "dispatch.run"
	CapOps         Capability = "ops.control"
)

// Role names accepted at the transport edge.
const (
	RoleMerchant = "merchant"
	RoleOps      = "ops"
	RoleAdmin    = "admin"
	RoleSystem   = "system"
)

// Context is the resolved identity of a request: a stable user id plus the
// capability set granted to it.
type Context struct {
	userID       string
	capabilities map[Capability]struct{}
}

// NewContext creates an actor context with an explicit capability set.
func NewContext(userID string, capabilities ...Capability) (Context, error) {
	if userID == "" {
		return Context{}, errs.NewValueIsRequiredError("userId")
	}

	set := make(map[Capability]struct{}, len(capabilities))
	for _, c := range capabilities {
		set[c] = struct{}{}
	}
	return Context{userID: userID, capabilities: set}, nil
}

// FromRole creates an actor context from an edge role name. Unknown roles
// get no capabilities rather than an error, so requests fail at the
// capability check with a precise message.
func FromRole(userID, role string) (Context, error) {
	return NewContext(userID, capabilitiesForRole(role)...)
}

// System is the actor used by background jobs.
func System() Context {
	ctx, _ := NewContext("system", capabilitiesForRole(RoleSystem)...)
	return ctx
}

func capabilitiesForRole(role string) []Capability {
	switch role {
	case RoleMerchant:
		return []Capability{CapCreateOrder, CapCancelOrder, CapReadOrders}
	case RoleOps:
		return []Capability{CapReadOrders, CapCancelOrder, CapDispatch, CapOps}
	case RoleAdmin, RoleSystem:
		return []Capability{CapCreateOrder, CapCancelOrder, CapReadOrders, CapDispatch, CapOps}
	}
	return nil
}

func (c Context) UserID() string {
	return c.userID
}

// Can reports whether the actor holds the capability.
func (c Context) Can(capability Capability) bool {
	_, ok := c.capabilities[capability]
	return ok
}

// Require returns a PreconditionFailed error when the actor lacks the
// capability.
func (c Context) Require(capability Capability) error {
	if !c.Can(capability) {
		return errs.NewPreconditionFailedError(
			"actor " + c.userID + " lacks capability " + string(capability))
	}
	return nil
}
