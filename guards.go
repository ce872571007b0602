package auth

// Guard is a pure authorization predicate evaluated against a resolved
// identity. Guards never touch storage and always terminate with a decision;
// ownership sets are supplied per request by the caller, so the core stays
// ignorant of properties, listings, and measurements.
type Guard func(identity Identity) error

// Decision is the outcome of evaluating guards against an identity. Reason
// carries the rejection's text code; it is computed per request and never
// persisted.
type Decision struct {
	Allowed bool
	Reason  string
}

// RequireActive fails when the identity's account has been deactivated
func RequireActive() Guard {
	return func(identity Identity) error {
		if identity == nil {
			return ErrIdentityNotFound
		}
		if !identity.Active() {
			return ErrAccountDisabled
		}
		return nil
	}
}

// RequireRole fails unless the identity's role is in the allowed set
func RequireRole(allowedRoles ...UserRole) Guard {
	return func(identity Identity) error {
		if identity == nil {
			return ErrIdentityNotFound
		}
		if UserRole(identity.Role()).In(allowedRoles...) {
			return nil
		}
		return ErrInsufficientPermissions
	}
}

// RequireMinRole fails unless the identity's role meets the minimum level
func RequireMinRole(minRole UserRole) Guard {
	return func(identity Identity) error {
		if identity == nil {
			return ErrIdentityNotFound
		}
		if UserRole(identity.Role()).IsAtLeast(minRole) {
			return nil
		}
		return ErrInsufficientPermissions
	}
}

// RequireOwnerOrRole succeeds when the identity owns the resource or holds
// one of the allowed roles. This is how the CRUD layer expresses "owner,
// assigned agent, or admin may modify" without the core knowing the resource.
func RequireOwnerOrRole(ownerIDs []int64, allowedRoles ...UserRole) Guard {
	owners := make(map[int64]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}

	return func(identity Identity) error {
		if identity == nil {
			return ErrIdentityNotFound
		}
		if _, ok := owners[identity.ID()]; ok {
			return nil
		}
		if UserRole(identity.Role()).In(allowedRoles...) {
			return nil
		}
		return ErrNotAuthorized
	}
}

// Check evaluates guards in order and returns the first rejection
func Check(identity Identity, guards ...Guard) error {
	for _, guard := range guards {
		if guard == nil {
			continue
		}
		if err := guard(identity); err != nil {
			return err
		}
	}
	return nil
}

// Authorize evaluates guards and reports the outcome as a Decision
func Authorize(identity Identity, guards ...Guard) Decision {
	if err := Check(identity, guards...); err != nil {
		return Decision{Allowed: false, Reason: ReasonCode(err)}
	}
	return Decision{Allowed: true}
}
