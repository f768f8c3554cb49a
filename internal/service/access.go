package service

import "esk/training-app/internal/domain"

// DenyReason says why a Decision refused access.
type DenyReason string

const (
	DenyUnauthenticated DenyReason = "unauthenticated"
	DenyForbidden       DenyReason = "forbidden"
)

// Decision is the outcome of an access check: either Allowed with the caller's
// identity, Denied with a reason, or Failed when the check itself could not run.
type Decision struct {
	Identity domain.PublicUser
	Reason   DenyReason
	Err      error
	allowed  bool
}

func Allow(identity domain.PublicUser) Decision {
	return Decision{Identity: identity, allowed: true}
}

func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

func Fail(err error) Decision {
	return Decision{Err: err}
}

func (d Decision) IsAllowed() bool {
	return d.allowed && d.Err == nil
}

// Policy decides whether an authenticated identity may proceed.
type Policy func(identity domain.PublicUser) Decision

// AdminOnly allows administrators only.
func AdminOnly(identity domain.PublicUser) Decision {
	if identity.IsAdmin() {
		return Allow(identity)
	}
	return Deny(DenyForbidden)
}

// Evaluate runs policies in order and returns the first refusal, or Allow.
func Evaluate(identity domain.PublicUser, policies ...Policy) Decision {
	for _, p := range policies {
		if d := p(identity); !d.IsAllowed() {
			return d
		}
	}
	return Allow(identity)
}
