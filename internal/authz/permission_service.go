package authz

import (
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/rs/zerolog"
)

// PermissionService is the single decision point for authorization. Its
// methods are pure with respect to application state: they read only the
// actor value passed in, perform no I/O, and are safe for concurrent use.
// Callers load the actor (with roles and capabilities) fresh per request and
// pass it explicitly; there is no ambient "current user".
type PermissionService struct {
	observer Observer
	log      zerolog.Logger
}

// NewPermissionService creates a PermissionService. A nil observer disables
// decision reporting.
func NewPermissionService(observer Observer, log zerolog.Logger) *PermissionService {
	if observer == nil {
		observer = NopObserver{}
	}
	return &PermissionService{
		observer: observer,
		log:      log.With().Str("component", "permission_service").Logger(),
	}
}

// HasCapability reports whether the actor holds the capability.
//
// materials:read is universal and granted unconditionally, including to
// anonymous callers (actor == nil): the platform allows browsing approved
// materials without an account. Every other capability is denied to anonymous
// callers and to capability codes outside the closed catalog.
func (s *PermissionService) HasCapability(actor *model.User, capability model.Capability) bool {
	if capability == model.CapabilityMaterialsRead {
		return true
	}
	if actor == nil {
		return false
	}
	if !model.KnownCapability(capability) {
		// Deny and surface loudly: an unknown code in a check means a role or
		// call site was misconfigured, never a user mistake.
		s.log.Error().
			Str("capability", string(capability)).
			Int("actor_id", actor.ID).
			Msg("Unknown capability code in authorization check")
		return false
	}
	for _, c := range actor.EffectiveCapabilities() {
		if c == capability {
			return true
		}
	}
	return false
}

// Authorize decides whether the actor may perform the action. ownerID is the
// id of the resource owner the action is scoped to (the course owner for
// moderation, the uploader for material edits); it is ignored for
// capability-only actions. A nil error means allowed; a denial is returned as
// a *ForbiddenError carrying the actor, action, and capability involved.
func (s *PermissionService) Authorize(actor *model.User, action Action, ownerID int) error {
	allowed, capability, reason := s.decide(actor, action, ownerID)

	s.observer.Observe(Decision{
		ActorID:    actorID(actor),
		Action:     action.Name,
		Capability: capability,
		OwnerID:    ownerID,
		Allowed:    allowed,
		Reason:     reason,
	})

	if allowed {
		return nil
	}
	return &ForbiddenError{
		ActorID:    actorID(actor),
		Action:     action.Name,
		Capability: capability,
		Reason:     reason,
	}
}

// decide evaluates the action shape. It returns the capability that settled
// the decision, for observability.
func (s *PermissionService) decide(actor *model.User, action Action, ownerID int) (bool, model.Capability, string) {
	switch action.Shape {
	case ShapeCapabilityOnly:
		if s.HasCapability(actor, action.Capability) {
			return true, action.Capability, "capability held"
		}
		return false, action.Capability, "capability not held"

	case ShapeOwnOrAny:
		// The "any" variant bypasses ownership entirely.
		if action.AnyCapability != "" && s.HasCapability(actor, action.AnyCapability) {
			return true, action.AnyCapability, "any-override capability held"
		}
		if action.OwnCapability == "" {
			return false, action.AnyCapability, "no own variant and any-override not held"
		}
		if actor == nil {
			return false, action.OwnCapability, "anonymous actor"
		}
		if actor.ID != ownerID {
			return false, action.OwnCapability, "actor is not the resource owner"
		}
		if s.HasCapability(actor, action.OwnCapability) {
			return true, action.OwnCapability, "owner with own-scoped capability"
		}
		return false, action.OwnCapability, "own-scoped capability not held"

	case ShapeStrictOwner:
		// Identity match is mandatory. Deliberately no delegation: an
		// administrator capability must never satisfy a strict-owner action.
		if actor == nil {
			return false, action.Capability, "anonymous actor"
		}
		if actor.ID != ownerID {
			return false, action.Capability, "strict-owner action requires identity match"
		}
		if s.HasCapability(actor, action.Capability) {
			return true, action.Capability, "owner with capability"
		}
		return false, action.Capability, "capability not held"
	}

	// Unreachable with catalog actions; fail closed for zero-value descriptors.
	return false, action.Capability, "unknown action shape"
}

func actorID(actor *model.User) int {
	if actor == nil {
		return 0
	}
	return actor.ID
}
