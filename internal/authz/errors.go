package authz

import (
	"errors"
	"fmt"

	"github.com/materiku/materiku-backend/internal/model"
)

// ForbiddenError is returned for every denied decision. It carries enough
// context for callers to log or render a precise reason; it is a normal
// result, never a panic.
type ForbiddenError struct {
	ActorID    int // 0 for anonymous callers
	Action     string
	Capability model.Capability
	Reason     string
}

func (e *ForbiddenError) Error() string {
	if e.ActorID == 0 {
		return fmt.Sprintf("anonymous actor denied %s: %s", e.Action, e.Reason)
	}
	return fmt.Sprintf("actor %d denied %s: %s", e.ActorID, e.Action, e.Reason)
}

// IsForbidden reports whether err is (or wraps) a ForbiddenError.
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}
