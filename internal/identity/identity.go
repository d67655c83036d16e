package identity

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Role tags the type of caller performing an operation.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleTechnician    Role = "technician"
)

// Caller identifies who is performing a boundary operation. Technicians carry
// their technician record ID; administrators do not.
type Caller struct {
	Role         Role
	TechnicianID snowflake.ID
}

// IsAdministrator reports whether the caller has administrator rights.
func (c Caller) IsAdministrator() bool { return c.Role == RoleAdministrator }

// IsTechnician reports whether the caller is a technician.
func (c Caller) IsTechnician() bool { return c.Role == RoleTechnician }

// Administrator returns an administrator caller.
func Administrator() Caller {
	return Caller{Role: RoleAdministrator}
}

// Technician returns a technician caller bound to a technician record.
func Technician(id snowflake.ID) Caller {
	return Caller{Role: RoleTechnician, TechnicianID: id}
}

type contextKey string

const callerKey contextKey = "identity_caller"

// WithCaller attaches the caller identity to the context.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext extracts the caller identity. Absent a caller the
// operation is treated as an administrator action (trusted internal callers).
func CallerFromContext(ctx context.Context) Caller {
	caller, ok := ctx.Value(callerKey).(Caller)
	if !ok {
		return Administrator()
	}
	return caller
}
