package auth

import "context"

type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
)

// Identity is the caller of a request as vouched for by the token issuer.
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

func (i Identity) IsStaff() bool {
	return i.Role == RoleStaff
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}
