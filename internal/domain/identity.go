package domain

import "context"

// UserProfile 外部身份的只读视图
type UserProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Label returns the display name, falling back to the email.
func (p UserProfile) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Email
}

// IdentityLookup is the read-only view of the external auth provider.
type IdentityLookup interface {
	// Resolve maps an email to the provider's user id; found is false when no user owns the email.
	Resolve(ctx context.Context, email string) (id string, found bool, err error)
	Profile(ctx context.Context, id string) (*UserProfile, error)
}

// CredentialSetter mutates end-user passwords on the auth provider's side.
type CredentialSetter interface {
	SetPassword(ctx context.Context, userID, newPassword string) error
}

// PasswordHasher is the one-way hashing primitive used for admin credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
