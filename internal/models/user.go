package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role is a single permission granted to a user.
type Role uint8

const (
	// RoleUser grants access to the user's own expenses, people and categories.
	RoleUser Role = 1 << iota
	// RoleAdmin additionally grants user administration.
	RoleAdmin
)

var roleNames = []struct {
	role Role
	name string
}{
	{RoleAdmin, "ROLE_ADMIN"},
	{RoleUser, "ROLE_USER"},
}

// String returns the external name of the role (e.g. "ROLE_ADMIN").
func (r Role) String() string {
	for _, rn := range roleNames {
		if rn.role == r {
			return rn.name
		}
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// RoleSet is a bitset of roles attached to a user record.
type RoleSet uint8

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s |= RoleSet(r)
	}
	return s
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role Role) bool {
	return s&RoleSet(role) != 0
}

// Roles lists the roles in the set, admin first.
func (s RoleSet) Roles() []Role {
	var out []Role
	for _, rn := range roleNames {
		if s.Has(rn.role) {
			out = append(out, rn.role)
		}
	}
	return out
}

// Names returns the external names of the roles in the set.
func (s RoleSet) Names() []string {
	roles := s.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return names
}

// String joins role names with commas.
func (s RoleSet) String() string {
	return strings.Join(s.Names(), ",")
}

// MarshalText implements encoding.TextMarshaler.
func (s RoleSet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *RoleSet) UnmarshalText(text []byte) error {
	parsed, err := ParseRoles(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseRoles parses a comma-separated list of role names such as
// "ROLE_ADMIN,ROLE_USER". The "ROLE_" prefix is optional and matching is
// case-insensitive. An empty string yields an empty set.
func ParseRoles(s string) (RoleSet, error) {
	var set RoleSet
	for _, part := range strings.Split(s, ",") {
		name := strings.ToUpper(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "ROLE_") {
			name = "ROLE_" + name
		}
		found := false
		for _, rn := range roleNames {
			if rn.name == name {
				set |= RoleSet(rn.role)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown role %q", strings.TrimSpace(part))
		}
	}
	return set, nil
}

// User represents a login identity.
// Every user is kept in sync with exactly one Person that shares its username.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Username is the unique login name.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-"`

	// FirstName and LastName are copied to the linked Person on save.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Email is copied to the linked Person on save.
	Email string `json:"email,omitempty"`

	// Roles is the typed permission set of the user.
	Roles RoleSet `json:"roles"`

	// MonthlyIncome is informational; it takes no part in balance computation.
	MonthlyIncome decimal.NullDecimal `json:"monthly_income"`

	// Version is the optimistic locking counter.
	Version int64 `json:"version"`

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(username, passwordHash string, roles RoleSet) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin reports whether the user holds RoleAdmin.
func (u *User) IsAdmin() bool {
	return u.Roles.Has(RoleAdmin)
}
