package roles

import (
	"fmt"
	"strings"
)

// Role is a factory-scoped permission level. Declaration order is privilege order.
type Role int

const (
	Worker Role = iota
	Storage
	Cutting
	Admin
	Owner
	SuperAdmin
)

var roleNames = [...]string{
	Worker:     "worker",
	Storage:    "storage",
	Cutting:    "cutting",
	Admin:      "admin",
	Owner:      "owner",
	SuperAdmin: "superadmin",
}

func (r Role) String() string {
	if r < Worker || r > SuperAdmin {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// Parse converts a stored role name into a Role.
func Parse(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range roleNames {
		if n == name {
			return Role(i), nil
		}
	}
	return Worker, fmt.Errorf("unknown role %q", s)
}

// AtLeast reports whether r carries at least the privileges of other.
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

// IsAdminOrOwner reports whether the role may manage billing and members.
func IsAdminOrOwner(r Role) bool {
	return r == Admin || r == Owner || r == SuperAdmin
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Set is the collection of roles held by one user.
type Set []Role

// ParseSet parses stored role names, skipping unknown ones.
func ParseSet(names []string) Set {
	out := make(Set, 0, len(names))
	for _, n := range names {
		if r, err := Parse(n); err == nil {
			out = append(out, r)
		}
	}
	return out
}

// Has reports whether the set contains r.
func (s Set) Has(r Role) bool {
	for _, candidate := range s {
		if candidate == r {
			return true
		}
	}
	return false
}

// Highest returns the highest role in the set; an empty set is a worker.
func (s Set) Highest() Role {
	return HighestRole(s)
}

// HighestRole returns the highest-privilege role, defaulting to Worker.
func HighestRole(set []Role) Role {
	highest := Worker
	for _, r := range set {
		if r > highest {
			highest = r
		}
	}
	return highest
}
