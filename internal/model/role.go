package model

import "time"

// RoleAdmin is the role name that grants admin privilege.
const RoleAdmin = "ADMIN"

// Role is a named permission label assigned to users via the
// user_roles join table. Roles are pre-seeded; there is no creation path.
type Role struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
