package model

import "time"

// Roles stored in users.role. Shoppers register as USER; ADMIN accounts are
// created directly in the database.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is a row of the users table. It carries no json tags: the password
// hash must never reach a response, so handlers build their own shapes.
type User struct {
	ID           uint64
	Name         string
	Email        string // lower-cased
	PasswordHash string // bcrypt
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanShop reports whether the account may sign in and buy tickets.
func (u User) CanShop() bool {
	return u.IsActive && (u.Role == RoleUser || u.Role == RoleAdmin)
}
