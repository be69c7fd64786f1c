package user

import (
	"time"

	"github.com/corray333/jersey-shop/internal/service/models/page"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps anything other than "admin" to RoleUser.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}

	return RoleUser
}

// User is a shop account. PasswordHash is never serialised.
type User struct {
	ID           int64      `json:"id"`
	Role         Role       `json:"role"`
	Firstname    string     `json:"firstname"`
	Lastname     string     `json:"lastname"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Telephone    string     `json:"telephone"`
	Address      string     `json:"address"`
	Zipcode      string     `json:"zipcode"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// QueryUsersModel represents filter parameters for querying users.
type QueryUsersModel struct {
	IDs    []int64
	Emails []string
	// Latest orders by creation time, newest first.
	Latest bool
	page.Page
}
