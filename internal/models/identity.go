package models

import "time"

type Role string

const (
	RoleClient Role = "client"
	RoleLawyer Role = "lawyer"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleLawyer
}

type PersonName struct {
	First  string
	Middle string
	Last   string
}

// Client is the party filing cases.
type Client struct {
	ID           string
	Email        string
	PasswordHash []byte
	Name         PersonName
	PhoneNumber  string
	CreatedAt    time.Time
}

// Lawyer is the party cases are assigned to.
type Lawyer struct {
	ID           string
	Email        string
	PasswordHash []byte
	Name         PersonName
	CreatedAt    time.Time
}

// Identity is the role-tagged summary returned by registration and login.
type Identity struct {
	Role  Role
	ID    string
	Email string
	Name  PersonName
}

func (c Client) Identity() Identity {
	return Identity{Role: RoleClient, ID: c.ID, Email: c.Email, Name: c.Name}
}

func (l Lawyer) Identity() Identity {
	return Identity{Role: RoleLawyer, ID: l.ID, Email: l.Email, Name: l.Name}
}

type Session struct {
	ID         string
	Role       Role
	IdentityID string
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
