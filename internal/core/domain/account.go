package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// Roles lists every account kind in a stable order.
var Roles = []Role{RolePatient, RoleDoctor, RoleAdmin}

// ParseRole accepts the lowercase names the web client sends as well as the
// canonical upper-case form.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient, true
	case RoleDoctor:
		return RoleDoctor, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Collection is the name of the store holding accounts of this kind.
func (r Role) Collection() string {
	switch r {
	case RolePatient:
		return "patients"
	case RoleDoctor:
		return "doctors"
	case RoleAdmin:
		return "admins"
	}
	return ""
}

// ProvisionsOnLogin reports whether a first login creates the account.
// Patients only come into existence through sign-up.
func (r Role) ProvisionsOnLogin() bool {
	return r == RoleDoctor || r == RoleAdmin
}

// Wire is the lowercase form the web client sends and routes on.
func (r Role) Wire() string {
	return strings.ToLower(string(r))
}

type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Specialty string `json:"specialty,omitempty"`
}

type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	PasswordDigest string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	Profile
}

// NormalizeEmail is applied before every lookup and insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
