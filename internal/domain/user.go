package domain

import "time"

// Role enumerates portal roles. There is no hierarchy; every route names the
// roles it admits explicitly.
type Role string

const (
	RoleCitizen  Role = "CITIZEN"
	RoleOfficer  Role = "OFFICER"
	RoleHelpdesk Role = "HELPDESK"
	RoleAdmin    Role = "ADMIN"
)

// StaffRoles are the roles allowed to operate queues on behalf of citizens.
var StaffRoles = []Role{RoleOfficer, RoleHelpdesk, RoleAdmin}

// IsStaff reports whether the role belongs to the staff set.
func (r Role) IsStaff() bool {
	for _, role := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is the domain model for registered residents and staff accounts.
type User struct {
	ID                   string
	Name                 string
	PhoneNumber          string
	IdentificationNumber *string
	PasswordHash         string
	Role                 Role
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// PublicUser is the projection safe to return to clients. The password hash
// never leaves the service layer.
type PublicUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Role        Role   `json:"role"`
}

// Public strips credential material from a user record.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
	}
}
