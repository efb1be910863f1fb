package model

import "time"

// Roles recognised in the users.role column.  STUDENT accounts own
// projects, MENTOR accounts review and verify work, ADMIN accounts
// have access to the admin console.
const (
	RoleStudent = "STUDENT"
	RoleMentor  = "MENTOR"
	RoleAdmin   = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table.  Handlers define separate response types with
// appropriate JSON tags; these structs are used by the repository
// layer.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of STUDENT, MENTOR, ADMIN.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
