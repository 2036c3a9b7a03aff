package model

import "time"

// User roles recognised by the core. Only admins may perform privileged
// mutations.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is the slice of the identity directory the core needs: enough to
// resolve an actor and to suspend, activate, or delete an account.
type User struct {
	ID              string     `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	Name            string     `json:"name" db:"name"`
	Role            string     `json:"role" db:"role"`
	IsSuspended     bool       `json:"isSuspended" db:"is_suspended"`
	SuspendedAt     *time.Time `json:"suspendedAt,omitempty" db:"suspended_at"`
	SuspendedReason *string    `json:"suspendedReason,omitempty" db:"suspended_reason"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// Actor is the resolved administrative identity performing a privileged
// mutation.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
