package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser     = "user"
	RoleOperator = "operator"
)

type User struct {
	ID             uuid.UUID `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	Name           *string   `db:"name"`
	Role           string    `db:"role"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (u *User) IsOperator() bool {
	return u != nil && u.Role == RoleOperator
}
