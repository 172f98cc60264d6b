package model

import (
	"time"

	"github.com/google/uuid"
)

// Display is a physical or virtual screen with its own timezone and schedule.
type Display struct {
	ID             uuid.UUID  `db:"id"              json:"id"`
	Name           string     `db:"name"            json:"name"`
	ActivationCode string     `db:"activation_code" json:"activation_code"`
	Timezone       string     `db:"timezone"        json:"timezone"`
	IsMain         bool       `db:"is_main"         json:"is_main"`
	CreatedBy      *uuid.UUID `db:"created_by"      json:"created_by"`
	CreatedAt      time.Time  `db:"created_at"      json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"      json:"updated_at"`
}

// Location resolves the display's IANA timezone.
func (d Display) Location() (*time.Location, error) {
	return time.LoadLocation(d.Timezone)
}
