package domain

import "github.com/google/uuid"

// Profile is the Supabase profiles row that carries a user's dashboard role.
type Profile struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Role *string   `gorm:"column:role" json:"role"`
}

func (Profile) TableName() string {
	return "profiles"
}
