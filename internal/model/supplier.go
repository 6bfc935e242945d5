package model

import "time"

// Supplier is the read model for the external supplier registry.
// Only id and name are consumed here (denormalized onto pricing records).
type Supplier struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Status    string `gorm:"not null;default:'active'"` // active | inactive | suspended
	CreatedAt time.Time
}

func (Supplier) TableName() string { return "suppliers" }
