package models

import (
	"time"

	"gorm.io/gorm"
)

// Supplier is a merchant or importer wines are sourced from.
type Supplier struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string `json:"name" gorm:"type:varchar(120);not null" validate:"required,min=2,max=120"`
	Email       string `json:"email" gorm:"type:varchar(255);index" validate:"omitempty,email"`
	Phone       string `json:"phone" gorm:"type:varchar(40)" validate:"omitempty,max=40"`
	ContactName string `json:"contact_name" gorm:"type:varchar(120)" validate:"omitempty,max=120"`
	Notes       string `json:"notes" gorm:"type:text" validate:"omitempty,max=1000"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// SupplierPatch is the partial-update payload for Supplier.
type SupplierPatch struct {
	Name        *string `json:"name" validate:"omitnil,min=2,max=120"`
	Email       *string `json:"email" validate:"omitnil,omitempty,email"`
	Phone       *string `json:"phone" validate:"omitnil,max=40"`
	ContactName *string `json:"contact_name" validate:"omitnil,max=120"`
	Notes       *string `json:"notes" validate:"omitnil,max=1000"`
}
