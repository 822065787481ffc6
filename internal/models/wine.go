package models

import (
	"time"

	"gorm.io/gorm"
)

// Wine is a stocked wine. The struct is the canonical declaration of the
// entity: gorm tags define the table shape, validate tags define the input
// rules, and the schema registry derives both views from it.
type Wine struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	SKU        string  `json:"sku" gorm:"uniqueIndex;type:varchar(64);not null" validate:"required,min=2,max=64"`
	Name       string  `json:"name" gorm:"type:varchar(200);not null" validate:"required,min=2,max=200"`
	Winery     string  `json:"winery" gorm:"type:varchar(120)" validate:"omitempty,max=120"`
	Vintage    int     `json:"vintage" validate:"omitempty,gte=1900,lte=2100"`
	Varietal   string  `json:"varietal" gorm:"type:varchar(80)" validate:"omitempty,max=80"`
	Country    string  `json:"country" gorm:"type:varchar(80)" validate:"omitempty,max=80"`
	Region     string  `json:"region" gorm:"type:varchar(120)" validate:"omitempty,max=120"`
	Style      string  `json:"style" gorm:"type:varchar(20)" validate:"omitempty,oneof=red white rose sparkling dessert fortified"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	Stock      int     `json:"stock" validate:"gte=0"`
	CellarBin  string  `json:"cellar_bin" gorm:"type:varchar(40)" validate:"omitempty,max=40"`
	Notes      string  `json:"notes" gorm:"type:text" validate:"omitempty,max=2000"`
	LabelPath  string  `json:"label_path,omitempty" gorm:"type:varchar(255)"`
	SupplierID string  `json:"supplier_id,omitempty" gorm:"type:varchar(36);index" validate:"omitempty,uuid"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// WinePatch is the partial-update payload for Wine. A nil field is left
// unchanged; constraints mirror the entity and the registry enforces the
// mirror at startup.
type WinePatch struct {
	SKU        *string  `json:"sku" validate:"omitnil,min=2,max=64"`
	Name       *string  `json:"name" validate:"omitnil,min=2,max=200"`
	Winery     *string  `json:"winery" validate:"omitnil,max=120"`
	Vintage    *int     `json:"vintage" validate:"omitnil,omitempty,gte=1900,lte=2100"`
	Varietal   *string  `json:"varietal" validate:"omitnil,max=80"`
	Country    *string  `json:"country" validate:"omitnil,max=80"`
	Region     *string  `json:"region" validate:"omitnil,max=120"`
	Style      *string  `json:"style" validate:"omitnil,omitempty,oneof=red white rose sparkling dessert fortified"`
	Price      *float64 `json:"price" validate:"omitnil,gt=0"`
	Stock      *int     `json:"stock" validate:"omitnil,gte=0"`
	CellarBin  *string  `json:"cellar_bin" validate:"omitnil,max=40"`
	Notes      *string  `json:"notes" validate:"omitnil,max=2000"`
	SupplierID *string  `json:"supplier_id" validate:"omitnil,omitempty,uuid"`
}

