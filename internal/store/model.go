package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a keepsake offered in the store, personalized with memorial content.
type Product struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	Category    string `gorm:"size:50"`
	BasePrice   int64  `gorm:"not null"` // cents
	ImageURL    string `gorm:"size:500"`
	IsActive    bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
}

// TableName defines the table name for the Product model.
func (Product) TableName() string {
	return "store_products"
}

// BeforeCreate assigns the row identifier.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Order is a placed keepsake order. Payment and fulfillment happen offline.
type Order struct {
	ID         string `gorm:"primaryKey;size:36"`
	OwnerID    string `gorm:"size:64;index:idx_orders_owner;not null"`
	MemorialID string `gorm:"size:36"`
	ProductID  string `gorm:"size:36;not null"`

	ProductName    string `gorm:"size:200;not null"`
	CustomText     string `gorm:"type:text"`
	CustomPhotoURL string `gorm:"size:500"`
	Quantity       int    `gorm:"not null"`
	UnitPrice      int64  `gorm:"not null"`
	TotalPrice     int64  `gorm:"not null"`

	ShippingName    string `gorm:"size:200;not null"`
	ShippingAddress string `gorm:"size:300;not null"`
	ShippingCity    string `gorm:"size:100;not null"`
	ShippingState   string `gorm:"size:100;not null"`
	ShippingZip     string `gorm:"size:20;not null"`

	CreatedAt time.Time
}

// TableName defines the table name for the Order model.
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the row identifier.
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
