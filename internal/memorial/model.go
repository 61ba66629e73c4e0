package memorial

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Memorial represents one published memorial page.
type Memorial struct {
	ID      string `gorm:"primaryKey;size:36"`
	OwnerID string `gorm:"size:64;index:idx_memorials_owner;not null"`

	FullName       string `gorm:"size:200;not null"`
	BirthDate      string `gorm:"size:10;not null"`
	DeathDate      string `gorm:"size:10;not null"`
	Location       string `gorm:"size:300;not null"`
	Biography      string `gorm:"type:text;not null"`
	VideoURL       string `gorm:"size:500"`
	TributeMessage string `gorm:"type:text"`

	CoverImageURL string `gorm:"size:500"`
	// CoverImagePath is the object storage key behind CoverImageURL, kept
	// alongside the URL so deletion never has to reverse-parse it.
	CoverImagePath string `gorm:"size:500"`

	Slug string `gorm:"size:255;uniqueIndex:idx_memorials_slug;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName defines the table name for the Memorial model.
func (Memorial) TableName() string {
	return "memorials"
}

// BeforeCreate assigns the row identifier.
func (m *Memorial) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Photo is a gallery image belonging to a memorial, distinct from the cover.
type Photo struct {
	ID         string `gorm:"primaryKey;size:36"`
	MemorialID string `gorm:"size:36;index:idx_memorial_photos_memorial;not null"`
	PhotoURL   string `gorm:"size:500;not null"`
	// PhotoPath mirrors CoverImagePath; empty for rows imported before paths
	// were stored, in which case deletion falls back to parsing PhotoURL.
	PhotoPath string `gorm:"size:500"`

	CreatedAt time.Time
}

// TableName defines the table name for the Photo model.
func (Photo) TableName() string {
	return "memorial_photos"
}

// BeforeCreate assigns the row identifier.
func (p *Photo) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
