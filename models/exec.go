package models

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Exec is a committee member. Registrations reference it through SignedUpByID.
type Exec struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	Position        string    `gorm:"not null" json:"position"`
	Degree          string    `json:"degree"`
	Category        string    `gorm:"type:varchar(64)" json:"category"`
	Slug            string    `gorm:"uniqueIndex;not null" json:"slug"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName keeps the CMS collection name.
func (Exec) TableName() string {
	return "exec"
}

// BeforeCreate derives the slug from the name when none was given, adding a
// numeric suffix when another exec already has it.
func (e *Exec) BeforeCreate(tx *gorm.DB) error {
	if e.Slug != "" {
		return nil
	}
	base := slug.Make(e.Name)
	if base == "" {
		base = "exec"
	}

	candidate := base
	for n := 2; ; n++ {
		var count int64
		err := tx.Session(&gorm.Session{NewDB: true}).
			Model(&Exec{}).
			Where("slug = ?", candidate).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			e.Slug = candidate
			return nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
