package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Operatore is a front-line staff member.
type Operatore struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Nome      string    `gorm:"type:varchar(100);not null" json:"nome"`
	Cognome   string    `gorm:"type:varchar(100);not null;index" json:"cognome"`
	Email     string    `gorm:"type:varchar(255);not null;index" json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Operatore) TableName() string { return "operatori" }

func (o *Operatore) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Responsabile is a manager. Same shape as Operatore, distinct table.
type Responsabile struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Nome      string    `gorm:"type:varchar(100);not null" json:"nome"`
	Cognome   string    `gorm:"type:varchar(100);not null;index" json:"cognome"`
	Email     string    `gorm:"type:varchar(255);not null;index" json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Responsabile) TableName() string { return "responsabili" }

func (r *Responsabile) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Creator is the bookable entity whose availability is scheduled.
type Creator struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Nome      string    `gorm:"type:varchar(100);not null" json:"nome"`
	Cognome   string    `gorm:"type:varchar(100);not null;index" json:"cognome"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Creator) TableName() string { return "creator" }

func (c *Creator) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
