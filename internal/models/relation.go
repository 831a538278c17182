package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResponsabileOperatore links a manager to an operator. Rows are append-only
// history; the effective link is tracked by RelazioneCorrente.
//
// IDResponsabile carries no foreign key: links created by a RESPONSABILE
// account creating an operator use the account id.
type ResponsabileOperatore struct {
	ID             string    `gorm:"type:varchar(36);primarykey" json:"id"`
	IDOperatore    string    `gorm:"column:id_operatore;type:varchar(36);not null;index" json:"idOperatore"`
	IDResponsabile string    `gorm:"column:id_responsabile;type:varchar(36);not null;index" json:"idResponsabile"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`

	Operatore *Operatore `gorm:"foreignKey:IDOperatore" json:"operatore,omitempty"`
}

func (ResponsabileOperatore) TableName() string { return "responsabili_operatori" }

func (r *ResponsabileOperatore) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ResponsabileCreator links a manager to a creator.
type ResponsabileCreator struct {
	ID             string    `gorm:"type:varchar(36);primarykey" json:"id"`
	IDCreator      string    `gorm:"column:id_creator;type:varchar(36);not null;uniqueIndex:idx_resp_creator_pair" json:"idCreator"`
	IDResponsabile string    `gorm:"column:id_responsabile;type:varchar(36);not null;uniqueIndex:idx_resp_creator_pair;index" json:"idResponsabile"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`

	Creator      *Creator      `gorm:"foreignKey:IDCreator" json:"creator,omitempty"`
	Responsabile *Responsabile `gorm:"foreignKey:IDResponsabile" json:"responsabile,omitempty"`
}

func (ResponsabileCreator) TableName() string { return "responsabili_creator" }

func (r *ResponsabileCreator) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// SubjectKind names the side of a relation a current pointer belongs to.
type SubjectKind string

const (
	SubjectOperatore    SubjectKind = "operatore"
	SubjectResponsabile SubjectKind = "responsabile"
	SubjectCreator      SubjectKind = "creator"
)

// RelazioneCorrente points a subject at its current relation row.
type RelazioneCorrente struct {
	SubjectKind SubjectKind `gorm:"column:subject_kind;type:varchar(20);primarykey" json:"subjectKind"`
	SubjectID   string      `gorm:"column:subject_id;type:varchar(36);primarykey" json:"subjectId"`
	RelationID  string      `gorm:"column:relation_id;type:varchar(36);not null;index" json:"relationId"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (RelazioneCorrente) TableName() string { return "relazioni_correnti" }
