package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Band is one of the five fixed daily time windows.
type Band string

const (
	Band0307 Band = "fascia_03_07"
	Band0712 Band = "fascia_07_12"
	Band1217 Band = "fascia_12_17"
	Band1722 Band = "fascia_17_22"
	Band2203 Band = "fascia_22_03"
)

// StatoPrenotato is the literal marking a band as booked.
const StatoPrenotato = "prenotato"

// AllBands is ordered by time of day.
var AllBands = []Band{Band0307, Band0712, Band1217, Band1722, Band2203}

var bandLabels = map[Band]string{
	Band0307: "03:00 - 07:00",
	Band0712: "07:00 - 12:00",
	Band1217: "12:00 - 17:00",
	Band1722: "17:00 - 22:00",
	Band2203: "22:00 - 03:00",
}

func ParseBand(s string) (Band, error) {
	for _, b := range AllBands {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown band %q", s)
}

func (b Band) Label() string { return bandLabels[b] }

func (b Band) bit() BandSet {
	for i, x := range AllBands {
		if x == b {
			return 1 << i
		}
	}
	return 0
}

// BandSet is a bit set over AllBands, stored as a small integer column.
type BandSet uint8

func NewBandSet(bands ...Band) BandSet {
	var s BandSet
	for _, b := range bands {
		s |= b.bit()
	}
	return s
}

func (s BandSet) Has(b Band) bool { return b.bit() != 0 && s&b.bit() != 0 }

func (s BandSet) Union(o BandSet) BandSet { return s | o }

func (s BandSet) Empty() bool { return s&NewBandSet(AllBands...) == 0 }

// Bands returns the members in time-of-day order.
func (s BandSet) Bands() []Band {
	out := make([]Band, 0, len(AllBands))
	for _, b := range AllBands {
		if s.Has(b) {
			out = append(out, b)
		}
	}
	return out
}

func (s BandSet) Len() int { return len(s.Bands()) }

// Disponibilita is one booking record per (date, creator, relation) with the
// set of booked bands.
type Disponibilita struct {
	ID                      string    `gorm:"type:varchar(36);primarykey" json:"id"`
	DataPrenotazione        time.Time `gorm:"column:data_prenotazione;not null" json:"dataPrenotazione"`
	DataDisponibilita       string    `gorm:"column:data_disponibilita;type:varchar(10);not null;uniqueIndex:idx_disponibilita_slot,priority:1" json:"dataDisponibilita"`
	Fasce                   BandSet   `gorm:"column:fasce;not null;default:0" json:"-"`
	IDOperatoreResponsabile string    `gorm:"column:id_operatore_responsabile;type:varchar(36);not null;uniqueIndex:idx_disponibilita_slot,priority:3;index" json:"idOperatoreResponsabile"`
	IDCreator               string    `gorm:"column:id_creator;type:varchar(36);not null;uniqueIndex:idx_disponibilita_slot,priority:2;index" json:"idCreator"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`

	Creator *Creator `gorm:"foreignKey:IDCreator" json:"creator,omitempty"`
}

func (Disponibilita) TableName() string { return "disponibilita" }

func (d *Disponibilita) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// IncassoTurno records the earnings of a booking.
type IncassoTurno struct {
	ID              string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Incasso         float64   `gorm:"not null" json:"incasso"`
	IDDisponibilita string    `gorm:"column:id_disponibilita;type:varchar(36);not null;index" json:"idDisponibilita"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (IncassoTurno) TableName() string { return "incassi_per_turni" }

func (i *IncassoTurno) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
