package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Utente is a subscriber account on the creator platform.
type Utente struct {
	ID             string    `gorm:"type:varchar(36);primarykey" json:"id"`
	NicknameUtente string    `gorm:"column:nickname_utente;type:varchar(100);not null;index" json:"nicknameUtente"`
	IDUnivocoOf    string    `gorm:"column:id_univoco_of;type:varchar(100);not null;uniqueIndex" json:"idUnivocoOf"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Utente) TableName() string { return "utenti" }

func (u *Utente) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type NotaUtente struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Nota      string    `gorm:"type:text;not null" json:"nota"`
	IDUtente  string    `gorm:"column:id_utente;type:varchar(36);not null;index" json:"idUtente"`
	CreatedAt time.Time `json:"createdAt"`
}

func (NotaUtente) TableName() string { return "note_utente" }

func (n *NotaUtente) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

type StatoRichiesta string

const (
	StatoRichiestaAperta     StatoRichiesta = "APERTA"
	StatoRichiestaInCorso    StatoRichiesta = "IN_CORSO"
	StatoRichiestaCompletata StatoRichiesta = "COMPLETATA"
	StatoRichiestaAnnullata  StatoRichiesta = "ANNULLATA"
)

// Richiesta is a request placed by an Utente and handled through a
// manager-operator relation.
type Richiesta struct {
	ID                      string         `gorm:"type:varchar(36);primarykey" json:"id"`
	TipoRichiesta           int            `gorm:"column:tipo_richiesta;not null" json:"tipoRichiesta"`
	NoteRichiesta           string         `gorm:"column:note_richiesta;type:text" json:"noteRichiesta"`
	Importo                 float64        `gorm:"not null" json:"importo"`
	StatoRichiesta          StatoRichiesta `gorm:"column:stato_richiesta;type:varchar(20);not null;index" json:"statoRichiesta"`
	DataConsegnaPrevista    time.Time      `gorm:"column:data_consegna_prevista;not null" json:"dataConsegnaPrevista"`
	DataConsegnaEffettiva   *time.Time     `gorm:"column:data_consegna_effettiva" json:"dataConsegnaEffettiva"`
	NoteSuConsegna          *string        `gorm:"column:note_su_consegna;type:text" json:"noteSuConsegna"`
	IDOperatoreResponsabile string         `gorm:"column:id_operatore_responsabile;type:varchar(36);not null;index" json:"idOperatoreResponsabile"`
	IDUtente                string         `gorm:"column:id_utente;type:varchar(36);not null;index" json:"idUtente"`
	CreatedAt               time.Time      `json:"createdAt"`
	UpdatedAt               time.Time      `json:"updatedAt"`
}

func (Richiesta) TableName() string { return "richieste" }

func (r *Richiesta) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StatoRichiesta == "" {
		r.StatoRichiesta = StatoRichiestaAperta
	}
	return nil
}

func (s StatoRichiesta) Valid() bool {
	switch s {
	case StatoRichiestaAperta, StatoRichiestaInCorso, StatoRichiestaCompletata, StatoRichiestaAnnullata:
		return true
	}
	return false
}
