package dto

import (
	"time"

	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/services"
)

// SlotDTO is one booked band in the wire shape the dashboard reads: the five
// fascia fields, exactly one of which is "prenotato".
type SlotDTO struct {
	ID                      string          `json:"id"`
	DataPrenotazione        time.Time       `json:"dataPrenotazione"`
	DataDisponibilita       string          `json:"dataDisponibilita"`
	Fascia0307              string          `json:"fascia_03_07"`
	Fascia0712              string          `json:"fascia_07_12"`
	Fascia1217              string          `json:"fascia_12_17"`
	Fascia1722              string          `json:"fascia_17_22"`
	Fascia2203              string          `json:"fascia_22_03"`
	IDOperatoreResponsabile string          `json:"idOperatoreResponsabile"`
	IDCreator               string          `json:"idCreator"`
	Creator                 *models.Creator `json:"creator,omitempty"`
}

// BookingDTO is a stored booking record with its bands listed.
type BookingDTO struct {
	ID                      string        `json:"id"`
	DataPrenotazione        time.Time     `json:"dataPrenotazione"`
	DataDisponibilita       string        `json:"dataDisponibilita"`
	Fasce                   []models.Band `json:"fasce"`
	IDOperatoreResponsabile string        `json:"idOperatoreResponsabile"`
	IDCreator               string        `json:"idCreator"`
}

// BookingListResponse wraps a listing. When noAccess is true the caller has
// no current relation and data is empty.
type BookingListResponse struct {
	NoAccess bool      `json:"noAccess"`
	Message  string    `json:"message,omitempty"`
	Data     []SlotDTO `json:"data"`
}

// CalendarCreatorDTO lists the booked bands of one creator on a day with
// the number of slots holding each.
type CalendarCreatorDTO struct {
	IDCreator string            `json:"idCreator"`
	Nome      string            `json:"nome"`
	Cognome   string            `json:"cognome"`
	Slots     int               `json:"slots"`
	Fasce     []CalendarBandDTO `json:"fasce"`
}

type CalendarBandDTO struct {
	ID    models.Band `json:"id"`
	Label string      `json:"label"`
	Count int         `json:"count"`
}

type CalendarDayDTO struct {
	Date     string               `json:"date"`
	Slots    int                  `json:"slots"`
	Creators []CalendarCreatorDTO `json:"creators"`
}

type CalendarResponse struct {
	NoAccess bool             `json:"noAccess"`
	Message  string           `json:"message,omitempty"`
	Days     []CalendarDayDTO `json:"days"`
}

// BookingContextDTO is the caller's resolved scheduling identity.
type BookingContextDTO struct {
	HasRelation    bool             `json:"hasRelation"`
	RelationID     string           `json:"idOperatoreResponsabile,omitempty"`
	ResponsabileID string           `json:"idResponsabile,omitempty"`
	OperatoreID    string           `json:"idOperatore,omitempty"`
	Creators       []models.Creator `json:"creators"`
	Fasce          []BandDTO        `json:"fasce"`
}

type BandDTO struct {
	ID    models.Band `json:"id"`
	Label string      `json:"label"`
}

// NoAccessMessage is shown when a caller has no current relation.
const NoAccessMessage = "No active relation found for your account"

func ToSlotDTO(s services.Slot) SlotDTO {
	out := SlotDTO{
		ID:                      s.BookingID,
		DataPrenotazione:        s.DataPrenotazione,
		DataDisponibilita:       s.Date,
		IDOperatoreResponsabile: s.RelationID,
		IDCreator:               s.CreatorID,
		Creator:                 s.Creator,
	}

	switch s.Band {
	case models.Band0307:
		out.Fascia0307 = models.StatoPrenotato
	case models.Band0712:
		out.Fascia0712 = models.StatoPrenotato
	case models.Band1217:
		out.Fascia1217 = models.StatoPrenotato
	case models.Band1722:
		out.Fascia1722 = models.StatoPrenotato
	case models.Band2203:
		out.Fascia2203 = models.StatoPrenotato
	}
	return out
}

func ToBookingListResponse(list *services.BookingList) BookingListResponse {
	out := BookingListResponse{NoAccess: list.NoAccess, Data: make([]SlotDTO, len(list.Slots))}
	if list.NoAccess {
		out.Message = NoAccessMessage
	}
	for i, s := range list.Slots {
		out.Data[i] = ToSlotDTO(s)
	}
	return out
}

func ToBookingDTO(d models.Disponibilita) BookingDTO {
	return BookingDTO{
		ID:                      d.ID,
		DataPrenotazione:        d.DataPrenotazione,
		DataDisponibilita:       d.DataDisponibilita,
		Fasce:                   d.Fasce.Bands(),
		IDOperatoreResponsabile: d.IDOperatoreResponsabile,
		IDCreator:               d.IDCreator,
	}
}

func ToCalendarResponse(days []services.CalendarDay, list *services.BookingList) CalendarResponse {
	out := CalendarResponse{NoAccess: list.NoAccess, Days: make([]CalendarDayDTO, len(days))}
	if list.NoAccess {
		out.Message = NoAccessMessage
	}
	for i, d := range days {
		day := CalendarDayDTO{Date: d.Date, Slots: d.SlotCount, Creators: make([]CalendarCreatorDTO, len(d.Creators))}
		for j, c := range d.Creators {
			fasce := make([]CalendarBandDTO, len(c.Bands))
			for k, b := range c.Bands {
				fasce[k] = CalendarBandDTO{ID: b.Band, Label: b.Band.Label(), Count: b.Count}
			}
			day.Creators[j] = CalendarCreatorDTO{
				IDCreator: c.Creator.ID,
				Nome:      c.Creator.Nome,
				Cognome:   c.Creator.Cognome,
				Slots:     c.SlotCount,
				Fasce:     fasce,
			}
		}
		out.Days[i] = day
	}
	return out
}

func ToBookingContextDTO(bc *services.BookingContext) BookingContextDTO {
	bands := make([]BandDTO, len(models.AllBands))
	for i, b := range models.AllBands {
		bands[i] = BandDTO{ID: b, Label: b.Label()}
	}
	return BookingContextDTO{
		HasRelation:    bc.HasRelation,
		RelationID:     bc.RelationID,
		ResponsabileID: bc.ResponsabileID,
		OperatoreID:    bc.OperatoreID,
		Creators:       bc.Creators,
		Fasce:          bands,
	}
}
