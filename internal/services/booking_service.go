package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/repository"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// View selects which bookings a listing shows.
type View string

const (
	ViewMyBookings View = "my-bookings"
	ViewCreator    View = "creator"
)

var (
	ErrNoRelation    = apierrors.Forbidden("No active relation: you cannot book availability")
	ErrBookingHidden = apierrors.Forbidden("Not authorized to access this disponibilita")
)

// BookingContext is the caller's resolved scheduling identity.
type BookingContext struct {
	// HasRelation is false when the caller is neither an operator nor a
	// manager with a current relation. Listings then report no access.
	HasRelation    bool
	RelationID     string
	ResponsabileID string
	OperatoreID    string
	Creators       []models.Creator
}

// Slot is one booked band of one booking record.
type Slot struct {
	BookingID        string
	Date             string
	Band             models.Band
	CreatorID        string
	Creator          *models.Creator
	RelationID       string
	DataPrenotazione time.Time
}

// BookingList is a listing outcome. NoAccess is an explicit outcome, not an error.
type BookingList struct {
	NoAccess bool
	Context  *BookingContext
	Slots    []Slot
}

// BandCount is how many slots of a day booked one band.
type BandCount struct {
	Band  models.Band
	Count int
}

// CreatorDay is the booked bands of one creator on one day. Bands holds only
// booked bands, in time-of-day order.
type CreatorDay struct {
	Creator   *models.Creator
	SlotCount int
	Bands     []BandCount
}

// CalendarDay aggregates the slots of one date.
type CalendarDay struct {
	Date      string
	SlotCount int
	Creators  []CreatorDay
}

// BookingService implements the availability scheduler.
type BookingService struct {
	bookings     repository.BookingRepository
	relations    repository.RelationRepository
	operatori    repository.OperatoreRepository
	responsabili repository.ResponsabileRepository
	creators     repository.CreatorRepository
	now          func() time.Time
}

func NewBookingService(
	bookings repository.BookingRepository,
	relations repository.RelationRepository,
	operatori repository.OperatoreRepository,
	responsabili repository.ResponsabileRepository,
	creators repository.CreatorRepository,
) *BookingService {
	return &BookingService{
		bookings:     bookings,
		relations:    relations,
		operatori:    operatori,
		responsabili: responsabili,
		creators:     creators,
		now:          time.Now,
	}
}

// Resolve finds the caller's current relation: by email as an operator
// first, then as a manager, then by account id as a manager. The creators
// are those linked to the relation's manager; administrators see every creator.
func (s *BookingService) Resolve(ctx context.Context, caller Caller) (*BookingContext, error) {
	bc := &BookingContext{Creators: []models.Creator{}}

	rel, opID, err := s.currentRelation(ctx, caller)
	if err != nil {
		return nil, err
	}
	if rel != nil {
		bc.HasRelation = true
		bc.RelationID = rel.ID
		bc.ResponsabileID = rel.IDResponsabile
		bc.OperatoreID = opID
	}

	switch {
	case caller.IsAdmin():
		creators, err := s.creators.List(ctx, repository.StaffFilter{})
		if err != nil {
			return nil, storeError(err, "Creator", "list creator")
		}
		bc.Creators = creators
	case rel != nil:
		creators, err := s.creators.List(ctx, repository.StaffFilter{LinkedToResponsabile: &rel.IDResponsabile})
		if err != nil {
			return nil, storeError(err, "Creator", "list creator")
		}
		bc.Creators = creators
	}

	return bc, nil
}

func (s *BookingService) currentRelation(ctx context.Context, caller Caller) (*models.ResponsabileOperatore, string, error) {
	if caller.Email != "" {
		op, err := s.operatori.FindByEmail(ctx, caller.Email)
		switch {
		case err == nil:
			rel, err := s.follow(ctx, models.SubjectOperatore, op.ID)
			if rel != nil || err != nil {
				return rel, op.ID, err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, "", apierrors.Internal("Failed to resolve relation", err)
		}

		resp, err := s.responsabili.FindByEmail(ctx, caller.Email)
		switch {
		case err == nil:
			rel, err := s.follow(ctx, models.SubjectResponsabile, resp.ID)
			if rel != nil || err != nil {
				return rel, "", err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, "", apierrors.Internal("Failed to resolve relation", err)
		}
	}

	rel, err := s.follow(ctx, models.SubjectResponsabile, caller.UserID)
	return rel, "", err
}

func (s *BookingService) follow(ctx context.Context, kind models.SubjectKind, id string) (*models.ResponsabileOperatore, error) {
	if id == "" {
		return nil, nil
	}
	rel, err := s.relations.CurrentOperatorLink(ctx, kind, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apierrors.Internal("Failed to resolve relation", err)
	}
	return rel, nil
}

// ListInput selects a booking listing.
type ListInput struct {
	View      View
	CreatorID string
	Month     string
}

func (in ListInput) validate() (ListInput, error) {
	var v fieldCheck
	if in.View == "" {
		in.View = ViewMyBookings
	}
	if in.View != ViewMyBookings && in.View != ViewCreator {
		v.add("vista", "oneof", "my-bookings creator", "must be one of my-bookings, creator")
	}
	in.CreatorID = strings.TrimSpace(in.CreatorID)
	in.Month = strings.TrimSpace(in.Month)
	if in.Month != "" {
		if _, err := time.Parse("2006-01", in.Month); err != nil {
			v.add("mese", "datetime", "2006-01", "must be a month in YYYY-MM format")
		}
	}
	return in, v.err()
}

// List expands the visible booking records into one slot per booked band.
// In my-bookings view it shows the caller's relation; in creator view every
// relation's bookings of the selected creator, or of all creators the caller
// may see when none is selected.
func (s *BookingService) List(ctx context.Context, caller Caller, input ListInput) (*BookingList, error) {
	in, err := input.validate()
	if err != nil {
		return nil, err
	}

	bc, err := s.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	out := &BookingList{Context: bc, Slots: []Slot{}}

	filter := repository.BookingFilter{Month: in.Month}

	switch in.View {
	case ViewMyBookings:
		if !bc.HasRelation {
			out.NoAccess = true
			return out, nil
		}
		filter.RelationID = bc.RelationID
		if in.CreatorID != "" {
			filter.CreatorIDs = []string{in.CreatorID}
		}
	case ViewCreator:
		if !caller.IsAdmin() && !bc.HasRelation {
			out.NoAccess = true
			return out, nil
		}
		if in.CreatorID != "" {
			if !caller.IsAdmin() && !containsCreator(bc.Creators, in.CreatorID) {
				return nil, apierrors.Forbidden("Creator not assigned to your responsabile")
			}
			filter.CreatorIDs = []string{in.CreatorID}
		} else if !caller.IsAdmin() {
			if len(bc.Creators) == 0 {
				return out, nil
			}
			for _, c := range bc.Creators {
				filter.CreatorIDs = append(filter.CreatorIDs, c.ID)
			}
		}
	}

	records, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "Disponibilita", "list disponibilita")
	}
	out.Slots = ExpandSlots(records)
	return out, nil
}

// ExpandSlots turns set-valued records into single-band slots, keeping the
// record order and the time-of-day order within a record.
func ExpandSlots(records []models.Disponibilita) []Slot {
	slots := make([]Slot, 0, len(records))
	for _, r := range records {
		for _, b := range r.Fasce.Bands() {
			slots = append(slots, Slot{
				BookingID:        r.ID,
				Date:             r.DataDisponibilita,
				Band:             b,
				CreatorID:        r.IDCreator,
				Creator:          r.Creator,
				RelationID:       r.IDOperatoreResponsabile,
				DataPrenotazione: r.DataPrenotazione,
			})
		}
	}
	return slots
}

// Calendar groups a listing per day and per creator.
func (s *BookingService) Calendar(ctx context.Context, caller Caller, input ListInput) ([]CalendarDay, *BookingList, error) {
	list, err := s.List(ctx, caller, input)
	if err != nil {
		return nil, nil, err
	}
	return Aggregate(list.Slots), list, nil
}

// Aggregate groups slots by date ascending, then by creator in order of first
// appearance. Every slot counts, so a band booked by two relations has a
// count of two.
func Aggregate(slots []Slot) []CalendarDay {
	type creatorAcc struct {
		creator *models.Creator
		count   int
		bands   map[models.Band]int
	}
	type dayAcc struct {
		count    int
		order    []string
		creators map[string]*creatorAcc
	}

	days := map[string]*dayAcc{}
	for _, sl := range slots {
		d, ok := days[sl.Date]
		if !ok {
			d = &dayAcc{creators: map[string]*creatorAcc{}}
			days[sl.Date] = d
		}
		d.count++

		c, ok := d.creators[sl.CreatorID]
		if !ok {
			c = &creatorAcc{creator: sl.Creator, bands: map[models.Band]int{}}
			if c.creator == nil {
				c.creator = &models.Creator{ID: sl.CreatorID}
			}
			d.creators[sl.CreatorID] = c
			d.order = append(d.order, sl.CreatorID)
		}
		c.count++
		c.bands[sl.Band]++
	}

	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]CalendarDay, 0, len(dates))
	for _, date := range dates {
		d := days[date]
		day := CalendarDay{Date: date, SlotCount: d.count, Creators: make([]CreatorDay, 0, len(d.order))}
		for _, id := range d.order {
			c := d.creators[id]
			cd := CreatorDay{Creator: c.creator, SlotCount: c.count}
			for _, b := range models.AllBands {
				if n := c.bands[b]; n > 0 {
					cd.Bands = append(cd.Bands, BandCount{Band: b, Count: n})
				}
			}
			day.Creators = append(day.Creators, cd)
		}
		out = append(out, day)
	}
	return out
}

// SubmitInput is a booking form.
type SubmitInput struct {
	DataDisponibilita       string
	IDOperatoreResponsabile string
	IDCreator               string
	Fasce                   []string
}

// Submit books the selected bands of a creator on a date for a relation.
// Bands already booked by the same relation are kept once.
func (s *BookingService) Submit(ctx context.Context, caller Caller, input SubmitInput) (*models.Disponibilita, error) {
	var v fieldCheck
	date := v.required("dataDisponibilita", input.DataDisponibilita)
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			v.add("dataDisponibilita", "datetime", dateLayout, "must be a date in YYYY-MM-DD format")
		}
	}
	relationID := v.required("idOperatoreResponsabile", input.IDOperatoreResponsabile)
	creatorID := v.required("idCreator", input.IDCreator)

	var bands models.BandSet
	if len(input.Fasce) == 0 {
		v.add("fasce", "min", "1", "select at least one band")
	}
	for _, raw := range input.Fasce {
		b, err := models.ParseBand(strings.TrimSpace(raw))
		if err != nil {
			v.add("fasce", "oneof", "fascia_03_07 fascia_07_12 fascia_12_17 fascia_17_22 fascia_22_03", err.Error())
			continue
		}
		bands = bands.Union(models.NewBandSet(b))
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if caller.IsAdmin() {
		if _, err := s.relations.FindOperatorLink(ctx, relationID); err != nil {
			return nil, storeError(err, "Relazione", "load relazione")
		}
	} else {
		bc, err := s.Resolve(ctx, caller)
		if err != nil {
			return nil, err
		}
		if !bc.HasRelation {
			return nil, ErrNoRelation
		}
		if bc.RelationID != relationID {
			return nil, apierrors.Forbidden("Relation does not belong to you")
		}
		linked, err := s.relations.HasCreatorLink(ctx, bc.ResponsabileID, creatorID)
		if err != nil {
			return nil, apierrors.Internal("Failed to check creator assignment", err)
		}
		if !linked {
			return nil, apierrors.Forbidden("Creator not assigned to your responsabile")
		}
	}

	if _, err := s.creators.FindByID(ctx, creatorID); err != nil {
		return nil, storeError(err, "Creator", "load creator")
	}

	rec, err := s.bookings.Merge(ctx, date, creatorID, relationID, bands, s.now().UTC())
	if err != nil {
		return nil, storeError(err, "Disponibilita", "save disponibilita")
	}
	return rec, nil
}

// Get returns a booking the caller may see. Administrators see every
// booking, others those of their current relation or of a creator linked to
// their relation's manager, the same records List shows them.
func (s *BookingService) Get(ctx context.Context, caller Caller, id string) (*models.Disponibilita, error) {
	rec, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Disponibilita", "load disponibilita")
	}
	if caller.IsAdmin() {
		return rec, nil
	}

	bc, err := s.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !bc.HasRelation {
		return nil, ErrBookingHidden
	}
	if rec.IDOperatoreResponsabile != bc.RelationID && !containsCreator(bc.Creators, rec.IDCreator) {
		return nil, ErrBookingHidden
	}
	return rec, nil
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	if err := s.bookings.Delete(ctx, id); err != nil {
		return storeError(err, "Disponibilita", "delete disponibilita")
	}
	return nil
}

func (s *BookingService) ListIncassi(ctx context.Context, caller Caller, bookingID string) ([]models.IncassoTurno, error) {
	if _, err := s.Get(ctx, caller, bookingID); err != nil {
		return nil, err
	}
	incassi, err := s.bookings.ListIncassi(ctx, bookingID)
	if err != nil {
		return nil, storeError(err, "Incasso", "list incassi")
	}
	return incassi, nil
}

// AddIncasso records earnings against a booking. Amounts are non-negative.
func (s *BookingService) AddIncasso(ctx context.Context, caller Caller, bookingID string, amount float64) (*models.IncassoTurno, error) {
	if amount < 0 {
		return nil, apierrors.Validation("Invalid request body", apierrors.FieldError{Field: "incasso", Rule: "gte", Param: "0", Message: "must be zero or more"})
	}
	if _, err := s.Get(ctx, caller, bookingID); err != nil {
		return nil, err
	}

	incasso := &models.IncassoTurno{IDDisponibilita: bookingID, Incasso: amount}
	if err := s.bookings.AddIncasso(ctx, incasso); err != nil {
		return nil, storeError(err, "Incasso", "save incasso")
	}
	return incasso, nil
}

func containsCreator(creators []models.Creator, id string) bool {
	for _, c := range creators {
		if c.ID == id {
			return true
		}
	}
	return false
}
