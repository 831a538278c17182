package services

import (
	"context"
	"strings"
	"time"

	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/repository"
	"github.com/yukikurage/hoc-admin-api/internal/utils"
)

// RichiestaService manages subscriber requests handled by a relation.
type RichiestaService struct {
	repo      repository.RichiestaRepository
	utenti    repository.UtenteRepository
	relations repository.RelationRepository
	scheduler *BookingService
}

func NewRichiestaService(repo repository.RichiestaRepository, utenti repository.UtenteRepository, relations repository.RelationRepository, scheduler *BookingService) *RichiestaService {
	return &RichiestaService{repo: repo, utenti: utenti, relations: relations, scheduler: scheduler}
}

// RichiestaInput carries the editable request fields. Nil pointers leave a
// field unchanged on update.
type RichiestaInput struct {
	TipoRichiesta           *int
	NoteRichiesta           *string
	Importo                 *float64
	StatoRichiesta          *string
	DataConsegnaPrevista    *time.Time
	DataConsegnaEffettiva   *time.Time
	NoteSuConsegna          *string
	IDOperatoreResponsabile string
	IDUtente                string
}

// RichiestaListInput filters a listing.
type RichiestaListInput struct {
	Stato    string
	IDUtente string
	Page     utils.PaginationParams
}

// scope returns the relation ids a non-administrator may act on: every
// relation of a manager, or the current relation of an operator.
func (s *RichiestaService) scope(ctx context.Context, caller Caller) ([]string, error) {
	bc, err := s.scheduler.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !bc.HasRelation {
		return []string{}, nil
	}
	if caller.Role != models.RoleResponsabile {
		return []string{bc.RelationID}, nil
	}

	links, err := s.relations.ListOperatorLinks(ctx, repository.RelationFilter{ResponsabileID: &bc.ResponsabileID})
	if err != nil {
		return nil, storeError(err, "Relazione", "list relazioni")
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ID)
	}
	return ids, nil
}

func (s *RichiestaService) List(ctx context.Context, caller Caller, input RichiestaListInput) ([]models.Richiesta, int64, error) {
	filter := repository.RichiestaFilter{Page: input.Page}

	if st := strings.TrimSpace(input.Stato); st != "" {
		stato := models.StatoRichiesta(st)
		if !stato.Valid() {
			return nil, 0, apierrors.Validation("Invalid query", apierrors.FieldError{Field: "stato", Rule: "oneof", Message: "unknown stato richiesta"})
		}
		filter.Stato = &stato
	}
	if id := strings.TrimSpace(input.IDUtente); id != "" {
		filter.UtenteID = &id
	}

	if !caller.IsAdmin() {
		ids, err := s.scope(ctx, caller)
		if err != nil {
			return nil, 0, err
		}
		filter.Scoped = true
		filter.RelationIDs = ids
	}

	richieste, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, storeError(err, "Richiesta", "list richieste")
	}
	return richieste, total, nil
}

func (s *RichiestaService) Get(ctx context.Context, caller Caller, id string) (*models.Richiesta, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Richiesta", "load richiesta")
	}
	if err := s.ensureInScope(ctx, caller, r.IDOperatoreResponsabile); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RichiestaService) Create(ctx context.Context, caller Caller, input RichiestaInput) (*models.Richiesta, error) {
	r := &models.Richiesta{StatoRichiesta: models.StatoRichiestaAperta}
	relationID := strings.TrimSpace(input.IDOperatoreResponsabile)

	if relationID == "" && !caller.IsAdmin() {
		bc, err := s.scheduler.Resolve(ctx, caller)
		if err != nil {
			return nil, err
		}
		if !bc.HasRelation {
			return nil, ErrNoRelation
		}
		relationID = bc.RelationID
	}

	var v fieldCheck
	r.IDUtente = v.required("idUtente", input.IDUtente)
	r.IDOperatoreResponsabile = v.required("idOperatoreResponsabile", relationID)
	if input.TipoRichiesta == nil {
		v.add("tipoRichiesta", "required", "", "is required")
	}
	if input.Importo == nil {
		v.add("importo", "required", "", "is required")
	}
	if input.DataConsegnaPrevista == nil {
		v.add("dataConsegnaPrevista", "required", "", "is required")
	}
	apply(&v, r, input)
	if err := v.err(); err != nil {
		return nil, err
	}

	if err := s.ensureInScope(ctx, caller, r.IDOperatoreResponsabile); err != nil {
		return nil, err
	}
	if _, err := s.utenti.FindByID(ctx, r.IDUtente); err != nil {
		return nil, storeError(err, "Utente", "load utente")
	}
	if _, err := s.relations.FindOperatorLink(ctx, r.IDOperatoreResponsabile); err != nil {
		return nil, storeError(err, "Relazione", "load relazione")
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, storeError(err, "Richiesta", "create richiesta")
	}
	return r, nil
}

func (s *RichiestaService) Update(ctx context.Context, caller Caller, id string, input RichiestaInput) (*models.Richiesta, error) {
	r, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	var v fieldCheck
	apply(&v, r, input)
	if err := v.err(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, storeError(err, "Richiesta", "update richiesta")
	}
	return r, nil
}

func (s *RichiestaService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "Richiesta", "delete richiesta")
	}
	return nil
}

func (s *RichiestaService) ensureInScope(ctx context.Context, caller Caller, relationID string) error {
	if caller.IsAdmin() {
		return nil
	}
	ids, err := s.scope(ctx, caller)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == relationID {
			return nil
		}
	}
	return apierrors.Forbidden("Not authorized to access this richiesta")
}

// apply copies the set fields of input onto r, validating them.
func apply(v *fieldCheck, r *models.Richiesta, input RichiestaInput) {
	if input.TipoRichiesta != nil {
		if *input.TipoRichiesta < 0 {
			v.add("tipoRichiesta", "gte", "0", "must be zero or more")
		}
		r.TipoRichiesta = *input.TipoRichiesta
	}
	if input.NoteRichiesta != nil {
		r.NoteRichiesta = strings.TrimSpace(*input.NoteRichiesta)
	}
	if input.Importo != nil {
		if *input.Importo < 0 {
			v.add("importo", "gte", "0", "must be zero or more")
		}
		r.Importo = *input.Importo
	}
	if input.StatoRichiesta != nil {
		stato := models.StatoRichiesta(strings.TrimSpace(*input.StatoRichiesta))
		if !stato.Valid() {
			v.add("statoRichiesta", "oneof", "APERTA IN_CORSO COMPLETATA ANNULLATA", "must be one of APERTA, IN_CORSO, COMPLETATA, ANNULLATA")
		}
		r.StatoRichiesta = stato
	}
	if input.DataConsegnaPrevista != nil {
		r.DataConsegnaPrevista = input.DataConsegnaPrevista.UTC()
	}
	if input.DataConsegnaEffettiva != nil {
		t := input.DataConsegnaEffettiva.UTC()
		r.DataConsegnaEffettiva = &t
	}
	if input.NoteSuConsegna != nil {
		note := strings.TrimSpace(*input.NoteSuConsegna)
		r.NoteSuConsegna = &note
	}
}
