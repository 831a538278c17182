package services

import (
	"context"
	"errors"

	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/repository"
	"github.com/yukikurage/hoc-admin-api/internal/utils"
	"gorm.io/gorm"
)

var ErrUtenteTaken = apierrors.Conflict("A utente with this id univoco already exists")

// UtenteService manages subscribers and their notes.
type UtenteService struct {
	repo repository.UtenteRepository
}

func NewUtenteService(repo repository.UtenteRepository) *UtenteService {
	return &UtenteService{repo: repo}
}

// UtenteInput carries the editable subscriber fields.
type UtenteInput struct {
	NicknameUtente string
	IDUnivocoOf    string
}

func (in UtenteInput) validate() (UtenteInput, error) {
	var v fieldCheck
	out := UtenteInput{
		NicknameUtente: v.required("nicknameUtente", in.NicknameUtente),
		IDUnivocoOf:    v.required("idUnivocoOf", in.IDUnivocoOf),
	}
	v.maxLen("nicknameUtente", out.NicknameUtente, 100)
	v.maxLen("idUnivocoOf", out.IDUnivocoOf, 100)
	return out, v.err()
}

func (s *UtenteService) List(ctx context.Context, search string, page utils.PaginationParams) ([]models.Utente, int64, error) {
	utenti, total, err := s.repo.List(ctx, search, page)
	if err != nil {
		return nil, 0, storeError(err, "Utente", "list utenti")
	}
	return utenti, total, nil
}

func (s *UtenteService) Get(ctx context.Context, id string) (*models.Utente, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Utente", "load utente")
	}
	return u, nil
}

func (s *UtenteService) Create(ctx context.Context, input UtenteInput) (*models.Utente, error) {
	in, err := input.validate()
	if err != nil {
		return nil, err
	}

	u := &models.Utente{NicknameUtente: in.NicknameUtente, IDUnivocoOf: in.IDUnivocoOf}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUtenteTaken
		}
		return nil, storeError(err, "Utente", "create utente")
	}
	return u, nil
}

func (s *UtenteService) Update(ctx context.Context, id string, input UtenteInput) (*models.Utente, error) {
	in, err := input.validate()
	if err != nil {
		return nil, err
	}

	u := &models.Utente{ID: id, NicknameUtente: in.NicknameUtente, IDUnivocoOf: in.IDUnivocoOf}
	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUtenteTaken
		}
		return nil, storeError(err, "Utente", "update utente")
	}
	return s.Get(ctx, id)
}

// Delete removes the subscriber with its notes and requests.
func (s *UtenteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "Utente", "delete utente")
	}
	return nil
}

func (s *UtenteService) ListNotes(ctx context.Context, utenteID string) ([]models.NotaUtente, error) {
	if _, err := s.Get(ctx, utenteID); err != nil {
		return nil, err
	}
	note, err := s.repo.ListNotes(ctx, utenteID)
	if err != nil {
		return nil, storeError(err, "Nota", "list note")
	}
	return note, nil
}

func (s *UtenteService) AddNote(ctx context.Context, utenteID, text string) (*models.NotaUtente, error) {
	var v fieldCheck
	text = v.required("nota", text)
	if err := v.err(); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, utenteID); err != nil {
		return nil, err
	}

	nota := &models.NotaUtente{IDUtente: utenteID, Nota: text}
	if err := s.repo.AddNote(ctx, nota); err != nil {
		return nil, storeError(err, "Nota", "save nota")
	}
	return nota, nil
}
