package repository

import (
	"context"

	"github.com/yukikurage/hoc-admin-api/internal/database"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/utils"
	"gorm.io/gorm"
)

// GormUtenteRepository is a GORM implementation of UtenteRepository
type GormUtenteRepository struct {
	db *gorm.DB
}

// NewUtenteRepository creates a new UtenteRepository
func NewUtenteRepository(db *gorm.DB) UtenteRepository {
	return &GormUtenteRepository{db: db}
}

func (r *GormUtenteRepository) List(ctx context.Context, search string, page utils.PaginationParams) ([]models.Utente, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Utente{}).
		Scopes(database.Search(search, "nickname_utente", "id_univoco_of"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	utenti := []models.Utente{}
	if err := query.Scopes(database.Paginate(page)).
		Order("nickname_utente ASC").
		Find(&utenti).Error; err != nil {
		return nil, 0, err
	}
	return utenti, total, nil
}

func (r *GormUtenteRepository) FindByID(ctx context.Context, id string) (*models.Utente, error) {
	var u models.Utente
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUtenteRepository) Create(ctx context.Context, u *models.Utente) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *GormUtenteRepository) Update(ctx context.Context, u *models.Utente) error {
	res := r.db.WithContext(ctx).Model(&models.Utente{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"nickname_utente": u.NicknameUtente,
			"id_univoco_of":   u.IDUnivocoOf,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the subscriber and all related data in a transaction
func (r *GormUtenteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_utente = ?", id).Delete(&models.NotaUtente{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id_utente = ?", id).Delete(&models.Richiesta{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Utente{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormUtenteRepository) ListNotes(ctx context.Context, utenteID string) ([]models.NotaUtente, error) {
	note := []models.NotaUtente{}
	if err := r.db.WithContext(ctx).
		Where("id_utente = ?", utenteID).
		Scopes(database.NewestFirst("note_utente")).
		Find(&note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

func (r *GormUtenteRepository) AddNote(ctx context.Context, nota *models.NotaUtente) error {
	return r.db.WithContext(ctx).Create(nota).Error
}
