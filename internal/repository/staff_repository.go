package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/hoc-admin-api/internal/database"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateOperatore is returned when the operator insert fails inside the create-and-link transaction.
	ErrCreateOperatore = errors.New("operatore repository: create operatore failed")
	// ErrCreateRelation is returned when the relation insert fails inside the create-and-link transaction.
	ErrCreateRelation = errors.New("operatore repository: create relation failed")
)

// GormOperatoreRepository is a GORM implementation of OperatoreRepository
type GormOperatoreRepository struct {
	db *gorm.DB
}

// NewOperatoreRepository creates a new OperatoreRepository
func NewOperatoreRepository(db *gorm.DB) OperatoreRepository {
	return &GormOperatoreRepository{db: db}
}

func (r *GormOperatoreRepository) List(ctx context.Context, filter StaffFilter) ([]models.Operatore, error) {
	query := r.db.WithContext(ctx).Model(&models.Operatore{})

	if filter.LinkedToResponsabile != nil {
		linked := r.db.Model(&models.ResponsabileOperatore{}).
			Select("1").
			Where("responsabili_operatori.id_operatore = operatori.id").
			Where("responsabili_operatori.id_responsabile = ?", *filter.LinkedToResponsabile)
		query = query.Where("EXISTS (?)", linked)
	}
	if filter.OnlyID != nil {
		query = query.Where("operatori.id = ?", *filter.OnlyID)
	}

	operatori := []models.Operatore{}
	if err := query.Scopes(database.Search(filter.Search, "nome", "cognome", "email"), database.BySurname).
		Find(&operatori).Error; err != nil {
		return nil, err
	}
	return operatori, nil
}

func (r *GormOperatoreRepository) FindByID(ctx context.Context, id string) (*models.Operatore, error) {
	var op models.Operatore
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&op).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *GormOperatoreRepository) FindByEmail(ctx context.Context, email string) (*models.Operatore, error) {
	var op models.Operatore
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Order("created_at ASC").
		First(&op).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *GormOperatoreRepository) Create(ctx context.Context, op *models.Operatore) error {
	return r.db.WithContext(ctx).Create(op).Error
}

// CreateWithRelation creates the operator and its first relation atomically.
func (r *GormOperatoreRepository) CreateWithRelation(ctx context.Context, op *models.Operatore, responsabileID string) (*models.ResponsabileOperatore, error) {
	var rel *models.ResponsabileOperatore
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(op).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateOperatore, err)
		}

		rel = &models.ResponsabileOperatore{
			IDOperatore:    op.ID,
			IDResponsabile: responsabileID,
		}
		if err := tx.Create(rel).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateRelation, err)
		}

		return pointOperatorLink(tx, rel)
	})
	if err != nil {
		return nil, err
	}
	return rel, nil
}

func (r *GormOperatoreRepository) Update(ctx context.Context, op *models.Operatore) error {
	res := r.db.WithContext(ctx).Model(&models.Operatore{}).
		Where("id = ?", op.ID).
		Updates(map[string]interface{}{
			"nome":    op.Nome,
			"cognome": op.Cognome,
			"email":   op.Email,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the operator and everything that points at it in a transaction.
func (r *GormOperatoreRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var relIDs []string
		if err := tx.Model(&models.ResponsabileOperatore{}).
			Where("id_operatore = ?", id).
			Pluck("id", &relIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("id_operatore = ?", id).Delete(&models.ResponsabileOperatore{}).Error; err != nil {
			return err
		}

		// Managers whose current link was one of the removed rows move to their
		// newest remaining link.
		if len(relIDs) > 0 {
			var managers []string
			if err := tx.Model(&models.RelazioneCorrente{}).
				Where("subject_kind = ? AND relation_id IN ?", models.SubjectResponsabile, relIDs).
				Pluck("subject_id", &managers).Error; err != nil {
				return err
			}
			if err := tx.Where("relation_id IN ?", relIDs).Delete(&models.RelazioneCorrente{}).Error; err != nil {
				return err
			}
			for _, m := range managers {
				if err := repointSubject(tx, models.SubjectResponsabile, m); err != nil {
					return err
				}
			}
		}

		res := tx.Where("id = ?", id).Delete(&models.Operatore{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GormResponsabileRepository is a GORM implementation of ResponsabileRepository
type GormResponsabileRepository struct {
	db *gorm.DB
}

// NewResponsabileRepository creates a new ResponsabileRepository
func NewResponsabileRepository(db *gorm.DB) ResponsabileRepository {
	return &GormResponsabileRepository{db: db}
}

func (r *GormResponsabileRepository) List(ctx context.Context, filter StaffFilter) ([]models.Responsabile, error) {
	query := r.db.WithContext(ctx).Model(&models.Responsabile{})
	if filter.OnlyID != nil {
		query = query.Where("id = ?", *filter.OnlyID)
	}

	responsabili := []models.Responsabile{}
	if err := query.Scopes(database.Search(filter.Search, "nome", "cognome", "email"), database.BySurname).
		Find(&responsabili).Error; err != nil {
		return nil, err
	}
	return responsabili, nil
}

func (r *GormResponsabileRepository) FindByID(ctx context.Context, id string) (*models.Responsabile, error) {
	var resp models.Responsabile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resp).Error; err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *GormResponsabileRepository) FindByEmail(ctx context.Context, email string) (*models.Responsabile, error) {
	var resp models.Responsabile
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Order("created_at ASC").
		First(&resp).Error; err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *GormResponsabileRepository) Create(ctx context.Context, resp *models.Responsabile) error {
	return r.db.WithContext(ctx).Create(resp).Error
}

func (r *GormResponsabileRepository) Update(ctx context.Context, resp *models.Responsabile) error {
	res := r.db.WithContext(ctx).Model(&models.Responsabile{}).
		Where("id = ?", resp.ID).
		Updates(map[string]interface{}{
			"nome":    resp.Nome,
			"cognome": resp.Cognome,
			"email":   resp.Email,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormResponsabileRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var opRelIDs []string
		if err := tx.Model(&models.ResponsabileOperatore{}).
			Where("id_responsabile = ?", id).
			Pluck("id", &opRelIDs).Error; err != nil {
			return err
		}

		var creatorLinkIDs []string
		if err := tx.Model(&models.ResponsabileCreator{}).
			Where("id_responsabile = ?", id).
			Pluck("id", &creatorLinkIDs).Error; err != nil {
			return err
		}

		var operators []string
		if len(opRelIDs) > 0 {
			if err := tx.Model(&models.RelazioneCorrente{}).
				Where("subject_kind = ? AND relation_id IN ?", models.SubjectOperatore, opRelIDs).
				Pluck("subject_id", &operators).Error; err != nil {
				return err
			}
		}

		var creators []string
		if len(creatorLinkIDs) > 0 {
			if err := tx.Model(&models.RelazioneCorrente{}).
				Where("subject_kind = ? AND relation_id IN ?", models.SubjectCreator, creatorLinkIDs).
				Pluck("subject_id", &creators).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("id_responsabile = ?", id).Delete(&models.ResponsabileOperatore{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id_responsabile = ?", id).Delete(&models.ResponsabileCreator{}).Error; err != nil {
			return err
		}

		stale := append(opRelIDs, creatorLinkIDs...)
		if len(stale) > 0 {
			if err := tx.Where("relation_id IN ?", stale).Delete(&models.RelazioneCorrente{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("subject_kind = ? AND subject_id = ?", models.SubjectResponsabile, id).
			Delete(&models.RelazioneCorrente{}).Error; err != nil {
			return err
		}

		for _, op := range operators {
			if err := repointSubject(tx, models.SubjectOperatore, op); err != nil {
				return err
			}
		}
		for _, c := range creators {
			if err := repointSubject(tx, models.SubjectCreator, c); err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", id).Delete(&models.Responsabile{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GormCreatorRepository is a GORM implementation of CreatorRepository
type GormCreatorRepository struct {
	db *gorm.DB
}

// NewCreatorRepository creates a new CreatorRepository
func NewCreatorRepository(db *gorm.DB) CreatorRepository {
	return &GormCreatorRepository{db: db}
}

func (r *GormCreatorRepository) List(ctx context.Context, filter StaffFilter) ([]models.Creator, error) {
	query := r.db.WithContext(ctx).Model(&models.Creator{})
	if filter.LinkedToResponsabile != nil {
		linked := r.db.Model(&models.ResponsabileCreator{}).
			Select("1").
			Where("responsabili_creator.id_creator = creator.id").
			Where("responsabili_creator.id_responsabile = ?", *filter.LinkedToResponsabile)
		query = query.Where("EXISTS (?)", linked)
	}
	if filter.OnlyID != nil {
		query = query.Where("creator.id = ?", *filter.OnlyID)
	}

	creators := []models.Creator{}
	if err := query.Scopes(database.Search(filter.Search, "nome", "cognome"), database.BySurname).
		Find(&creators).Error; err != nil {
		return nil, err
	}
	return creators, nil
}

func (r *GormCreatorRepository) FindByID(ctx context.Context, id string) (*models.Creator, error) {
	var c models.Creator
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCreatorRepository) Create(ctx context.Context, c *models.Creator) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *GormCreatorRepository) Update(ctx context.Context, c *models.Creator) error {
	res := r.db.WithContext(ctx).Model(&models.Creator{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"nome":    c.Nome,
			"cognome": c.Cognome,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormCreatorRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := tx.Model(&models.Disponibilita{}).Select("id").Where("id_creator = ?", id)
		if err := tx.Where("id_disponibilita IN (?)", bookings).Delete(&models.IncassoTurno{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id_creator = ?", id).Delete(&models.Disponibilita{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id_creator = ?", id).Delete(&models.ResponsabileCreator{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_kind = ? AND subject_id = ?", models.SubjectCreator, id).
			Delete(&models.RelazioneCorrente{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&models.Creator{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
