package repository

import (
	"context"

	"github.com/yukikurage/hoc-admin-api/internal/database"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"gorm.io/gorm"
)

// GormRichiestaRepository is a GORM implementation of RichiestaRepository
type GormRichiestaRepository struct {
	db *gorm.DB
}

// NewRichiestaRepository creates a new RichiestaRepository
func NewRichiestaRepository(db *gorm.DB) RichiestaRepository {
	return &GormRichiestaRepository{db: db}
}

// List retrieves requests with filtering and pagination, newest first
func (r *GormRichiestaRepository) List(ctx context.Context, filter RichiestaFilter) ([]models.Richiesta, int64, error) {
	if filter.Scoped && len(filter.RelationIDs) == 0 {
		return []models.Richiesta{}, 0, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Richiesta{})
	if len(filter.RelationIDs) > 0 {
		query = query.Where("id_operatore_responsabile IN ?", filter.RelationIDs)
	}
	if filter.Stato != nil {
		query = query.Where("stato_richiesta = ?", *filter.Stato)
	}
	if filter.UtenteID != nil {
		query = query.Where("id_utente = ?", *filter.UtenteID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	richieste := []models.Richiesta{}
	if err := query.Scopes(database.NewestFirst("richieste"), database.Paginate(filter.Page)).
		Find(&richieste).Error; err != nil {
		return nil, 0, err
	}
	return richieste, total, nil
}

func (r *GormRichiestaRepository) FindByID(ctx context.Context, id string) (*models.Richiesta, error) {
	var req models.Richiesta
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *GormRichiestaRepository) Create(ctx context.Context, req *models.Richiesta) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// Update writes every mutable column, including clearing the delivery fields.
func (r *GormRichiestaRepository) Update(ctx context.Context, req *models.Richiesta) error {
	res := r.db.WithContext(ctx).Model(&models.Richiesta{}).
		Where("id = ?", req.ID).
		Updates(map[string]interface{}{
			"tipo_richiesta":          req.TipoRichiesta,
			"note_richiesta":          req.NoteRichiesta,
			"importo":                 req.Importo,
			"stato_richiesta":         req.StatoRichiesta,
			"data_consegna_prevista":  req.DataConsegnaPrevista,
			"data_consegna_effettiva": req.DataConsegnaEffettiva,
			"note_su_consegna":        req.NoteSuConsegna,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRichiestaRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Richiesta{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
