package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/hoc-admin-api/internal/models"
	"gorm.io/gorm"
)

// GormBookingRepository is a GORM implementation of BookingRepository
type GormBookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &GormBookingRepository{db: db}
}

// Merge unions bands into the (date, creator, relation) record. Two concurrent
// first submissions race on the unique index; the loser retries once and
// lands in the update branch.
func (r *GormBookingRepository) Merge(ctx context.Context, date, creatorID, relationID string, bands models.BandSet, bookedAt time.Time) (*models.Disponibilita, error) {
	rec, err := r.merge(ctx, date, creatorID, relationID, bands, bookedAt)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		rec, err = r.merge(ctx, date, creatorID, relationID, bands, bookedAt)
	}
	return rec, err
}

func (r *GormBookingRepository) merge(ctx context.Context, date, creatorID, relationID string, bands models.BandSet, bookedAt time.Time) (*models.Disponibilita, error) {
	var rec models.Disponibilita
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found := []models.Disponibilita{}
		if err := tx.Where("data_disponibilita = ? AND id_creator = ? AND id_operatore_responsabile = ?", date, creatorID, relationID).
			Limit(1).
			Find(&found).Error; err != nil {
			return err
		}

		if len(found) == 0 {
			rec = models.Disponibilita{
				DataPrenotazione:        bookedAt,
				DataDisponibilita:       date,
				Fasce:                   bands,
				IDOperatoreResponsabile: relationID,
				IDCreator:               creatorID,
			}
			return tx.Create(&rec).Error
		}

		rec = found[0]
		merged := rec.Fasce.Union(bands)
		if merged == rec.Fasce {
			return nil
		}
		if err := tx.Model(&rec).Updates(map[string]interface{}{
			"fasce":             merged,
			"data_prenotazione": bookedAt,
		}).Error; err != nil {
			return err
		}
		rec.Fasce = merged
		rec.DataPrenotazione = bookedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormBookingRepository) List(ctx context.Context, filter BookingFilter) ([]models.Disponibilita, error) {
	query := r.db.WithContext(ctx).Preload("Creator")

	if filter.RelationID != "" {
		query = query.Where("id_operatore_responsabile = ?", filter.RelationID)
	}
	if len(filter.CreatorIDs) > 0 {
		query = query.Where("id_creator IN ?", filter.CreatorIDs)
	}
	if filter.Month != "" {
		query = query.Where("data_disponibilita LIKE ?", filter.Month+"-%")
	}

	records := []models.Disponibilita{}
	if err := query.Order("data_disponibilita ASC").Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *GormBookingRepository) FindByID(ctx context.Context, id string) (*models.Disponibilita, error) {
	var rec models.Disponibilita
	if err := r.db.WithContext(ctx).Preload("Creator").Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *GormBookingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_disponibilita = ?", id).Delete(&models.IncassoTurno{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Disponibilita{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormBookingRepository) ListIncassi(ctx context.Context, bookingID string) ([]models.IncassoTurno, error) {
	incassi := []models.IncassoTurno{}
	if err := r.db.WithContext(ctx).
		Where("id_disponibilita = ?", bookingID).
		Order("created_at DESC").
		Find(&incassi).Error; err != nil {
		return nil, err
	}
	return incassi, nil
}

func (r *GormBookingRepository) AddIncasso(ctx context.Context, incasso *models.IncassoTurno) error {
	return r.db.WithContext(ctx).Create(incasso).Error
}
