package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/hoc-admin-api/internal/database"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRelationRepository is a GORM implementation of RelationRepository
type GormRelationRepository struct {
	db *gorm.DB
}

// NewRelationRepository creates a new RelationRepository
func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &GormRelationRepository{db: db}
}

func (r *GormRelationRepository) CreateOperatorLink(ctx context.Context, rel *models.ResponsabileOperatore) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rel).Error; err != nil {
			return err
		}
		return pointOperatorLink(tx, rel)
	})
}

func (r *GormRelationRepository) ListOperatorLinks(ctx context.Context, filter RelationFilter) ([]models.ResponsabileOperatore, error) {
	query := r.db.WithContext(ctx).Preload("Operatore")
	if filter.ResponsabileID != nil {
		query = query.Where("id_responsabile = ?", *filter.ResponsabileID)
	}
	if filter.OperatoreID != nil {
		query = query.Where("id_operatore = ?", *filter.OperatoreID)
	}

	links := []models.ResponsabileOperatore{}
	if err := query.Scopes(database.NewestFirst("responsabili_operatori")).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *GormRelationRepository) FindOperatorLink(ctx context.Context, id string) (*models.ResponsabileOperatore, error) {
	var rel models.ResponsabileOperatore
	if err := r.db.WithContext(ctx).Preload("Operatore").Where("id = ?", id).First(&rel).Error; err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *GormRelationRepository) DeleteOperatorLink(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rel models.ResponsabileOperatore
		if err := tx.Where("id = ?", id).First(&rel).Error; err != nil {
			return err
		}
		if err := tx.Delete(&rel).Error; err != nil {
			return err
		}
		if err := repointSubject(tx, models.SubjectOperatore, rel.IDOperatore); err != nil {
			return err
		}
		return repointSubject(tx, models.SubjectResponsabile, rel.IDResponsabile)
	})
}

func (r *GormRelationRepository) IsLinked(ctx context.Context, responsabileID, operatoreID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ResponsabileOperatore{}).
		Where("id_responsabile = ? AND id_operatore = ?", responsabileID, operatoreID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRelationRepository) CurrentOperatorLink(ctx context.Context, kind models.SubjectKind, subjectID string) (*models.ResponsabileOperatore, error) {
	if kind != models.SubjectOperatore && kind != models.SubjectResponsabile {
		return nil, gorm.ErrRecordNotFound
	}

	var ptr models.RelazioneCorrente
	if err := r.db.WithContext(ctx).
		Where("subject_kind = ? AND subject_id = ?", kind, subjectID).
		First(&ptr).Error; err != nil {
		return nil, err
	}
	return r.FindOperatorLink(ctx, ptr.RelationID)
}

func (r *GormRelationRepository) CreateCreatorLink(ctx context.Context, link *models.ResponsabileCreator) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(link).Error; err != nil {
			return err
		}
		return upsertPointer(tx, models.SubjectCreator, link.IDCreator, link.ID)
	})
}

func (r *GormRelationRepository) ListCreatorLinksByCreator(ctx context.Context, creatorID string) ([]models.ResponsabileCreator, error) {
	links := []models.ResponsabileCreator{}
	if err := r.db.WithContext(ctx).
		Preload("Responsabile").
		Where("id_creator = ?", creatorID).
		Scopes(database.NewestFirst("responsabili_creator")).
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *GormRelationRepository) ListCreatorLinksByResponsabile(ctx context.Context, responsabileID string) ([]models.ResponsabileCreator, error) {
	links := []models.ResponsabileCreator{}
	if err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("id_responsabile = ?", responsabileID).
		Scopes(database.NewestFirst("responsabili_creator")).
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *GormRelationRepository) HasCreatorLink(ctx context.Context, responsabileID, creatorID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ResponsabileCreator{}).
		Where("id_responsabile = ? AND id_creator = ?", responsabileID, creatorID).
		Count(&count).Error
	return count > 0, err
}

// pointOperatorLink makes rel current for both its operator and its manager.
func pointOperatorLink(tx *gorm.DB, rel *models.ResponsabileOperatore) error {
	if err := upsertPointer(tx, models.SubjectOperatore, rel.IDOperatore, rel.ID); err != nil {
		return err
	}
	return upsertPointer(tx, models.SubjectResponsabile, rel.IDResponsabile, rel.ID)
}

func upsertPointer(tx *gorm.DB, kind models.SubjectKind, subjectID, relationID string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject_kind"}, {Name: "subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"relation_id", "updated_at"}),
	}).Create(&models.RelazioneCorrente{
		SubjectKind: kind,
		SubjectID:   subjectID,
		RelationID:  relationID,
	}).Error
}

// repointSubject moves a subject's pointer to its newest relation row, or
// removes the pointer when the subject has no rows left.
func repointSubject(tx *gorm.DB, kind models.SubjectKind, subjectID string) error {
	var ids []string
	var err error

	switch kind {
	case models.SubjectOperatore:
		err = tx.Model(&models.ResponsabileOperatore{}).
			Where("id_operatore = ?", subjectID).
			Scopes(database.NewestFirst("responsabili_operatori")).
			Limit(1).Pluck("id", &ids).Error
	case models.SubjectResponsabile:
		err = tx.Model(&models.ResponsabileOperatore{}).
			Where("id_responsabile = ?", subjectID).
			Scopes(database.NewestFirst("responsabili_operatori")).
			Limit(1).Pluck("id", &ids).Error
	case models.SubjectCreator:
		err = tx.Model(&models.ResponsabileCreator{}).
			Where("id_creator = ?", subjectID).
			Scopes(database.NewestFirst("responsabili_creator")).
			Limit(1).Pluck("id", &ids).Error
	default:
		return errors.New("relation repository: unknown subject kind " + string(kind))
	}
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		return tx.Where("subject_kind = ? AND subject_id = ?", kind, subjectID).
			Delete(&models.RelazioneCorrente{}).Error
	}
	return upsertPointer(tx, kind, subjectID, ids[0])
}
