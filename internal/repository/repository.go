package repository

import (
	"context"
	"time"

	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/utils"
)

// UserRepository defines the interface for account data access
type UserRepository interface {
	// Create creates a new account
	Create(ctx context.Context, user *models.User) error

	// FindByID finds an account by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds an account by its unique email
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// StaffFilter restricts staff listings. Nil fields do not filter.
type StaffFilter struct {
	// LinkedToResponsabile keeps operators with at least one relation row to this manager.
	LinkedToResponsabile *string
	// OnlyID keeps the record with this id.
	OnlyID *string
	Search string
}

// OperatoreRepository defines the interface for operator data access
type OperatoreRepository interface {
	// List returns operators ordered by surname ascending
	List(ctx context.Context, filter StaffFilter) ([]models.Operatore, error)

	FindByID(ctx context.Context, id string) (*models.Operatore, error)
	FindByEmail(ctx context.Context, email string) (*models.Operatore, error)

	// Create inserts an operator with no relation
	Create(ctx context.Context, op *models.Operatore) error

	// CreateWithRelation inserts an operator and links it to responsabileID
	// atomically. Neither row survives a failure of the other.
	CreateWithRelation(ctx context.Context, op *models.Operatore, responsabileID string) (*models.ResponsabileOperatore, error)

	// Update updates nome, cognome and email
	Update(ctx context.Context, op *models.Operatore) error

	// Delete removes the operator together with its relation rows and
	// current-relation pointers
	Delete(ctx context.Context, id string) error
}

// ResponsabileRepository defines the interface for manager data access
type ResponsabileRepository interface {
	List(ctx context.Context, filter StaffFilter) ([]models.Responsabile, error)
	FindByID(ctx context.Context, id string) (*models.Responsabile, error)
	FindByEmail(ctx context.Context, email string) (*models.Responsabile, error)
	Create(ctx context.Context, r *models.Responsabile) error
	Update(ctx context.Context, r *models.Responsabile) error

	// Delete removes the manager, its operator and creator links, and the
	// pointers that referenced them
	Delete(ctx context.Context, id string) error
}

// CreatorRepository defines the interface for creator data access
type CreatorRepository interface {
	List(ctx context.Context, filter StaffFilter) ([]models.Creator, error)
	FindByID(ctx context.Context, id string) (*models.Creator, error)
	Create(ctx context.Context, c *models.Creator) error
	Update(ctx context.Context, c *models.Creator) error

	// Delete removes the creator, its manager links and its bookings
	Delete(ctx context.Context, id string) error
}

// RelationFilter restricts relation listings
type RelationFilter struct {
	ResponsabileID *string
	OperatoreID    *string
}

// RelationRepository defines the interface for manager-operator and
// manager-creator links and the current-relation pointers
type RelationRepository interface {
	// CreateOperatorLink appends a manager-operator row and moves the
	// operator's and the manager's current pointers to it in one transaction
	CreateOperatorLink(ctx context.Context, rel *models.ResponsabileOperatore) error

	// ListOperatorLinks returns links newest first with the operator preloaded
	ListOperatorLinks(ctx context.Context, filter RelationFilter) ([]models.ResponsabileOperatore, error)

	FindOperatorLink(ctx context.Context, id string) (*models.ResponsabileOperatore, error)

	// DeleteOperatorLink removes a row and repoints both pointers to the newest
	// remaining row, or clears them when none is left
	DeleteOperatorLink(ctx context.Context, id string) error

	// IsLinked reports whether any relation row joins the manager and the operator
	IsLinked(ctx context.Context, responsabileID, operatoreID string) (bool, error)

	// CurrentOperatorLink follows the pointer of a subject. Subject kind must be
	// SubjectOperatore or SubjectResponsabile.
	CurrentOperatorLink(ctx context.Context, kind models.SubjectKind, subjectID string) (*models.ResponsabileOperatore, error)

	// CreateCreatorLink links a manager to a creator; a duplicate pair fails
	// with gorm.ErrDuplicatedKey
	CreateCreatorLink(ctx context.Context, link *models.ResponsabileCreator) error

	ListCreatorLinksByCreator(ctx context.Context, creatorID string) ([]models.ResponsabileCreator, error)
	ListCreatorLinksByResponsabile(ctx context.Context, responsabileID string) ([]models.ResponsabileCreator, error)
	HasCreatorLink(ctx context.Context, responsabileID, creatorID string) (bool, error)
}

// BookingFilter restricts booking listings. Empty fields do not filter.
type BookingFilter struct {
	RelationID string
	CreatorIDs []string
	// Month is YYYY-MM
	Month string
}

// BookingRepository defines the interface for availability records
type BookingRepository interface {
	// Merge adds bands to the record of (date, creator, relation), creating
	// the record when absent, and returns the stored record
	Merge(ctx context.Context, date, creatorID, relationID string, bands models.BandSet, bookedAt time.Time) (*models.Disponibilita, error)

	// List returns records ordered by date with the creator preloaded
	List(ctx context.Context, filter BookingFilter) ([]models.Disponibilita, error)

	FindByID(ctx context.Context, id string) (*models.Disponibilita, error)

	// Delete removes a record and its earnings
	Delete(ctx context.Context, id string) error

	ListIncassi(ctx context.Context, bookingID string) ([]models.IncassoTurno, error)
	AddIncasso(ctx context.Context, incasso *models.IncassoTurno) error
}

// UtenteRepository defines the interface for subscriber data access
type UtenteRepository interface {
	List(ctx context.Context, search string, page utils.PaginationParams) ([]models.Utente, int64, error)
	FindByID(ctx context.Context, id string) (*models.Utente, error)
	Create(ctx context.Context, u *models.Utente) error
	Update(ctx context.Context, u *models.Utente) error

	// Delete removes the subscriber with its notes and requests
	Delete(ctx context.Context, id string) error

	ListNotes(ctx context.Context, utenteID string) ([]models.NotaUtente, error)
	AddNote(ctx context.Context, nota *models.NotaUtente) error
}

// RichiestaFilter restricts request listings
type RichiestaFilter struct {
	Stato       *models.StatoRichiesta
	UtenteID    *string
	RelationIDs []string
	// Scoped makes an empty RelationIDs match nothing instead of everything.
	Scoped bool
	Page   utils.PaginationParams
}

// RichiestaRepository defines the interface for request data access
type RichiestaRepository interface {
	List(ctx context.Context, filter RichiestaFilter) ([]models.Richiesta, int64, error)
	FindByID(ctx context.Context, id string) (*models.Richiesta, error)
	Create(ctx context.Context, r *models.Richiesta) error
	Update(ctx context.Context, r *models.Richiesta) error
	Delete(ctx context.Context, id string) error
}
