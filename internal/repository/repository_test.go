package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/hoc-admin-api/internal/database"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

func createOperatore(t *testing.T, repo OperatoreRepository, nome, cognome, email string) *models.Operatore {
	t.Helper()
	op := &models.Operatore{Nome: nome, Cognome: cognome, Email: email}
	require.NoError(t, repo.Create(context.Background(), op))
	return op
}

func currentPointer(t *testing.T, db *gorm.DB, kind models.SubjectKind, id string) string {
	t.Helper()
	var ptrs []models.RelazioneCorrente
	require.NoError(t, db.Where("subject_kind = ? AND subject_id = ?", kind, id).Find(&ptrs).Error)
	if len(ptrs) == 0 {
		return ""
	}
	return ptrs[0].RelationID
}

func TestOperatoreRepository_ListOrderedAndFiltered(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ops := NewOperatoreRepository(db)
	rels := NewRelationRepository(db)

	verdi := createOperatore(t, ops, "Anna", "Verdi", "anna@x.com")
	rossi := createOperatore(t, ops, "Mario", "Rossi", "mario@x.com")
	bianchi := createOperatore(t, ops, "Luca", "Bianchi", "luca@x.com")

	all, err := ops.List(ctx, StaffFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Bianchi", "Rossi", "Verdi"}, []string{all[0].Cognome, all[1].Cognome, all[2].Cognome})

	// two rows to the same manager must not duplicate the operator
	require.NoError(t, rels.CreateOperatorLink(ctx, &models.ResponsabileOperatore{IDOperatore: verdi.ID, IDResponsabile: "m1"}))
	require.NoError(t, rels.CreateOperatorLink(ctx, &models.ResponsabileOperatore{IDOperatore: verdi.ID, IDResponsabile: "m1"}))
	require.NoError(t, rels.CreateOperatorLink(ctx, &models.ResponsabileOperatore{IDOperatore: rossi.ID, IDResponsabile: "m1"}))
	require.NoError(t, rels.CreateOperatorLink(ctx, &models.ResponsabileOperatore{IDOperatore: bianchi.ID, IDResponsabile: "m2"}))

	m1 := "m1"
	mine, err := ops.List(ctx, StaffFilter{LinkedToResponsabile: &m1})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Rossi", mine[0].Cognome)
	assert.Equal(t, "Verdi", mine[1].Cognome)

	self, err := ops.List(ctx, StaffFilter{OnlyID: &rossi.ID})
	require.NoError(t, err)
	require.Len(t, self, 1)
	assert.Equal(t, rossi.ID, self[0].ID)
}

func TestOperatoreRepository_CreateWithRelation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ops := NewOperatoreRepository(db)
	rels := NewRelationRepository(db)

	op := &models.Operatore{Nome: "Mario", Cognome: "Rossi", Email: "mario@x.com"}
	rel, err := ops.CreateWithRelation(ctx, op, "resp-user-1")
	require.NoError(t, err)
	require.NotEmpty(t, op.ID)
	assert.Equal(t, op.ID, rel.IDOperatore)

	linked, err := rels.IsLinked(ctx, "resp-user-1", op.ID)
	require.NoError(t, err)
	assert.True(t, linked)

	assert.Equal(t, rel.ID, currentPointer(t, db, models.SubjectOperatore, op.ID))
	assert.Equal(t, rel.ID, currentPointer(t, db, models.SubjectResponsabile, "resp-user-1"))
}

// A failing relation insert must leave no operator behind.
func TestOperatoreRepository_CreateWithRelationRollsBack(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "operatori"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "responsabili_operatori"`).WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	op := &models.Operatore{Nome: "Mario", Cognome: "Rossi", Email: "mario@x.com"}
	_, err = NewOperatoreRepository(db).CreateWithRelation(context.Background(), op, "resp-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCreateRelation)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOperatoreRepository_UpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ops := NewOperatoreRepository(db)
	rels := NewRelationRepository(db)

	op := createOperatore(t, ops, "Mario", "Rossi", "mario@x.com")
	other := createOperatore(t, ops, "Luca", "Bianchi", "luca@x.com")

	op.Cognome = "Russo"
	require.NoError(t, ops.Update(ctx, op))
	got, err := ops.FindByID(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, "Russo", got.Cognome)

	assert.ErrorIs(t, ops.Update(ctx, &models.Operatore{ID: "missing", Nome: "a", Cognome: "b"}), gorm.ErrRecordNotFound)

	older := &models.ResponsabileOperatore{IDOperatore: other.ID, IDResponsabile: "m1"}
	require.NoError(t, rels.CreateOperatorLink(ctx, older))
	newer := &models.ResponsabileOperatore{IDOperatore: op.ID, IDResponsabile: "m1"}
	require.NoError(t, rels.CreateOperatorLink(ctx, newer))
	assert.Equal(t, newer.ID, currentPointer(t, db, models.SubjectResponsabile, "m1"))

	require.NoError(t, ops.Delete(ctx, op.ID))

	_, err = ops.FindByID(ctx, op.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var remaining int64
	require.NoError(t, db.Model(&models.ResponsabileOperatore{}).Where("id_operatore = ?", op.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
	assert.Empty(t, currentPointer(t, db, models.SubjectOperatore, op.ID))
	assert.Equal(t, older.ID, currentPointer(t, db, models.SubjectResponsabile, "m1"))

	assert.ErrorIs(t, ops.Delete(ctx, op.ID), gorm.ErrRecordNotFound)
}

func TestRelationRepository_PointerFollowsNewestRow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ops := NewOperatoreRepository(db)
	rels := NewRelationRepository(db)

	op := createOperatore(t, ops, "Mario", "Rossi", "mario@x.com")

	first := &models.ResponsabileOperatore{IDOperatore: op.ID, IDResponsabile: "m1"}
	require.NoError(t, rels.CreateOperatorLink(ctx, first))
	second := &models.ResponsabileOperatore{IDOperatore: op.ID, IDResponsabile: "m2"}
	require.NoError(t, rels.CreateOperatorLink(ctx, second))

	cur, err := rels.CurrentOperatorLink(ctx, models.SubjectOperatore, op.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, cur.ID)
	require.NotNil(t, cur.Operatore)
	assert.Equal(t, "Rossi", cur.Operatore.Cognome)

	list, err := rels.ListOperatorLinks(ctx, RelationFilter{OperatoreID: &op.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	require.NoError(t, rels.DeleteOperatorLink(ctx, second.ID))
	cur, err = rels.CurrentOperatorLink(ctx, models.SubjectOperatore, op.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, cur.ID)

	_, err = rels.CurrentOperatorLink(ctx, models.SubjectResponsabile, "m2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, rels.DeleteOperatorLink(ctx, first.ID))
	_, err = rels.CurrentOperatorLink(ctx, models.SubjectOperatore, op.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, rels.DeleteOperatorLink(ctx, first.ID), gorm.ErrRecordNotFound)
}

func TestRelationRepository_CreatorLinks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	rels := NewRelationRepository(db)
	creators := NewCreatorRepository(db)
	managers := NewResponsabileRepository(db)

	c := &models.Creator{Nome: "Giulia", Cognome: "Neri"}
	require.NoError(t, creators.Create(ctx, c))
	m := &models.Responsabile{Nome: "Paolo", Cognome: "Gialli", Email: "paolo@x.com"}
	require.NoError(t, managers.Create(ctx, m))

	link := &models.ResponsabileCreator{IDCreator: c.ID, IDResponsabile: m.ID}
	require.NoError(t, rels.CreateCreatorLink(ctx, link))
	assert.Equal(t, link.ID, currentPointer(t, db, models.SubjectCreator, c.ID))

	err := rels.CreateCreatorLink(ctx, &models.ResponsabileCreator{IDCreator: c.ID, IDResponsabile: m.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	has, err := rels.HasCreatorLink(ctx, m.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, has)

	byManager, err := rels.ListCreatorLinksByResponsabile(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, byManager, 1)
	require.NotNil(t, byManager[0].Creator)
	assert.Equal(t, "Neri", byManager[0].Creator.Cognome)

	linked, err := creators.List(ctx, StaffFilter{LinkedToResponsabile: &m.ID})
	require.NoError(t, err)
	assert.Len(t, linked, 1)

	require.NoError(t, managers.Delete(ctx, m.ID))
	has, err = rels.HasCreatorLink(ctx, m.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, has)
	assert.Empty(t, currentPointer(t, db, models.SubjectCreator, c.ID))
}

func TestBookingRepository_MergeIsSetValued(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	bookings := NewBookingRepository(db)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	rec, err := bookings.Merge(ctx, "2025-03-10", "c1", "r1", models.NewBandSet(models.Band0307, models.Band1217), now)
	require.NoError(t, err)
	assert.Equal(t, []models.Band{models.Band0307, models.Band1217}, rec.Fasce.Bands())

	again, err := bookings.Merge(ctx, "2025-03-10", "c1", "r1", models.NewBandSet(models.Band1217, models.Band2203), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Equal(t, 3, again.Fasce.Len())

	// another relation on the same creator and date gets its own record
	_, err = bookings.Merge(ctx, "2025-03-10", "c1", "r2", models.NewBandSet(models.Band0307), now)
	require.NoError(t, err)
	_, err = bookings.Merge(ctx, "2025-04-01", "c1", "r1", models.NewBandSet(models.Band0712), now)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Disponibilita{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	march, err := bookings.List(ctx, BookingFilter{RelationID: "r1", Month: "2025-03"})
	require.NoError(t, err)
	require.Len(t, march, 1)
	assert.True(t, march[0].Fasce.Has(models.Band2203))

	byCreator, err := bookings.List(ctx, BookingFilter{CreatorIDs: []string{"c1"}})
	require.NoError(t, err)
	require.Len(t, byCreator, 3)
	assert.Equal(t, "2025-03-10", byCreator[0].DataDisponibilita)
	assert.Equal(t, "2025-04-01", byCreator[2].DataDisponibilita)
}

func TestBookingRepository_ConcurrentMergeKeepsOneRecord(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	bookings := NewBookingRepository(db)

	var wg sync.WaitGroup
	errs := make([]error, len(models.AllBands))
	for i, b := range models.AllBands {
		wg.Add(1)
		go func(i int, b models.Band) {
			defer wg.Done()
			_, errs[i] = bookings.Merge(ctx, "2025-05-05", "c1", "r1", models.NewBandSet(b), time.Now())
		}(i, b)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	all, err := bookings.List(ctx, BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, len(models.AllBands), all[0].Fasce.Len())
}

func TestBookingRepository_DeleteRemovesIncassi(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	bookings := NewBookingRepository(db)

	rec, err := bookings.Merge(ctx, "2025-03-10", "c1", "r1", models.NewBandSet(models.Band0712), time.Now())
	require.NoError(t, err)
	require.NoError(t, bookings.AddIncasso(ctx, &models.IncassoTurno{IDDisponibilita: rec.ID, Incasso: 120.5}))

	incassi, err := bookings.ListIncassi(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, incassi, 1)

	require.NoError(t, bookings.Delete(ctx, rec.ID))
	incassi, err = bookings.ListIncassi(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, incassi)
	assert.ErrorIs(t, bookings.Delete(ctx, rec.ID), gorm.ErrRecordNotFound)
}

func TestUtenteAndRichiestaRepositories(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	utenti := NewUtenteRepository(db)
	richieste := NewRichiestaRepository(db)

	u := &models.Utente{NicknameUtente: "night_owl", IDUnivocoOf: "of-123"}
	require.NoError(t, utenti.Create(ctx, u))
	assert.ErrorIs(t, utenti.Create(ctx, &models.Utente{NicknameUtente: "dup", IDUnivocoOf: "of-123"}), gorm.ErrDuplicatedKey)

	list, total, err := utenti.List(ctx, "OWL", utils.NewPaginationParams(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)

	require.NoError(t, utenti.AddNote(ctx, &models.NotaUtente{IDUtente: u.ID, Nota: "prefers evenings"}))
	note, err := utenti.ListNotes(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, note, 1)

	r := &models.Richiesta{
		TipoRichiesta:           1,
		Importo:                 50,
		DataConsegnaPrevista:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		IDOperatoreResponsabile: "r1",
		IDUtente:                u.ID,
	}
	require.NoError(t, richieste.Create(ctx, r))
	assert.Equal(t, models.StatoRichiestaAperta, r.StatoRichiesta)

	scoped, total, err := richieste.List(ctx, RichiestaFilter{Scoped: true, Page: utils.NewPaginationParams(1, 10)})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, scoped)

	mine, total, err := richieste.List(ctx, RichiestaFilter{Scoped: true, RelationIDs: []string{"r1"}, Page: utils.NewPaginationParams(1, 10)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mine, 1)

	r.StatoRichiesta = models.StatoRichiestaCompletata
	delivered := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	r.DataConsegnaEffettiva = &delivered
	require.NoError(t, richieste.Update(ctx, r))
	got, err := richieste.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatoRichiestaCompletata, got.StatoRichiesta)
	require.NotNil(t, got.DataConsegnaEffettiva)

	require.NoError(t, utenti.Delete(ctx, u.ID))
	_, err = richieste.FindByID(ctx, r.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
