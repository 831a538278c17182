package database

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/hoc-admin-api/internal/auth"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"github.com/yukikurage/hoc-admin-api/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
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

	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMigrateDatabase_IsRepeatable(t *testing.T) {
	db := openTestDB(t)
	log := discardLogger()

	require.NoError(t, MigrateDatabase(db, log))
	require.NoError(t, MigrateDatabase(db, log))

	assert.True(t, db.Migrator().HasTable(&models.RelazioneCorrente{}))
	assert.True(t, db.Migrator().HasIndex("responsabili_operatori", "idx_resp_op_pair"))
	assert.True(t, db.Migrator().HasIndex(&models.Disponibilita{}, "idx_disponibilita_slot"))
}

func TestEnsureAdminUser(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	ctx := context.Background()
	hasher := auth.NewHasher(auth.MinBcryptCost)

	require.NoError(t, EnsureAdminUser(ctx, db, "", "", hasher, discardLogger()))

	require.NoError(t, EnsureAdminUser(ctx, db, "Boss@Example.com", "secret1", hasher, discardLogger()))
	require.NoError(t, EnsureAdminUser(ctx, db, "boss@example.com", "other-pass", hasher, discardLogger()))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "boss@example.com", users[0].Email)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.NoError(t, hasher.Compare(users[0].PasswordHash, "secret1"))
}

func TestScopes(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	for _, c := range []models.Creator{
		{Nome: "Zoe", Cognome: "Bianchi"},
		{Nome: "Anna", Cognome: "Bianchi"},
		{Nome: "Luca", Cognome: "Alfieri"},
	} {
		c := c
		require.NoError(t, db.Create(&c).Error)
	}

	var ordered []models.Creator
	require.NoError(t, db.Scopes(BySurname).Find(&ordered).Error)
	require.Len(t, ordered, 3)
	assert.Equal(t, "Alfieri", ordered[0].Cognome)
	assert.Equal(t, "Anna", ordered[1].Nome)
	assert.Equal(t, "Zoe", ordered[2].Nome)

	var found []models.Creator
	require.NoError(t, db.Scopes(Search("bIaN", "nome", "cognome")).Find(&found).Error)
	assert.Len(t, found, 2)

	var page []models.Creator
	require.NoError(t, db.Scopes(BySurname, Paginate(utils.NewPaginationParams(2, 2))).Find(&page).Error)
	require.Len(t, page, 1)
	assert.Equal(t, "Zoe", page[0].Nome)
}
