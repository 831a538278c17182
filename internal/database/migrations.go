package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds composite indexes used by the listing and ownership queries.
// Single-column indexes are declared on the models.
func AddIndexes(db *gorm.DB, log *slog.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// ownership check: any row joining a manager and an operator
		{"responsabili_operatori", "idx_resp_op_pair", "id_responsabile, id_operatore"},
		{"responsabili_operatori", "idx_resp_op_operatore_created", "id_operatore, created_at"},

		// month listings per relation
		{"disponibilita", "idx_disponibilita_relation_date", "id_operatore_responsabile, data_disponibilita"},

		{"richieste", "idx_richieste_relation_stato", "id_operatore_responsabile, stato_richiesta"},
		{"note_utente", "idx_note_utente_created", "id_utente, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}

// MigrateDatabase runs all database migrations
func MigrateDatabase(db *gorm.DB, log *slog.Logger) error {
	if err := Migrate(db); err != nil {
		return err
	}

	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
