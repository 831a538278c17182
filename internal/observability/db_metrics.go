package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

const startKey = "observability:start"

// GormMetrics is a GORM plugin timing every statement into Prom.
type GormMetrics struct {
	prom *Prom
}

func NewGormMetrics(p *Prom) *GormMetrics {
	return &GormMetrics{prom: p}
}

func (m *GormMetrics) Name() string { return "hoc:metrics" }

func (m *GormMetrics) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
	}

	for _, h := range hooks {
		if err := h.before("hoc:metrics_before_"+h.op, startTimer); err != nil {
			return err
		}
		if err := h.after("hoc:metrics_after_"+h.op, m.observe(h.op)); err != nil {
			return err
		}
	}
	return nil
}

func startTimer(db *gorm.DB) {
	db.InstanceSet(startKey, time.Now())
}

func (m *GormMetrics) observe(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startKey)
		if !ok {
			return
		}
		start, _ := v.(time.Time)

		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}

		status := "ok"
		if err := db.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			status = "error"
			m.prom.DbErrorsTotal.WithLabelValues(op, classifyDBErr(err)).Inc()
		}
		m.prom.DbQueryDuration.WithLabelValues(op, table, status).Observe(time.Since(start).Seconds())
	}
}

func classifyDBErr(err error) string {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return "unique_violation"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return "foreign_key_violation"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadlock"):
		return "deadlock"
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}
