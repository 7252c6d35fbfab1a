package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger adapts a zerolog logger to gorm's logger.Interface. Statements
// are logged at debug, slow statements and failures at warn.
type GormLogger struct {
	log           zerolog.Logger
	slowThreshold time.Duration
}

func NewGormLogger(log zerolog.Logger, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{log: log, slowThreshold: slowThreshold}
}

// LogMode is a no-op, levels come from the zerolog logger.
func (g *GormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return g
}

func (g *GormLogger) Info(_ context.Context, msg string, data ...any) {
	g.log.Debug().Msg(fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	g.log.Warn().Msg(fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Error(_ context.Context, msg string, data ...any) {
	g.log.Error().Msg(fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.log.Warn().Err(err).Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("query failed")
	case g.slowThreshold > 0 && elapsed > g.slowThreshold:
		sql, rows := fc()
		g.log.Warn().Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("slow query")
	case g.log.GetLevel() <= zerolog.DebugLevel:
		sql, rows := fc()
		g.log.Debug().Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("query")
	}
}
