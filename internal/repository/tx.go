package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/gearshare/internal/log"
)

// Rollback is meant to be deferred right after BeginTx. Rolling back a committed tx is a no-op.
func Rollback(c context.Context, tx pgx.Tx, logger zerolog.Logger, span trace.Span) {
	logger = logger.With().Str(log.KeyProcess, "rolling back transaction").Logger()
	err := tx.Rollback(c)
	if err == nil {
		logger.Debug().Msg("rolled back transaction")
		return
	}
	if errors.Is(err, pgx.ErrTxClosed) {
		return
	}
	err = fmt.Errorf("failed rolling back transaction with error=%w", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Error().Err(err).Msg(err.Error())
}
