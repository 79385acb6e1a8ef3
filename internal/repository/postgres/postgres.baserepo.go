package postgres

import (
	"context"
	"database/sql"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/database"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
)

type PostgresBaseRepo struct {
	db database.DB
}

func (r *PostgresBaseRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to begin transaction", err)
	}
	return tx, nil
}

func (r *PostgresBaseRepo) Ping(ctx context.Context) error {
	if err := r.db.GetDB().PingContext(ctx); err != nil {
		return errors.NewDatabaseError("failed to ping database", err)
	}
	return nil
}

// expectOne turns a zero-row write into a not-found error for entity.
func expectOne(result sql.Result, entity string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError(entity+" not found", nil)
	}
	return nil
}
