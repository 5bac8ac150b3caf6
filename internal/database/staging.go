package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"footage-archive/internal/logging"
	"footage-archive/internal/metrics"

	"github.com/google/uuid"
)

// stagedWrite is a batch of rows destined for one catalog table.
type stagedWrite struct {
	table   string
	columns []string
	rows    [][]any
}

// stagingTableName returns a temp table name that cannot collide with any
// other writer, including concurrent writes to the same target.
func stagingTableName(table string) string {
	return table + "_stage_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// upsert loads w into a fresh staging table and merges it into the target.
// Rows whose key already exists are replaced. The whole operation runs in a
// single transaction, so either every row lands or none do.
func (d *Database) upsert(ctx context.Context, operation string, w stagedWrite) (err error) {
	start := time.Now()
	defer func() { recordQuery(operation, start, err) }()

	if len(w.rows) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s upsert: %w", w.table, err)
	}

	txStart := time.Now()
	defer func() {
		outcome := "commit"
		if err != nil {
			outcome = "rollback"
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logging.Warn("Rollback of %s upsert failed: %v", w.table, rbErr)
			}
		}
		metrics.DBTransactionDuration.WithLabelValues(w.table, outcome).Observe(time.Since(txStart).Seconds())
	}()

	stage := stagingTableName(w.table)
	cols := strings.Join(w.columns, ", ")

	createSQL := fmt.Sprintf("CREATE TEMP TABLE %s AS SELECT %s FROM main.%s WHERE 0", stage, cols, w.table)
	if _, err = tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("create staging table for %s: %w", w.table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(w.columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", stage, cols, placeholders))
	if err != nil {
		return fmt.Errorf("prepare staging insert for %s: %w", w.table, err)
	}

	for i, row := range w.rows {
		if len(row) != len(w.columns) {
			_ = stmt.Close()
			return fmt.Errorf("row %d for %s has %d values, want %d", i, w.table, len(row), len(w.columns))
		}
		if _, err = stmt.ExecContext(ctx, row...); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("stage row %d for %s: %w", i, w.table, err)
		}
	}
	if err = stmt.Close(); err != nil {
		return fmt.Errorf("close staging insert for %s: %w", w.table, err)
	}

	mergeSQL := fmt.Sprintf("INSERT OR REPLACE INTO main.%s (%s) SELECT %s FROM %s", w.table, cols, cols, stage)
	if _, err = tx.ExecContext(ctx, mergeSQL); err != nil {
		return fmt.Errorf("merge %s: %w", w.table, err)
	}

	if _, err = tx.ExecContext(ctx, "DROP TABLE "+stage); err != nil {
		return fmt.Errorf("drop staging table for %s: %w", w.table, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s upsert: %w", w.table, err)
	}

	metrics.DBUpsertRows.WithLabelValues(w.table).Add(float64(len(w.rows)))
	logging.Debug("Upserted %d rows into %s", len(w.rows), w.table)
	return nil
}
