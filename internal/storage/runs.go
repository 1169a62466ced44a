package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"apicheck/internal/breaking"
)

// RunRecord is the stored summary of one comparison
type RunRecord struct {
	ID              string    `json:"id" yaml:"id"`
	CreatedAt       time.Time `json:"createdAt" yaml:"createdAt"`
	BeforeRoot      string    `json:"beforeRoot" yaml:"beforeRoot"`
	AfterRoot       string    `json:"afterRoot" yaml:"afterRoot"`
	SemverAdvice    string    `json:"semverAdvice" yaml:"semverAdvice"`
	TotalChanges    int       `json:"totalChanges" yaml:"totalChanges"`
	BreakingChanges int       `json:"breakingChanges" yaml:"breakingChanges"`
	Warnings        int       `json:"warnings" yaml:"warnings"`
	Additions       int       `json:"additions" yaml:"additions"`
}

// SaveRun stores a comparison result and all of its changes in one
// transaction and returns the new run id.
func (db *DB) SaveRun(result *breaking.CompareResult) (string, error) {
	if result == nil || result.Summary == nil {
		return "", fmt.Errorf("cannot save a comparison without a summary")
	}

	id := uuid.New().String()
	s := result.Summary
	err := db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (
				id, created_at, before_root, after_root, semver_advice,
				total_changes, breaking_changes, warnings, additions,
				classes_added, classes_removed, classes_changed, classes_unchanged,
				total_before_classes, total_after_classes
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, time.Now().UTC().Format(time.RFC3339Nano), result.Before, result.After, result.SemverAdvice,
			s.TotalChanges, s.BreakingChanges, s.Warnings, s.Additions,
			s.ClassesAdded, s.ClassesRemoved, s.ClassesChanged, s.ClassesUnchanged,
			result.TotalBeforeClasses, result.TotalAfterClasses)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO changes (
				run_id, seq, kind, severity, symbol_kind, symbol_name, class, member,
				package, description, old_value, new_value, affects_users, accepted, reason
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare change insert: %w", err)
		}
		defer stmt.Close()

		for i, c := range result.Changes {
			if _, err := stmt.Exec(id, i, string(c.Kind), string(c.Severity), string(c.SymbolKind),
				c.SymbolName, c.Class, c.Member, c.Package, c.Description, c.OldValue, c.NewValue,
				c.AffectsUsers, c.Accepted, c.Reason); err != nil {
				return fmt.Errorf("failed to insert change %s: %w", c.SymbolName, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	db.logger.Debug("Saved comparison run", "id", id, "changes", len(result.Changes))
	return id, nil
}

// Runs lists stored runs, newest first.
func (db *DB) Runs() ([]RunRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, created_at, before_root, after_root, semver_advice,
			total_changes, breaking_changes, warnings, additions
		FROM runs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var created string
		if err := rows.Scan(&r.ID, &created, &r.BeforeRoot, &r.AfterRoot, &r.SemverAdvice,
			&r.TotalChanges, &r.BreakingChanges, &r.Warnings, &r.Additions); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("run %s has bad timestamp: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Changes returns the changes stored for a run, in report order.
func (db *DB) Changes(runID string) ([]breaking.APIChange, error) {
	rows, err := db.conn.Query(`
		SELECT kind, severity, symbol_kind, symbol_name, class, member, package,
			description, old_value, new_value, affects_users, accepted, reason
		FROM changes WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer rows.Close()

	var changes []breaking.APIChange
	for rows.Next() {
		var c breaking.APIChange
		var kind, severity, symbolKind string
		if err := rows.Scan(&kind, &severity, &symbolKind, &c.SymbolName, &c.Class, &c.Member, &c.Package,
			&c.Description, &c.OldValue, &c.NewValue, &c.AffectsUsers, &c.Accepted, &c.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		c.Kind = breaking.ChangeKind(kind)
		c.Severity = breaking.Severity(severity)
		c.SymbolKind = breaking.SymbolKind(symbolKind)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// DeleteRun removes a run and its changes.
func (db *DB) DeleteRun(runID string) error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM changes WHERE run_id = ?", runID); err != nil {
			return fmt.Errorf("failed to delete changes: %w", err)
		}
		res, err := tx.Exec("DELETE FROM runs WHERE id = ?", runID)
		if err != nil {
			return fmt.Errorf("failed to delete run: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("run %s not found", runID)
		}
		return nil
	})
}
