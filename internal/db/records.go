package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"tabula/internal/model"
	"time"
)

// ListTableData retrieves every row of the table in id order.
func ListTableData(db *sql.DB) ([]model.Record, error) {
	query := `
		SELECT id, name, email, role, created_at
		FROM table_data
		ORDER BY id
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list table data: %w", err)
	}
	defer rows.Close()

	results := []model.Record{}
	for rows.Next() {
		var r model.Record
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Role, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan table data row: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("row %d has invalid created_at %q: %w", r.ID, createdAt, err)
		}
		r.CreatedAt = t.UTC()
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table data rows: %w", err)
	}

	return results, nil
}

// InsertRecord stores a row, replacing any row with the same id. A zero
// ID lets SQLite assign one and a zero CreatedAt stores the current time.
func InsertRecord(db *sql.DB, r model.NewRecord) (int64, error) {
	query := `
		INSERT OR REPLACE INTO table_data (id, name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	var id interface{}
	if r.ID != 0 {
		id = r.ID
	}
	createdAt := time.Now().UTC().Format(time.RFC3339Nano)
	if !r.CreatedAt.IsZero() {
		createdAt = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	result, err := db.Exec(query, id, r.Name, r.Email, r.Role, createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert record: %w", err)
	}

	newID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return newID, nil
}

// CountRecords returns the number of rows in the table.
func CountRecords(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM table_data").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// SeedFromFile loads a JSON array of records from path into the table in a
// single transaction and returns the number of rows written.
func SeedFromFile(db *sql.DB, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var records []model.NewRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO table_data (id, name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare seed insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, r := range records {
		var id interface{}
		if r.ID != 0 {
			id = r.ID
		}
		createdAt := now
		if !r.CreatedAt.IsZero() {
			createdAt = r.CreatedAt.UTC()
		}
		if _, err := stmt.Exec(id, r.Name, r.Email, r.Role, createdAt.Format(time.RFC3339Nano)); err != nil {
			return 0, fmt.Errorf("failed to seed record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}

	return len(records), nil
}
