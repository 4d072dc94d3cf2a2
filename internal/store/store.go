// Package store persists merged homework records, their document provenance,
// and the completed flags the presentation layer toggles. It plays the
// external-collaborator role the core packages stay agnostic of: the pure
// extract/merge pipeline never touches it.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperifyio/klassenbuch/internal/homework"
)

//go:embed schema.sql
var schema string

const dueDateLayout = "2006-01-02"

// File is one ingested document as shown in the loaded-files list.
type File struct {
	ID            string
	Name          string
	Size          int64
	HomeworkCount int
	LoadedAt      time.Time
}

// Store wraps the sqlite database holding records and file provenance.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddFile registers an ingested document. Files are kept even when they
// yielded zero records so the loaded-files list reflects every upload.
func (s *Store) AddFile(f File) error {
	if f.LoadedAt.IsZero() {
		f.LoadedAt = time.Now()
	}
	_, err := s.db.Exec(
		"INSERT INTO files (id, name, size, homework_count, loaded_at) VALUES (?, ?, ?, ?, ?)",
		f.ID, f.Name, f.Size, f.HomeworkCount, f.LoadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// ListFiles returns registered documents in ingest order.
func (s *Store) ListFiles() ([]File, error) {
	rows, err := s.db.Query("SELECT id, name, size, homework_count, loaded_at FROM files ORDER BY loaded_at, rowid")
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Name, &f.Size, &f.HomeworkCount, &f.LoadedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// ReplaceAll swaps the stored record set for the given one in a single
// transaction. Record order is preserved via insert order; provenance order
// via an explicit position column.
func (s *Store) ReplaceAll(records []homework.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM homework_sources"); err != nil {
		return fmt.Errorf("clear sources: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM homework"); err != nil {
		return fmt.Errorf("clear homework: %w", err)
	}

	for _, r := range records {
		_, err := tx.Exec(
			"INSERT INTO homework (id, subject, teacher, description, lesson_content, due_date, completed) VALUES (?, ?, ?, ?, ?, ?, ?)",
			r.ID, r.Subject, r.Teacher, r.Description, r.LessonContent, r.DueDate.Format(dueDateLayout), r.Completed,
		)
		if err != nil {
			return fmt.Errorf("insert homework %s: %w", r.ID, err)
		}
		for i, fileID := range r.SourceFileIDs {
			_, err := tx.Exec(
				"INSERT INTO homework_sources (homework_id, file_id, position) VALUES (?, ?, ?)",
				r.ID, fileID, i,
			)
			if err != nil {
				return fmt.Errorf("insert source %s/%s: %w", r.ID, fileID, err)
			}
		}
	}
	return tx.Commit()
}

// Load returns all stored records ordered by due date, then insert order,
// with provenance slices in their original order.
func (s *Store) Load() ([]homework.Record, error) {
	rows, err := s.db.Query("SELECT id, subject, teacher, description, lesson_content, due_date, completed FROM homework ORDER BY due_date, rowid")
	if err != nil {
		return nil, fmt.Errorf("load homework: %w", err)
	}
	defer rows.Close()

	var records []homework.Record
	for rows.Next() {
		var r homework.Record
		var due string
		if err := rows.Scan(&r.ID, &r.Subject, &r.Teacher, &r.Description, &r.LessonContent, &due, &r.Completed); err != nil {
			return nil, fmt.Errorf("scan homework: %w", err)
		}
		t, err := time.ParseInLocation(dueDateLayout, due, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse due date %q: %w", due, err)
		}
		r.DueDate = t
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		sources, err := s.sourcesFor(records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].SourceFileIDs = sources
	}
	return records, nil
}

func (s *Store) sourcesFor(homeworkID string) ([]string, error) {
	rows, err := s.db.Query("SELECT file_id FROM homework_sources WHERE homework_id = ? ORDER BY position", homeworkID)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetCompleted flips the completed flag on one record. This is the only
// mutation path for the flag; extraction and merging never touch it.
func (s *Store) SetCompleted(id string, completed bool) error {
	res, err := s.db.Exec("UPDATE homework SET completed = ? WHERE id = ?", completed, id)
	if err != nil {
		return fmt.Errorf("set completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no homework with id %s", id)
	}
	return nil
}

// RemoveFile withdraws a document: its registry row and provenance rows go
// away, and any record left without a source is deleted with them.
func (s *Store) RemoveFile(fileID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM homework_sources WHERE file_id = ?", fileID); err != nil {
		return fmt.Errorf("remove sources: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM files WHERE id = ?", fileID); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM homework WHERE id NOT IN (SELECT homework_id FROM homework_sources)"); err != nil {
		return fmt.Errorf("remove orphaned homework: %w", err)
	}
	return tx.Commit()
}
