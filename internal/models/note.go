package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/streed/exo/internal/embeddings"
	interrors "github.com/streed/exo/internal/errors"
)

type Note struct {
	ID        int64     `json:"id"`
	Text      string    `json:"note"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// HasEmbedding reports whether the note carries a vector.
func (n *Note) HasEmbedding() bool {
	return len(n.Embedding) > 0
}

// NoteRepository is the SQL layer under the note store. It performs no
// validation and never calls out to the embedding service.
type NoteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db, now: time.Now}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", interrors.ErrStorage, op, err)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const noteColumns = "id, note, embedding, created_at"

func scanNote(row rowScanner) (*Note, error) {
	var note Note
	var embedding sql.NullString
	if err := row.Scan(&note.ID, &note.Text, &embedding, &note.CreatedAt); err != nil {
		return nil, err
	}
	v, err := embeddings.Decode(embedding)
	if err != nil {
		return nil, storageErr(fmt.Sprintf("read embedding of note %d", note.ID), err)
	}
	note.Embedding = v
	return &note, nil
}

func encodeNullable(v []float32) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	s, err := embeddings.Encode(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: s, Valid: true}, nil
}

func (r *NoteRepository) Create(ctx context.Context, text string, embedding []float32) (*Note, error) {
	col, err := encodeNullable(embedding)
	if err != nil {
		return nil, storageErr("encode embedding", err)
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO notes (note, embedding, created_at) VALUES (?, ?, ?)",
		text, col, r.now().UTC(),
	)
	if err != nil {
		return nil, storageErr("create note", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, storageErr("get insert id", err)
	}

	return r.GetByID(ctx, id)
}

func (r *NoteRepository) GetByID(ctx context.Context, id int64) (*Note, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+noteColumns+" FROM notes WHERE id = ?", id)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interrors.ErrNoteNotFound
	}
	if err != nil {
		if errors.Is(err, interrors.ErrStorage) {
			return nil, err
		}
		return nil, storageErr("get note", err)
	}
	return note, nil
}

// List returns notes newest first. A limit of zero returns every note.
func (r *NoteRepository) List(ctx context.Context, limit, offset int) ([]*Note, error) {
	query := "SELECT " + noteColumns + " FROM notes ORDER BY created_at DESC, id DESC"
	args := []interface{}{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	}

	return r.queryNotes(ctx, "list notes", query, args...)
}

// WithEmbedding returns every note whose embedding column is set, in id
// order.
func (r *NoteRepository) WithEmbedding(ctx context.Context) ([]*Note, error) {
	return r.queryNotes(ctx, "load embeddings",
		"SELECT "+noteColumns+" FROM notes WHERE embedding IS NOT NULL ORDER BY id")
}

func (r *NoteRepository) queryNotes(ctx context.Context, op, query string, args ...interface{}) ([]*Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	notes := []*Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			if errors.Is(err, interrors.ErrStorage) {
				return nil, err
			}
			return nil, storageErr("scan note", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return notes, nil
}

// UpdateByID replaces text and embedding in a single statement so the two
// are never observed out of step.
func (r *NoteRepository) UpdateByID(ctx context.Context, id int64, text string, embedding []float32) (*Note, error) {
	col, err := encodeNullable(embedding)
	if err != nil {
		return nil, storageErr("encode embedding", err)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE notes SET note = ?, embedding = ? WHERE id = ?",
		text, col, id,
	)
	if err != nil {
		return nil, storageErr("update note", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, storageErr("get rows affected", err)
	}
	if rowsAffected == 0 {
		return nil, interrors.ErrNoteNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *NoteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return storageErr("delete note", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr("get rows affected", err)
	}
	if rowsAffected == 0 {
		return interrors.ErrNoteNotFound
	}

	return nil
}

func (r *NoteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&n); err != nil {
		return 0, storageErr("count notes", err)
	}
	return n, nil
}
