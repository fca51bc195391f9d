// Package repository contains data access logic for the booking domain. This
// file holds the Movie model and its repository. A Movie is a catalog entry
// owning zero or more screenings; its poster image lives in blob storage and
// only the storage path is persisted here.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Movie represents a catalog entry as stored in the `movies` table.
type Movie struct {
	ID          uint64    // movies.id
	Title       string    // movies.title
	Description string    // movies.description
	ImagePath   string    // movies.image_path (storage-assigned reference)
	Duration    uint32    // movies.duration (minutes)
	Director    string    // movies.director
	Genre       string    // movies.genre
	ReleaseYear int       // movies.release_year
	CreatedAt   time.Time // movies.created_at
	UpdatedAt   time.Time // movies.updated_at
}

// ErrMovieNotFound indicates that a movie was not located in the DB.
var ErrMovieNotFound = errors.New("movie not found")

// MovieRepo manages persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieCols = `id, title, description, image_path, duration, director, genre, release_year, created_at, updated_at`

func scanMovie(row interface{ Scan(...any) error }, m *Movie) error {
	return row.Scan(&m.ID, &m.Title, &m.Description, &m.ImagePath, &m.Duration,
		&m.Director, &m.Genre, &m.ReleaseYear, &m.CreatedAt, &m.UpdatedAt)
}

// Create inserts a new movie and populates the generated ID and DB-default
// timestamp fields on the given struct.
func (r *MovieRepo) Create(ctx context.Context, m *Movie) error {
	const q = `INSERT INTO movies (title, description, image_path, duration, director, genre, release_year)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.ImagePath, m.Duration, m.Director, m.Genre, m.ReleaseYear)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	const sel = `SELECT ` + movieCols + ` FROM movies WHERE id = ?`
	return scanMovie(r.db.QueryRowContext(ctx, sel, m.ID), m)
}

// GetByID retrieves a movie by its ID. It returns ErrMovieNotFound when no
// row matches.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*Movie, error) {
	const q = `SELECT ` + movieCols + ` FROM movies WHERE id = ?`
	var m Movie
	if err := scanMovie(r.db.QueryRowContext(ctx, q, id), &m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Exists reports whether a movie with the given ID is present. Screening
// writes use it to validate the movie foreign key before any mutation.
func (r *MovieRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListAll returns every movie ordered by ID. When no movies exist it
// returns an empty slice and nil error.
func (r *MovieRepo) ListAll(ctx context.Context) ([]Movie, error) {
	const q = `SELECT ` + movieCols + ` FROM movies ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Movie
	for rows.Next() {
		var m Movie
		if err := scanMovie(rows, &m); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update persists the full field set of the given movie. Handlers merge
// partial input into the loaded record first, so unspecified fields retain
// their prior values. It returns ErrMovieNotFound when the row is gone.
func (r *MovieRepo) Update(ctx context.Context, m *Movie) error {
	const q = `UPDATE movies
	           SET title = ?, description = ?, image_path = ?, duration = ?, director = ?, genre = ?, release_year = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.ImagePath, m.Duration, m.Director, m.Genre, m.ReleaseYear, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish "row missing" from "values identical".
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ? LIMIT 1`, m.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMovieNotFound
			}
			return err
		}
	}
	const sel = `SELECT ` + movieCols + ` FROM movies WHERE id = ?`
	return scanMovie(r.db.QueryRowContext(ctx, sel, m.ID), m)
}

// Delete removes a movie together with its screenings and their bookings
// inside one transaction so a mid-failure cannot leave half-updated state.
// It returns the stored image path so the caller can remove the poster blob
// after the commit. ErrMovieNotFound is returned when the movie is absent.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) (imagePath string, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = tx.QueryRowContext(ctx, `SELECT image_path FROM movies WHERE id = ?`, id).Scan(&imagePath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrMovieNotFound
		}
		return "", err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM bookings WHERE screening_id IN (SELECT id FROM screenings WHERE movie_id = ?)`, id); err != nil {
		return "", err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM screenings WHERE movie_id = ?`, id); err != nil {
		return "", err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id); err != nil {
		return "", err
	}
	return imagePath, nil
}
