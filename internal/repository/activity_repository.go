package repository

import (
	"context"
	"database/sql"

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/model"
)

// ActivityRepo provides data access to the activities table and owns the
// archive state machine: active -> archived via Archive, archived -> active
// via Reactivate.  Both transitions match rows by id only, so re-applying a
// transition to a record already in the target state is a harmless no-op
// write that still reports success; zero affected rows therefore always
// means the record does not exist.
type ActivityRepo struct{ DB *sql.DB }

// NewActivityRepo returns an ActivityRepo bound to the provided database.
func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

const activityColumns = "id, title, category, held_at, status, archived_at, archived_by, created_at, updated_at"

func scanActivity(row interface{ Scan(...any) error }) (model.Activity, error) {
	var a model.Activity
	err := row.Scan(&a.ID, &a.Title, &a.Category, &a.HeldAt, &a.Status,
		&a.ArchivedAt, &a.ArchivedBy, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// List returns activities, optionally filtered by status ("active" or
// "archived"); an empty status returns everything.
func (r *ActivityRepo) List(ctx context.Context, status string) ([]model.Activity, error) {
	query := "SELECT " + activityColumns + " FROM activities"
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY held_at DESC, id DESC"
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var activities []model.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// GetByID fetches a single activity.  ErrNotFound is returned when no row
// matches.
func (r *ActivityRepo) GetByID(ctx context.Context, id uint64) (model.Activity, error) {
	a, err := scanActivity(r.DB.QueryRowContext(ctx,
		"SELECT "+activityColumns+" FROM activities WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return model.Activity{}, ErrNotFound
	}
	return a, err
}

// Create inserts a new activity in the "active" state and returns its ID.
func (r *ActivityRepo) Create(ctx context.Context, a model.Activity) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO activities (title, category, held_at, status) VALUES (?,?,?,?)",
		a.Title, a.Category, a.HeldAt, model.ActivityStatusActive)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites the descriptive fields of an activity, returning the
// number of rows affected.  Lifecycle fields are only touched by Archive
// and Reactivate.
func (r *ActivityRepo) Update(ctx context.Context, a model.Activity) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE activities SET title=?, category=?, held_at=?, updated_at=UTC_TIMESTAMP() WHERE id = ?",
		a.Title, a.Category, a.HeldAt, a.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Archive moves an activity to the archived state, recording when and by
// whom.  archivedBy is the verified subject id of the acting user.  The
// returned count is the number of rows matched; zero means the activity
// does not exist and callers must report not-found, not success.
func (r *ActivityRepo) Archive(ctx context.Context, id uint64, archivedBy string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE activities SET status=?, archived_at=UTC_TIMESTAMP(), archived_by=?, updated_at=UTC_TIMESTAMP() WHERE id = ?",
		model.ActivityStatusArchived, archivedBy, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Reactivate returns an archived activity to the active state and clears
// the archive metadata.  Zero affected rows means the activity does not
// exist.
func (r *ActivityRepo) Reactivate(ctx context.Context, id uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE activities SET status=?, archived_at=NULL, archived_by=NULL, updated_at=UTC_TIMESTAMP() WHERE id = ?",
		model.ActivityStatusActive, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
