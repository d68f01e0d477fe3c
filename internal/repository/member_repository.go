package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/global-DevLabs/zet-asociatie-sub002/internal/model"
)

// MemberRepo provides data access to the members table.  All queries are
// parameterized; user input is never concatenated into query text.
type MemberRepo struct{ DB *sql.DB }

// NewMemberRepo returns a MemberRepo bound to the provided database.
func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

const memberColumns = "id, member_code, status, `rank`, first_name, last_name, unit, email, phone, address, created_at, updated_at"

func scanMember(row interface{ Scan(...any) error }) (model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.MemberCode, &m.Status, &m.Rank, &m.FirstName, &m.LastName,
		&m.Unit, &m.Email, &m.Phone, &m.Address, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// List returns all members ordered by code.
func (r *MemberRepo) List(ctx context.Context) ([]model.Member, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM members ORDER BY member_code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetByID fetches a single member.  ErrNotFound is returned when no row
// matches.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (model.Member, error) {
	m, err := scanMember(r.DB.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return model.Member{}, ErrNotFound
	}
	return m, err
}

// Create inserts a new member row and returns its ID.  The member code must
// already have been assigned by the sequence allocator; this method never
// invents one.
func (r *MemberRepo) Create(ctx context.Context, m model.Member) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO members (member_code, status, `rank`, first_name, last_name, unit, email, phone, address) VALUES (?,?,?,?,?,?,?,?,?)",
		m.MemberCode, m.Status, m.Rank, m.FirstName, m.LastName, m.Unit, m.Email, m.Phone, m.Address)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites the mutable fields of a member.  The member_code column is
// deliberately absent from the SET list: codes are immutable once assigned.
// Returns the number of rows affected so callers can distinguish a missing
// record from a successful write.
func (r *MemberRepo) Update(ctx context.Context, m model.Member) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE members SET status=?, `rank`=?, first_name=?, last_name=?, unit=?, email=?, phone=?, address=?, updated_at=UTC_TIMESTAMP() WHERE id = ?",
		m.Status, m.Rank, m.FirstName, m.LastName, m.Unit, m.Email, m.Phone, m.Address, m.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes a member row, returning the number of rows affected.
func (r *MemberRepo) Delete(ctx context.Context, id uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM members WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Search performs a LIKE match over code, name, email and phone.  The query
// string is passed as a bound parameter with wildcards added here, so LIKE
// metacharacters in user input cannot change the query shape.
func (r *MemberRepo) Search(ctx context.Context, q string) ([]model.Member, error) {
	like := "%" + strings.TrimSpace(q) + "%"
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+memberColumns+` FROM members
		 WHERE member_code LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ?
		 ORDER BY member_code`,
		like, like, like, like, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
