package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, email, COALESCE(password_hash,''), full_name, role, oauth_provider, is_active, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u        model.User
		provider sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &provider, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if provider.Valid {
		u.OAuthProvider = &provider.String
	}
	return u, err
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create hashes password and inserts a user, returning its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, fullName string, role model.Role, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, role) VALUES (?,?,?,?)",
		normalizeEmail(email), hash, strings.TrimSpace(fullName), role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpsertOAuth returns the user linked to (provider, subject). An existing
// password account with the same email is linked to the provider; otherwise
// a new CUSTOMER account without a password is created.
func (r *UserRepo) UpsertOAuth(ctx context.Context, provider, subject, email, fullName string) (model.User, error) {
	email = normalizeEmail(email)
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE oauth_provider=? AND oauth_subject=? LIMIT 1",
		provider, subject))
	if err == nil {
		return u, nil
	}
	if err != sql.ErrNoRows {
		return model.User{}, err
	}

	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET oauth_provider=?, oauth_subject=? WHERE email=? AND oauth_subject IS NULL",
		provider, subject, email)
	if err != nil {
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = r.DB.ExecContext(ctx,
			"INSERT INTO users (email, full_name, role, oauth_provider, oauth_subject) VALUES (?,?,?,?,?)",
			email, strings.TrimSpace(fullName), model.RoleCustomer, provider, subject)
		if err != nil {
			if isDuplicate(err) {
				return model.User{}, ErrEmailExists
			}
			return model.User{}, err
		}
	}
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE oauth_provider=? AND oauth_subject=? LIMIT 1",
		provider, subject))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email)))
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role  model.Role
	Query string // matched against email and full name
	Page  Page
}

// List returns one page of users plus the total count for the filter.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.User, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Role != "" {
		where = append(where, "role = ?")
		args = append(args, f.Role)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "(email LIKE ? OR full_name LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := f.Page.Normalize()
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users"+clause+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, p.PageSize, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// UpdateRole changes a user's role.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role model.Role) error {
	return r.updateOne(ctx, "UPDATE users SET role=? WHERE id=?", role, id)
}

// SetActive enables or disables login for a user.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	return r.updateOne(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
}

func (r *UserRepo) updateOne(ctx context.Context, query string, args ...any) error {
	id := args[len(args)-1]
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 when the value is unchanged too; check existence.
		var one int
		err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=?", id).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes a user. Users with active bookings, or who still own
// catalog entries, cannot be deleted and yield ErrConflict.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var active int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bookings WHERE user_id=? AND status IN ('PENDING','CONFIRMED','CANCELLATION_REQUESTED') FOR UPDATE",
		id).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// CountByRole returns the number of users per role for the dashboard.
func (r *UserRepo) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT role, COUNT(*) FROM users GROUP BY role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[model.Role]int, len(model.AllRoles))
	for _, role := range model.AllRoles {
		out[role] = 0
	}
	for rows.Next() {
		var (
			role model.Role
			n    int
		)
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		out[role] = n
	}
	return out, rows.Err()
}
