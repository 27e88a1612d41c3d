package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/MM-miles16/MMMILES/internal/model"
)

// UserRepo persists phone-keyed accounts.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// UpsertByPhone creates the account for a phone number if it does not
// exist yet and returns its id.  Called when an OTP is requested, so a
// first-time caller gets a row before verification completes.
func (r *UserRepo) UpsertByPhone(ctx context.Context, phone string) (uint64, error) {
    phone = strings.TrimSpace(phone)
    res, err := r.DB.ExecContext(ctx,
        `INSERT INTO users (phone, role) VALUES (?, ?)
         ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`,
        phone, model.RoleCustomer)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByPhone fetches a user by phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
    return r.get(ctx, "phone = ?", strings.TrimSpace(phone))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    return r.get(ctx, "id = ?", id)
}

func (r *UserRepo) get(ctx context.Context, cond string, arg any) (model.User, error) {
    var u model.User
    err := r.DB.QueryRowContext(ctx,
        `SELECT id, phone, COALESCE(full_name,''), COALESCE(email,''), role, verified, last_login, created_at
         FROM users WHERE `+cond+` LIMIT 1`, arg,
    ).Scan(&u.ID, &u.Phone, &u.FullName, &u.Email, &u.Role, &u.Verified, &u.LastLogin, &u.CreatedAt)
    return u, err
}

// MarkVerified flags the account as phone-verified and records the login
// time.  Called after a successful OTP check.
func (r *UserRepo) MarkVerified(ctx context.Context, id uint64, at time.Time) error {
    _, err := r.DB.ExecContext(ctx,
        `UPDATE users SET verified = 1, last_login = ? WHERE id = ?`,
        at.UTC().Format("2006-01-02 15:04:05"), id)
    return err
}

// UpdateProfile stores the editable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, fullName, email string) error {
    _, err := r.DB.ExecContext(ctx,
        `UPDATE users SET full_name = ?, email = ? WHERE id = ?`,
        strings.TrimSpace(fullName), strings.ToLower(strings.TrimSpace(email)), id)
    return err
}
