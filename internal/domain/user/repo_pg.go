package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/medcamp/medcamp/internal/platform/apperr"
	"github.com/medcamp/medcamp/internal/platform/auth"
	"github.com/medcamp/medcamp/internal/platform/db"
)

type repoPG struct {
	db db.Querier
}

func NewRepo(pool db.Querier) Repository {
	return &repoPG{db: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.db)
}

func (r *repoPG) FindForLogin(ctx context.Context, login string) (*Credentials, error) {
	var (
		c    Credentials
		role string
	)
	// Username wins when one account's username equals another's mobile.
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT u.user_id, u.username, u.email, u.password_hash, r.role_name
		FROM users u
		JOIN roles r ON r.role_id = u.role_id
		WHERE u.username = $1 OR u.mobile = $1
		ORDER BY (u.username = $1) DESC
		LIMIT 1`, login,
	).Scan(&c.ID, &c.Username, &c.Email, &c.PasswordHash, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Role = auth.Role(role)
	return &c, nil
}

func (r *repoPG) List(ctx context.Context) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT user_id, username, mobile, role_id, email
		FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Mobile, &u.RoleID, &u.Email); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (r *repoPG) Roles(ctx context.Context) ([]*RoleRow, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT role_id, role_name FROM roles ORDER BY role_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*RoleRow{}
	for rows.Next() {
		var (
			row  RoleRow
			name string
		)
		if err := rows.Scan(&row.ID, &name); err != nil {
			return nil, err
		}
		row.Name = auth.Role(name)
		out = append(out, &row)
	}
	return out, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, u *NewUser, passwordHash string) (int64, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (username, mobile, password_hash, role_id, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING user_id`,
		u.Username, u.Mobile, passwordHash, u.RoleID, u.Email,
	).Scan(&id)
	return id, err
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
