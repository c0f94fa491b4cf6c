package user

import "context"

type Repository interface {
	// FindForLogin matches login against username or mobile.
	FindForLogin(ctx context.Context, login string) (*Credentials, error)
	List(ctx context.Context) ([]*User, error)
	Roles(ctx context.Context) ([]*RoleRow, error)
	Create(ctx context.Context, u *NewUser, passwordHash string) (int64, error)
	Delete(ctx context.Context, id int64) error
}
