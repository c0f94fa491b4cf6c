package camp

import "context"

type Repository interface {
	Create(ctx context.Context, c *Camp) error
	GetByID(ctx context.Context, id int64) (*Camp, error)
	Update(ctx context.Context, c *Camp) error
	List(ctx context.Context) ([]*Camp, error)
	Stats(ctx context.Context) (*Stats, error)
}
