package registration

import (
	"context"
)

// Repository persists registrations. Create and Update are each one
// transaction; readers never see a registration without its reason links.
type Repository interface {
	Create(ctx context.Context, in *Intake) (*Created, error)
	Update(ctx context.Context, id int64, in *Intake) error
	GetByID(ctx context.Context, id int64) (*Registration, error)
	ListByCamp(ctx context.Context, campID int64) ([]*CampRegistration, error)
	List(ctx context.Context, limit, offset int) ([]*Summary, int, error)
	Lookups(ctx context.Context) (*Lookups, error)
}
