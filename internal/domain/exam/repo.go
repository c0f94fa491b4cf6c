package exam

import "context"

type Repository interface {
	Create(ctx context.Context, e *Exam) error
	GetByID(ctx context.Context, id int64) (*Exam, error)
	ListByRegistration(ctx context.Context, registrationID int64) ([]*Exam, error)
}
