package camp

import (
	"context"

	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "camp").Logger()}
}

// Create stores a new camp owned by createdBy.
func (s *Service) Create(ctx context.Context, in *Input, createdBy int64) (*Camp, error) {
	c, err := in.toCamp()
	if err != nil {
		return nil, err
	}
	if createdBy > 0 {
		c.CreatedBy = &createdBy
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info().Int64("camp_id", c.ID).Str("camp_date", c.CampDate.Format("2006-01-02")).Msg("camp created")
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, in *Input) error {
	c, err := in.toCamp()
	if err != nil {
		return err
	}
	c.ID = id
	return s.repo.Update(ctx, c)
}

func (s *Service) Get(ctx context.Context, id int64) (*Camp, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Camp, error) {
	return s.repo.List(ctx)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
