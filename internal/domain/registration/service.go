package registration

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/medcamp/medcamp/internal/platform/apperr"
	"github.com/medcamp/medcamp/internal/platform/db"
	"github.com/medcamp/medcamp/internal/platform/metrics"
)

type Service struct {
	repo    Repository
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewService(repo Repository, log zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "registration").Logger(), metrics: m}
}

// Create validates the submission and runs the intake transaction. Nothing
// is written when validation fails. Identical submissions create distinct
// registrations.
func (s *Service) Create(ctx context.Context, sub *Submission) (*Created, error) {
	in, err := sub.Normalize(true)
	if err != nil {
		s.metrics.IncIntakeFailure("validation")
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			s.log.Info().Strs("fields", verr.Fields).Msg("registration rejected")
		}
		return nil, err
	}

	created, err := s.repo.Create(ctx, in)
	if err != nil {
		s.metrics.IncIntakeFailure("persistence")
		evt := s.log.Error().Err(err).Int64("camp_id", in.CampID)
		if constraint, ok := db.ForeignKeyConstraint(err); ok {
			evt = evt.Str("constraint", constraint)
		}
		evt.Msg("registration intake rolled back")
		return nil, err
	}

	s.metrics.IncRegistrationCreated()
	s.log.Info().
		Int64("registration_id", created.RegistrationID).
		Int64("camp_id", in.CampID).
		Str("opd_number", created.OPDNumber).
		Int("reasons", len(in.ConsultationReasons)).
		Msg("registration created")
	return created, nil
}

// Update rewrites the scalar fields of a registration. The camp and the
// consultation reasons are left as they are.
func (s *Service) Update(ctx context.Context, id int64, sub *Submission) error {
	in, err := sub.Normalize(false)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, in); err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.log.Error().Err(err).Int64("registration_id", id).Msg("registration update rolled back")
		}
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Registration, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByCamp(ctx context.Context, campID int64) ([]*CampRegistration, error) {
	return s.repo.ListByCamp(ctx, campID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Summary, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Lookups(ctx context.Context) (*Lookups, error) {
	return s.repo.Lookups(ctx)
}
