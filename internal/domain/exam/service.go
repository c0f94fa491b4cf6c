package exam

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medcamp/medcamp/internal/platform/db"
	"github.com/medcamp/medcamp/internal/platform/metrics"
)

type Service struct {
	repo    Repository
	log     zerolog.Logger
	metrics *metrics.Metrics
}

func NewService(repo Repository, log zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "exam").Logger(), metrics: m}
}

// Record validates and stores an exam. When the doctor_exams table has not
// been migrated yet the exam is accepted without being stored and stored
// reports false.
func (s *Service) Record(ctx context.Context, sub *Submission, userID int64) (e *Exam, stored bool, err error) {
	e, err = sub.Validate(userID)
	if err != nil {
		return nil, false, err
	}

	if err := s.repo.Create(ctx, e); err != nil {
		if db.IsUndefinedTable(err) {
			s.metrics.IncExam("echo")
			s.log.Warn().Int64("user_id", userID).Msg("doctor_exams table missing, exam not stored")
			return e, false, nil
		}
		s.log.Error().Err(err).Int64("user_id", userID).Msg("failed to store doctor exam")
		return nil, false, err
	}

	s.metrics.IncExam("stored")
	s.log.Info().
		Int64("doctor_exam_id", e.ID).
		Str("via_result", string(e.VIAResult)).
		Msg("doctor exam recorded")
	return e, true, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Exam, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByRegistration(ctx context.Context, registrationID int64) ([]*Exam, error) {
	return s.repo.ListByRegistration(ctx, registrationID)
}
