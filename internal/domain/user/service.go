package user

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/medcamp/medcamp/internal/platform/apperr"
	"github.com/medcamp/medcamp/internal/platform/auth"
	"github.com/medcamp/medcamp/internal/platform/db"
	"github.com/medcamp/medcamp/internal/platform/metrics"
)

// ErrInvalidCredentials covers both an unknown login and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the login is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("medcamp-no-such-user"), bcrypt.DefaultCost)

type Service struct {
	repo    Repository
	issuer  *auth.TokenIssuer
	revoked auth.RevocationStore
	log     zerolog.Logger
	metrics *metrics.Metrics
	cost    int
}

func NewService(repo Repository, issuer *auth.TokenIssuer, revoked auth.RevocationStore, log zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		issuer:  issuer,
		revoked: revoked,
		log:     log.With().Str("component", "user").Logger(),
		metrics: m,
		cost:    bcrypt.DefaultCost,
	}
}

// Login checks the password of the account whose username or mobile equals
// login and issues a token for it.
func (s *Service) Login(ctx context.Context, login, password string) (*Session, error) {
	creds, err := s.repo.FindForLogin(ctx, login)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.metrics.IncLogin("error")
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.metrics.IncLogin("failure")
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		s.metrics.IncLogin("failure")
		s.log.Info().Int64("user_id", creds.ID).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}
	if !creds.Role.Valid() {
		s.metrics.IncLogin("failure")
		s.log.Warn().Int64("user_id", creds.ID).Str("role", string(creds.Role)).Msg("account has an unknown role")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.issuer.Issue(creds.ID, creds.Role, creds.Username)
	if err != nil {
		s.metrics.IncLogin("error")
		return nil, err
	}
	s.metrics.IncLogin("success")
	s.log.Info().Int64("user_id", creds.ID).Str("role", string(creds.Role)).Msg("login")
	return &Session{
		Token:     token,
		ExpiresAt: exp,
		User: Profile{
			ID:       creds.ID,
			Username: creds.Username,
			Role:     creds.Role,
			Email:    creds.Email,
		},
	}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	exp := time.Now()
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if err := s.revoked.Revoke(ctx, claims.ID, exp); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", claims.UserID).Msg("logout")
	return nil
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Roles(ctx context.Context) ([]*RoleRow, error) {
	return s.repo.Roles(ctx)
}

// Create stores a user with a bcrypt hash of the password.
func (s *Service) Create(ctx context.Context, u *NewUser) (int64, error) {
	if err := u.validate(); err != nil {
		return 0, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.cost)
	if err != nil {
		return 0, err
	}
	id, err := s.repo.Create(ctx, u, string(hash))
	switch {
	case err == nil:
	case db.IsUniqueViolation(err):
		return 0, apperr.Conflict("Username or mobile already exists")
	default:
		if _, ok := db.ForeignKeyConstraint(err); ok {
			return 0, apperr.NewValidation("Missing required fields",
				map[string]bool{"role_id": false}, nil)
		}
		return 0, err
	}
	s.log.Info().Int64("user_id", id).Str("username", u.Username).Int("role_id", u.RoleID).Msg("user created")
	return id, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
