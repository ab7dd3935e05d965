// Package sessions owns the per-session wizard stores: it loads and persists
// them, gates every step on its schema and serialises concurrent requests for
// the same session.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/config"
	"github.com/Jidetireni/firstcare-registration/internal/dto"
	"github.com/Jidetireni/firstcare-registration/internal/repository"
	svc "github.com/Jidetireni/firstcare-registration/internal/services"
	"github.com/Jidetireni/firstcare-registration/internal/wizard"
	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"github.com/Jidetireni/firstcare-registration/pkg/metrics"
	"github.com/Jidetireni/firstcare-registration/pkg/token"
	"github.com/google/uuid"
)

var (
	_ SessionRepository = (*repository.RedisSessionRepository)(nil)
	_ SessionRepository = (*repository.MemorySessionRepository)(nil)
)

type SessionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*wizard.Snapshot, error)
	Save(ctx context.Context, id uuid.UUID, snap wizard.Snapshot, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Lock serialises read-modify-write cycles on one session and returns the
	// release func.
	Lock(ctx context.Context, id uuid.UUID) (func(), error)
}

type Validator interface {
	Struct(dst any) ([]wizard.FieldError, error)
}

type Session struct {
	Config     *config.Config
	Repository SessionRepository
	JWT        *token.Jwt
	Validator  Validator
	Metrics    *metrics.Metrics
	Logger     *logger.Logger
	Now        func() time.Time
}

const (
	defaultSubmitTimeout = 2 * time.Minute
	msgInterrupted       = "Submission was interrupted. Please try again."
)

func New(cfg *config.Config, repo SessionRepository, jwt *token.Jwt, validator Validator, m *metrics.Metrics, log *logger.Logger) *Session {
	return &Session{
		Config:     cfg,
		Repository: repo,
		JWT:        jwt,
		Validator:  validator,
		Metrics:    m,
		Logger:     log,
		Now:        time.Now,
	}
}

// Start opens a new wizard session and returns its signed token.
func (s *Session) Start(ctx context.Context, input dto.StartWizardInput) (*dto.WizardSession, error) {
	mode := input.Mode
	if mode == "" {
		mode = wizard.EntryMode(s.Config.Wizard.EntryMode)
	}
	if !mode.Valid() {
		return nil, svc.BadRequest(fmt.Sprintf("unknown entry mode %q", mode))
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	store := wizard.New(mode)
	if err := s.Repository.Save(ctx, id, store.Snapshot(), s.Config.Wizard.SessionTTL); err != nil {
		return nil, err
	}

	signed, claims, err := s.JWT.CreateToken(&token.CreateTokenParams{
		SessionID: id,
		Mode:      string(mode),
		Duration:  s.Config.Wizard.SessionTTL,
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.IncSessionStarted(string(mode))
	s.Logger.Info().Str("session_id", id.String()).Str("mode", string(mode)).Msg("wizard session started")

	return &dto.WizardSession{
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
		State:     ToState(id, store),
	}, nil
}

// Authenticate resolves a session token to its session id.
func (s *Session) Authenticate(tokenString string) (uuid.UUID, error) {
	claims, err := s.JWT.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, svc.Unauthorized("Invalid or expired session")
	}
	return claims.SessionID, nil
}

func (s *Session) Load(ctx context.Context, id uuid.UUID) (*wizard.Store, error) {
	snap, err := s.Repository.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, svc.NotFound("Registration session not found or expired")
		}
		return nil, err
	}
	store := wizard.Restore(*snap)
	if store.ExpireLoading(s.Now(), s.submitTimeout()) {
		s.Logger.Warn().Str("session_id", id.String()).Msg("clearing stale loading flag")
		store.SetError(&wizard.ErrorValue{Message: msgInterrupted})
	}
	return store, nil
}

func (s *Session) submitTimeout() time.Duration {
	if s.Config.Wizard.SubmitTimeout > 0 {
		return s.Config.Wizard.SubmitTimeout
	}
	return defaultSubmitTimeout
}

// Update runs fn against the session's store under the session lock and
// persists the result. The store is saved even when fn fails so that errors
// recorded on it are kept; fn must not mutate the store on paths where the
// state should stay unchanged.
func (s *Session) Update(ctx context.Context, id uuid.UUID, fn func(*wizard.Store) error) (*wizard.Store, error) {
	unlock, err := s.Repository.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	store, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	fnErr := fn(store)

	if err := s.Repository.Save(ctx, id, store.Snapshot(), s.Config.Wizard.SessionTTL); err != nil {
		return nil, err
	}

	return store, fnErr
}

func (s *Session) State(ctx context.Context, id uuid.UUID) (*dto.WizardState, error) {
	store, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToState(id, store), nil
}

func (s *Session) Previous(ctx context.Context, id uuid.UUID) (*dto.WizardState, error) {
	return s.apply(ctx, id, func(store *wizard.Store) error {
		if store.IsLoading() {
			return errSubmitting
		}
		if store.Submitted() && !store.Complete() {
			return errSubmitted
		}
		store.Retreat()
		return nil
	})
}

// Reset starts a new registration in the same session. A submission still in
// flight for the old draft is discarded when it returns.
func (s *Session) Reset(ctx context.Context, id uuid.UUID) (*dto.WizardState, error) {
	return s.apply(ctx, id, func(store *wizard.Store) error {
		store.Reset()
		return nil
	})
}

func (s *Session) apply(ctx context.Context, id uuid.UUID, fn func(*wizard.Store) error) (*dto.WizardState, error) {
	store, err := s.Update(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	return ToState(id, store), nil
}

var (
	errSubmitting = &svc.APIError{
		Status:  http.StatusConflict,
		Message: "Registration is being submitted",
	}
	errSubmitted = &svc.APIError{
		Status:  http.StatusConflict,
		Message: "Registration has already been sent; only the submission can be retried",
	}
)

// RequireStep rejects actions that belong to a step other than the current
// one.
func RequireStep(store *wizard.Store, step wizard.FormStep) error {
	if store.Complete() {
		return svc.Conflict("Registration is already complete")
	}
	if store.IsLoading() {
		return errSubmitting
	}
	if store.Submitted() && step != wizard.StepReview {
		return errSubmitted
	}
	if !store.Position().Is(step) {
		return svc.Conflict(fmt.Sprintf("The %s step is not the current step", step))
	}
	return nil
}

// ToState is the client-facing view of a store.
func ToState(id uuid.UUID, store *wizard.Store) *dto.WizardState {
	data := store.Data()
	return &dto.WizardState{
		SessionID:   id,
		Mode:        store.Mode(),
		CurrentStep: store.CurrentStep(),
		View:        store.Route(),
		IsLoading:   store.IsLoading(),
		Error:       store.Err(),
		Data: dto.Draft{
			FirstName:                data.FirstName,
			MiddleName:               data.MiddleName,
			LastName:                 data.LastName,
			DateOfBirth:              data.DateOfBirth,
			Sex:                      data.Sex,
			PhoneNumber:              data.PhoneNumber,
			NIN:                      data.NIN,
			Address:                  data.Address,
			State:                    data.State,
			LGA:                      data.LGA,
			Zone:                     data.Zone,
			Unit:                     data.Unit,
			HasPhoto:                 data.HasPhoto(),
			PhotoPreview:             data.PhotoPreview,
			EmergencyContactName:     data.EmergencyContactName,
			EmergencyContactAddress:  data.EmergencyContactAddress,
			EmergencyContactPhone:    data.EmergencyContactPhone,
			Beneficiary1Name:         data.Beneficiary1Name,
			Beneficiary1Address:      data.Beneficiary1Address,
			Beneficiary1Phone:        data.Beneficiary1Phone,
			Beneficiary1Relationship: data.Beneficiary1Relationship,
			Beneficiary2Name:         data.Beneficiary2Name,
			Beneficiary2Address:      data.Beneficiary2Address,
			Beneficiary2Phone:        data.Beneficiary2Phone,
			Beneficiary2Relationship: data.Beneficiary2Relationship,
			AgentCode:                data.AgentCode,
			AgentName:                data.AgentName,
			RegistrationID:           data.RegistrationID,
			RegistrationComplete:     data.RegistrationComplete,
			PaymentComplete:          data.PaymentComplete,
		},
	}
}
