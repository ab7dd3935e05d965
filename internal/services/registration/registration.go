package registration

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/dto"
	"github.com/Jidetireni/firstcare-registration/internal/helpers"
	"github.com/Jidetireni/firstcare-registration/internal/repository"
	svc "github.com/Jidetireni/firstcare-registration/internal/services"
	"github.com/Jidetireni/firstcare-registration/internal/services/sessions"
	"github.com/Jidetireni/firstcare-registration/internal/wizard"
	"github.com/Jidetireni/firstcare-registration/pkg/email"
	"github.com/Jidetireni/firstcare-registration/pkg/firstcare"
	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"github.com/Jidetireni/firstcare-registration/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

const (
	msgIncomplete     = "Please complete all required fields before submitting"
	msgRegisterFailed = "Registration failed. Please try again."

	saveAttempts = 3
	saveBackoff  = 50 * time.Millisecond
)

var (
	_ Backend              = (*firstcare.Client)(nil)
	_ SubmissionRepository = (*repository.SubmissionRepository)(nil)
	_ Notifier             = (*email.Email)(nil)
	_ SessionStore         = (*sessions.Session)(nil)
)

type Backend interface {
	Register(ctx context.Context, req dto.RegistrationRequest) (*firstcare.UserResponse, error)
	UploadPhoto(ctx context.Context, registrationID, filename, contentType string, content []byte) (*firstcare.UploadPhotoResponse, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *repository.Submission, tx *sqlx.Tx) (*repository.Submission, error)
}

type Notifier interface {
	NotifyRegistration(ctx context.Context, data email.RegistrationSubmittedData) error
}

type SessionStore interface {
	Update(ctx context.Context, id uuid.UUID, fn func(*wizard.Store) error) (*wizard.Store, error)
}

type Validator interface {
	Struct(dst any) ([]wizard.FieldError, error)
}

type Registration struct {
	Sessions    SessionStore
	Backend     Backend
	Submissions SubmissionRepository
	Notifier    Notifier
	Validator   Validator
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
}

func New(sessionStore SessionStore, backend Backend, submissions SubmissionRepository, notifier Notifier, validator Validator, m *metrics.Metrics, log *logger.Logger) *Registration {
	return &Registration{
		Sessions:    sessionStore,
		Backend:     backend,
		Submissions: submissions,
		Notifier:    notifier,
		Validator:   validator,
		Metrics:     m,
		Logger:      log,
	}
}

// pending is what a submission carries out of the session lock.
type pending struct {
	request        dto.RegistrationRequest
	photo          *wizard.Photo
	registrationID string
	generation     int
	agentCode      string
	agentName      string
}

// Submit sends the reviewed draft to the backend: the registration first,
// then the photo against the returned id. Network calls run without holding
// the session lock, and a result that comes back after the session was reset
// is dropped.
func (r *Registration) Submit(ctx context.Context, id uuid.UUID) (*dto.WizardState, error) {
	var p pending
	_, err := r.Sessions.Update(ctx, id, func(store *wizard.Store) error {
		if err := sessions.RequireStep(store, wizard.StepReview); err != nil {
			return err
		}

		data := store.Data()
		p.request = requestFromDraft(data)
		fieldErrs, err := r.Validator.Struct(p.request)
		if err != nil {
			return err
		}
		if len(fieldErrs) > 0 {
			store.SetError(&wizard.ErrorValue{Message: msgIncomplete, Details: fieldErrs})
			return svc.BadRequest(msgIncomplete, fieldErrs...)
		}

		store.ClearError()
		store.StartLoading(time.Now())
		p.photo = data.Photo
		p.registrationID = store.RegistrationID()
		p.generation = store.Generation()
		p.agentCode = data.AgentCode
		p.agentName = data.AgentName
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The submission finishes even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	callErr := r.send(ctx, id, &p)
	r.Metrics.ObserveSubmit(start)

	store, discarded, err := r.finish(ctx, id, &p, callErr)
	if err != nil {
		r.Logger.Error().Err(err).
			Str("session_id", id.String()).
			Str("registration_id", p.registrationID).
			Msg("failed to save submission result")
		return nil, err
	}

	if discarded {
		r.Logger.Warn().
			Str("session_id", id.String()).
			Str("registration_id", p.registrationID).
			Msg("session was reset during submission; result discarded")
		return sessions.ToState(id, store), nil
	}

	if callErr != nil {
		r.Metrics.IncRegistration(outcome(callErr))
		r.Logger.Error().Err(callErr).Str("session_id", id.String()).Msg("registration submission failed")
		return nil, toAPIError(callErr)
	}

	r.Metrics.IncRegistration("success")
	r.Logger.Info().
		Str("session_id", id.String()).
		Str("registration_id", p.registrationID).
		Msg("registration complete")

	r.afterSubmit(ctx, &p)

	return sessions.ToState(id, store), nil
}

// send registers the member unless an earlier attempt already did, then
// uploads the photo. The registration id is stored as soon as it is known so
// a retry after a failed upload does not register twice.
func (r *Registration) send(ctx context.Context, id uuid.UUID, p *pending) error {
	if p.registrationID == "" {
		user, err := r.Backend.Register(ctx, p.request)
		if err != nil {
			return err
		}
		p.registrationID = user.RegistrationID

		// Losing this write only costs the retry shortcut; the final save
		// records the id again.
		_, err = r.Sessions.Update(ctx, id, func(store *wizard.Store) error {
			if store.Generation() != p.generation {
				return nil
			}
			return store.AssignRegistrationID(p.registrationID)
		})
		if err != nil {
			r.Logger.Warn().Err(err).
				Str("session_id", id.String()).
				Str("registration_id", p.registrationID).
				Msg("failed to save registration id")
		}
	}

	if p.photo != nil && len(p.photo.Content) > 0 {
		_, err := r.Backend.UploadPhoto(ctx, p.registrationID, p.photo.Filename, p.photo.ContentType, p.photo.Content)
		if err != nil {
			return err
		}
	}

	return nil
}

// finish stores the outcome of a submission and clears the loading flag. The
// save is attempted a few times since a lost write leaves the session loading
// until the flag goes stale.
func (r *Registration) finish(ctx context.Context, id uuid.UUID, p *pending, callErr error) (*wizard.Store, bool, error) {
	var (
		store     *wizard.Store
		discarded bool
		err       error
	)
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		discarded = false
		store, err = r.Sessions.Update(ctx, id, func(store *wizard.Store) error {
			if store.Generation() != p.generation {
				discarded = true
				return nil
			}
			store.StopLoading()
			if callErr != nil {
				store.SetError(errorValue(callErr))
				return nil
			}
			if store.Complete() && store.RegistrationID() == p.registrationID {
				return nil
			}
			return store.MarkComplete(p.registrationID)
		})
		if err == nil || store != nil {
			return store, discarded, err
		}
		if attempt < saveAttempts {
			time.Sleep(time.Duration(attempt) * saveBackoff)
		}
	}
	return nil, false, err
}

// afterSubmit records and announces a completed registration. Failures are
// logged; the registration itself already succeeded.
func (r *Registration) afterSubmit(ctx context.Context, p *pending) {
	req := p.request
	var g errgroup.Group

	g.Go(func() error {
		_, err := r.Submissions.Create(ctx, &repository.Submission{
			RegistrationID: p.registrationID,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			PhoneNumber:    req.PhoneNumber,
			NINHash:        helpers.HashValue(req.NIN),
			Zone:           req.Zone,
			LGA:            req.LGA,
			Unit:           req.Unit,
			AgentCode:      sql.NullString{String: p.agentCode, Valid: p.agentCode != ""},
			PhotoUploaded:  p.photo != nil,
		}, nil)
		if err != nil {
			r.Metrics.IncSideEffectError("record_submission")
			r.Logger.Error().Err(err).Str("registration_id", p.registrationID).Msg("failed to record submission")
		}
		return nil
	})

	g.Go(func() error {
		err := r.Notifier.NotifyRegistration(ctx, email.RegistrationSubmittedData{
			RegistrationID: p.registrationID,
			FullName:       strings.TrimSpace(req.FirstName + " " + req.LastName),
			PhoneNumber:    req.PhoneNumber,
			Zone:           req.Zone,
			LGA:            req.LGA,
			Unit:           req.Unit,
			AgentCode:      p.agentCode,
			AgentName:      p.agentName,
			PhotoUploaded:  p.photo != nil,
		})
		if err != nil {
			r.Metrics.IncSideEffectError("notify_office")
			r.Logger.Error().Err(err).Str("registration_id", p.registrationID).Msg("failed to notify office")
		}
		return nil
	})

	_ = g.Wait()
}

func requestFromDraft(d wizard.Draft) dto.RegistrationRequest {
	return dto.RegistrationRequest{
		FirstName:                d.FirstName,
		MiddleName:               d.MiddleName,
		LastName:                 d.LastName,
		DateOfBirth:              d.DateOfBirth,
		Sex:                      d.Sex,
		PhoneNumber:              d.PhoneNumber,
		NIN:                      d.NIN,
		Address:                  d.Address,
		State:                    d.State,
		LGA:                      d.LGA,
		Zone:                     d.Zone,
		Unit:                     d.Unit,
		EmergencyContactName:     d.EmergencyContactName,
		EmergencyContactAddress:  d.EmergencyContactAddress,
		EmergencyContactPhone:    d.EmergencyContactPhone,
		Beneficiary1Name:         d.Beneficiary1Name,
		Beneficiary1Address:      d.Beneficiary1Address,
		Beneficiary1Phone:        d.Beneficiary1Phone,
		Beneficiary1Relationship: d.Beneficiary1Relationship,
		Beneficiary2Name:         d.Beneficiary2Name,
		Beneficiary2Address:      d.Beneficiary2Address,
		Beneficiary2Phone:        d.Beneficiary2Phone,
		Beneficiary2Relationship: d.Beneficiary2Relationship,
	}
}

// errorValue keeps the backend's message when it sent one.
func errorValue(err error) *wizard.ErrorValue {
	var apiErr *firstcare.APIError
	if errors.As(err, &apiErr) {
		ev := &wizard.ErrorValue{Message: apiErr.Message}
		for _, d := range apiErr.Details {
			ev.Details = append(ev.Details, wizard.FieldError{Field: d.Field(), Message: d.Msg})
		}
		return ev
	}
	return &wizard.ErrorValue{Message: msgRegisterFailed}
}

func toAPIError(err error) *svc.APIError {
	ev := errorValue(err)
	status := http.StatusBadGateway
	var apiErr *firstcare.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		status = apiErr.Status
	}
	return &svc.APIError{Status: status, Message: ev.Message, Errors: ev.Details}
}

func outcome(err error) string {
	var apiErr *firstcare.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return "rejected"
	}
	return "failed"
}
