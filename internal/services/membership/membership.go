// Package membership serves what a member can do once registered: pay the
// registration fee or daily dues and fetch the QR payload and ID card.
package membership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/constants"
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
	qrcode "github.com/skip2/go-qrcode"
)

const qrCodeSize = 256

var (
	_ Backend           = (*firstcare.Client)(nil)
	_ PaymentRepository = (*repository.PaymentRepository)(nil)
	_ Notifier          = (*email.Email)(nil)
	_ SessionStore      = (*sessions.Session)(nil)
)

type Backend interface {
	UpdatePayment(ctx context.Context, req firstcare.PaymentRequest) (*firstcare.MessageResponse, error)
	QRData(ctx context.Context, registrationID string) (*firstcare.QRData, error)
	GenerateCard(ctx context.Context, registrationID string) ([]byte, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *repository.Payment, tx *sqlx.Tx) (*repository.Payment, error)
}

type Notifier interface {
	NotifyPayment(ctx context.Context, data email.PaymentReceivedData) error
}

type SessionStore interface {
	Load(ctx context.Context, id uuid.UUID) (*wizard.Store, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*wizard.Store) error) (*wizard.Store, error)
}

type Validator interface {
	Struct(dst any) ([]wizard.FieldError, error)
}

var errNotRegistered = svc.Conflict("Registration is not complete")

type Membership struct {
	Sessions  SessionStore
	Backend   Backend
	Payments  PaymentRepository
	Notifier  Notifier
	Validator Validator
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

func New(sessionStore SessionStore, backend Backend, payments PaymentRepository, notifier Notifier, validator Validator, m *metrics.Metrics, log *logger.Logger) *Membership {
	return &Membership{
		Sessions:  sessionStore,
		Backend:   backend,
		Payments:  payments,
		Notifier:  notifier,
		Validator: validator,
		Metrics:   m,
		Logger:    log,
	}
}

// Pay records a registration fee or daily dues payment with the backend. The
// registration fee is fixed and can be paid once; dues are paid in whole days.
// One payment runs per session at a time: the check and the reservation
// happen under the session lock, the backend call outside it.
func (m *Membership) Pay(ctx context.Context, id uuid.UUID, input dto.PaymentInput) (*dto.PaymentResult, error) {
	fieldErrs, err := m.Validator.Struct(input)
	if err != nil {
		return nil, err
	}
	if len(fieldErrs) > 0 {
		return nil, svc.BadRequest("Input validation failed", fieldErrs...)
	}

	var (
		amount         int64
		registrationID string
		generation     int
	)
	_, err = m.Sessions.Update(ctx, id, func(store *wizard.Store) error {
		if !store.Complete() {
			return errNotRegistered
		}
		if store.IsLoading() {
			return svc.Conflict("A payment is already being processed")
		}
		a, err := paymentAmount(input, store.Data())
		if err != nil {
			return err
		}
		amount = a
		registrationID = store.RegistrationID()
		generation = store.Generation()
		store.StartLoading(time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The reservation must be released even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	_, err = m.Backend.UpdatePayment(ctx, firstcare.PaymentRequest{
		RegistrationID: registrationID,
		Amount:         amount,
		PaymentType:    string(input.PaymentType),
	})
	m.release(ctx, id, generation, err == nil && input.PaymentType == constants.PaymentTypeRegistration)
	if err != nil {
		m.Logger.Error().Err(err).Str("registration_id", registrationID).Msg("payment update failed")
		return nil, toAPIError(err, "Payment update failed. Please try again.")
	}
	m.Metrics.IncPayment(string(input.PaymentType))

	payment := &repository.Payment{
		RegistrationID: registrationID,
		PaymentType:    input.PaymentType,
		Amount:         amount,
		Reference:      helpers.PaymentReference(string(input.PaymentType)),
		CreatedAt:      time.Now().UTC(),
	}
	if recorded, err := m.Payments.Create(ctx, payment, nil); err != nil {
		m.Metrics.IncSideEffectError("record_payment")
		m.Logger.Error().Err(err).Str("reference", payment.Reference).Msg("failed to record payment")
	} else {
		payment = recorded
	}

	err = m.Notifier.NotifyPayment(ctx, email.PaymentReceivedData{
		RegistrationID: registrationID,
		PaymentType:    string(payment.PaymentType),
		Amount:         payment.Amount,
		Reference:      payment.Reference,
	})
	if err != nil {
		m.Metrics.IncSideEffectError("notify_payment")
		m.Logger.Error().Err(err).Str("reference", payment.Reference).Msg("failed to notify office of payment")
	}

	result := &dto.PaymentResult{Payment: payment.ToDTO()}
	if qr, err := m.Backend.QRData(ctx, registrationID); err != nil {
		m.Logger.Warn().Err(err).Str("registration_id", registrationID).Msg("could not refresh qr data after payment")
	} else {
		result.QRData = toQRData(qr)
	}

	return result, nil
}

// release ends the payment reservation taken by Pay, recording the
// registration fee as paid when feePaid is set.
func (m *Membership) release(ctx context.Context, id uuid.UUID, generation int, feePaid bool) {
	_, err := m.Sessions.Update(ctx, id, func(store *wizard.Store) error {
		if store.Generation() != generation {
			return nil
		}
		store.StopLoading()
		if feePaid {
			store.MarkPaymentComplete()
		}
		return nil
	})
	if err != nil {
		m.Logger.Error().Err(err).Str("session_id", id.String()).Bool("fee_paid", feePaid).Msg("failed to release payment reservation")
	}
}

func paymentAmount(input dto.PaymentInput, data wizard.Draft) (int64, error) {
	switch input.PaymentType {
	case constants.PaymentTypeRegistration:
		if data.PaymentComplete {
			return 0, svc.Conflict("Registration fee has already been paid")
		}
		if input.Amount != 0 && input.Amount != constants.RegistrationFee {
			return 0, svc.BadRequest("Input validation failed", wizard.FieldError{
				Field:   "amount",
				Message: fmt.Sprintf("amount must be %d for the registration fee", constants.RegistrationFee),
			})
		}
		return constants.RegistrationFee, nil
	default:
		if input.Amount == 0 {
			return constants.DailyDue, nil
		}
		if input.Amount%constants.DailyDue != 0 {
			return 0, svc.BadRequest("Input validation failed", wizard.FieldError{
				Field:   "amount",
				Message: fmt.Sprintf("amount must be a multiple of %d", constants.DailyDue),
			})
		}
		return input.Amount, nil
	}
}

func (m *Membership) QRData(ctx context.Context, id uuid.UUID) (*dto.QRData, error) {
	store, err := m.registered(ctx, id)
	if err != nil {
		return nil, err
	}

	qr, err := m.Backend.QRData(ctx, store.RegistrationID())
	if err != nil {
		return nil, toAPIError(err, "QR data not found.")
	}
	return toQRData(qr), nil
}

// QRCode renders the member's QR payload as a PNG.
func (m *Membership) QRCode(ctx context.Context, id uuid.UUID) ([]byte, error) {
	data, err := m.QRData(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(payload), qrcode.Medium, qrCodeSize)
}

func (m *Membership) Card(ctx context.Context, id uuid.UUID) (*dto.Card, error) {
	store, err := m.registered(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := m.Backend.GenerateCard(ctx, store.RegistrationID())
	if err != nil {
		return nil, toAPIError(err, "Card generation failed. Please try again.")
	}

	data := store.Data()
	return &dto.Card{
		Filename: helpers.CardFilename(data.FirstName, data.LastName),
		Content:  content,
	}, nil
}

func (m *Membership) registered(ctx context.Context, id uuid.UUID) (*wizard.Store, error) {
	store, err := m.Sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !store.Complete() {
		return nil, errNotRegistered
	}
	return store, nil
}

func toQRData(qr *firstcare.QRData) *dto.QRData {
	return &dto.QRData{
		RegistrationID: qr.RegistrationID,
		Name:           qr.Name,
		Phone:          qr.Phone,
		Status:         qr.Status,
		PaymentStatus: dto.PaymentStatus{
			RegistrationFeePaid: qr.PaymentStatus.RegistrationFeePaid,
			DailyDuesBalance:    qr.PaymentStatus.DailyDuesBalance,
		},
		IssueDate: qr.IssueDate,
		Zone:      qr.Zone,
		Unit:      qr.Unit,
	}
}

// toAPIError keeps the backend's client errors and reports anything else as a
// bad gateway.
func toAPIError(err error, fallback string) *svc.APIError {
	var apiErr *firstcare.APIError
	if !errors.As(err, &apiErr) {
		return &svc.APIError{Status: http.StatusBadGateway, Message: fallback}
	}
	status := http.StatusBadGateway
	if apiErr.Status >= 400 && apiErr.Status < 500 {
		status = apiErr.Status
	}
	return &svc.APIError{Status: status, Message: apiErr.Message}
}
