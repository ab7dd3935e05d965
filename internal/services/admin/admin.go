// Package admin backs the office views: the local ledger of submissions and
// payments and the members held by the backend.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Jidetireni/firstcare-registration/internal/dto"
	"github.com/Jidetireni/firstcare-registration/internal/repository"
	svc "github.com/Jidetireni/firstcare-registration/internal/services"
	"github.com/Jidetireni/firstcare-registration/pkg/firstcare"
	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"github.com/samber/lo"
)

var (
	_ SubmissionRepository = (*repository.SubmissionRepository)(nil)
	_ PaymentRepository    = (*repository.PaymentRepository)(nil)
	_ Backend              = (*firstcare.Client)(nil)
)

type SubmissionRepository interface {
	Get(ctx context.Context, filter repository.SubmissionRepositoryFilter) (*repository.Submission, error)
	List(ctx context.Context, filter repository.SubmissionRepositoryFilter, opts repository.QueryOptions) (*repository.ListResult[repository.Submission], error)
}

type PaymentRepository interface {
	List(ctx context.Context, filter repository.PaymentRepositoryFilter, opts repository.QueryOptions) (*repository.ListResult[repository.Payment], error)
}

type Backend interface {
	GetUser(ctx context.Context, registrationID string) (*firstcare.UserResponse, error)
	ListUsers(ctx context.Context) ([]firstcare.UserResponse, error)
}

type Admin struct {
	Submissions SubmissionRepository
	Payments    PaymentRepository
	Backend     Backend
	Logger      *logger.Logger
}

func New(submissions SubmissionRepository, payments PaymentRepository, backend Backend, log *logger.Logger) *Admin {
	return &Admin{
		Submissions: submissions,
		Payments:    payments,
		Backend:     backend,
		Logger:      log,
	}
}

func (a *Admin) ListSubmissions(ctx context.Context, filter dto.SubmissionFilter, opts dto.QueryOptions) (*dto.ListResponse[*dto.Submission], error) {
	result, err := a.Submissions.List(ctx, repository.SubmissionRepositoryFilter{
		Zone:      filter.Zone,
		LGA:       filter.LGA,
		AgentCode: filter.AgentCode,
	}, toQueryOptions(opts))
	if err != nil {
		return nil, paginationError(err)
	}

	return &dto.ListResponse[*dto.Submission]{
		Items: lo.Map(result.Items, func(s *repository.Submission, _ int) *dto.Submission {
			return s.ToDTO()
		}),
		NextCursor: result.NextCursor,
	}, nil
}

func (a *Admin) GetSubmission(ctx context.Context, registrationID string) (*dto.Submission, error) {
	submission, err := a.Submissions.Get(ctx, repository.SubmissionRepositoryFilter{RegistrationID: &registrationID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, svc.NotFound("Submission not found")
		}
		return nil, err
	}
	return submission.ToDTO(), nil
}

// Payments lists the payments recorded for one registration, newest first.
func (a *Admin) Payments(ctx context.Context, registrationID string, opts dto.QueryOptions) (*dto.ListResponse[*dto.Payment], error) {
	result, err := a.Payments.List(ctx, repository.PaymentRepositoryFilter{RegistrationID: &registrationID}, toQueryOptions(opts))
	if err != nil {
		return nil, paginationError(err)
	}

	return &dto.ListResponse[*dto.Payment]{
		Items: lo.Map(result.Items, func(p *repository.Payment, _ int) *dto.Payment {
			return p.ToDTO()
		}),
		NextCursor: result.NextCursor,
	}, nil
}

func (a *Admin) ListMembers(ctx context.Context) ([]*dto.Member, error) {
	users, err := a.Backend.ListUsers(ctx)
	if err != nil {
		return nil, backendError(err)
	}
	return lo.Map(users, func(u firstcare.UserResponse, _ int) *dto.Member {
		return toMember(&u)
	}), nil
}

func (a *Admin) GetMember(ctx context.Context, registrationID string) (*dto.Member, error) {
	user, err := a.Backend.GetUser(ctx, registrationID)
	if err != nil {
		return nil, backendError(err)
	}
	return toMember(user), nil
}

func toMember(u *firstcare.UserResponse) *dto.Member {
	return &dto.Member{
		ID:                  u.ID,
		RegistrationID:      u.RegistrationID,
		FirstName:           u.FirstName,
		MiddleName:          lo.FromPtr(u.MiddleName),
		LastName:            u.LastName,
		DateOfBirth:         u.DateOfBirth,
		Sex:                 u.Sex,
		PhoneNumber:         u.PhoneNumber,
		MembershipStatus:    u.MembershipStatus,
		RegistrationFeePaid: u.RegistrationFeePaid,
		CreatedAt:           u.CreatedAt.Time,
	}
}

func toQueryOptions(opts dto.QueryOptions) repository.QueryOptions {
	return repository.QueryOptions{
		Limit:  opts.Limit,
		Cursor: opts.Cursor,
		Sort:   opts.Sort,
	}
}

func paginationError(err error) error {
	if errors.Is(err, repository.ErrInvalidPagination) {
		return svc.BadRequest(err.Error())
	}
	return err
}

func backendError(err error) error {
	var apiErr *firstcare.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	status := http.StatusBadGateway
	if apiErr.Status >= 400 && apiErr.Status < 500 {
		status = apiErr.Status
	}
	return &svc.APIError{Status: status, Message: apiErr.Message}
}
