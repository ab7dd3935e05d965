package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

type SubmissionRepository struct {
	db   *sqlx.DB
	psql sq.StatementBuilderType
}

func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

type SubmissionRepositoryFilter struct {
	ID             *uuid.UUID
	RegistrationID *string
	Zone           *string
	LGA            *string
	AgentCode      *string
}

func (s *SubmissionRepository) buildQuery(filter SubmissionRepositoryFilter, opts QueryOptions) (string, []any, error) {
	queryType := QueryTypeSelect
	if opts.Type != nil {
		queryType = *opts.Type
	}

	var builder sq.SelectBuilder
	switch queryType {
	case QueryTypeSelect:
		builder = s.psql.Select("*").From("submissions")
	case QueryTypeCount:
		builder = s.psql.Select("COUNT(*)").From("submissions")
	}

	if filter.ID != nil {
		builder = builder.Where(sq.Eq{"id": *filter.ID})
	}
	if filter.RegistrationID != nil {
		builder = builder.Where(sq.Eq{"registration_id": *filter.RegistrationID})
	}
	if filter.Zone != nil {
		builder = builder.Where(sq.Eq{"zone": *filter.Zone})
	}
	if filter.LGA != nil {
		builder = builder.Where(sq.Eq{"lga": *filter.LGA})
	}
	if filter.AgentCode != nil {
		builder = builder.Where(sq.Eq{"agent_code": *filter.AgentCode})
	}

	if queryType == QueryTypeSelect && opts.Limit > 0 {
		var err error
		builder, err = ApplyPagination(builder, opts)
		if err != nil {
			return "", nil, err
		}
	}

	return builder.ToSql()
}

func (s *SubmissionRepository) Get(ctx context.Context, filter SubmissionRepositoryFilter) (*Submission, error) {
	query, args, err := s.buildQuery(filter, QueryOptions{})
	if err != nil {
		return nil, err
	}

	var submission Submission
	if err := s.db.GetContext(ctx, &submission, query, args...); err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionRepository) Exists(ctx context.Context, filter SubmissionRepositoryFilter) (bool, error) {
	countType := QueryTypeCount
	query, args, err := s.buildQuery(filter, QueryOptions{Type: &countType})
	if err != nil {
		return false, err
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create records a submission. Recording the same registration again updates
// the photo flag instead of failing.
func (s *SubmissionRepository) Create(ctx context.Context, submission *Submission, tx *sqlx.Tx) (*Submission, error) {
	builder := s.psql.Insert("submissions").
		Columns("registration_id", "first_name", "last_name", "phone_number", "nin_hash", "zone", "lga", "unit", "agent_code", "photo_uploaded").
		Values(submission.RegistrationID, submission.FirstName, submission.LastName, submission.PhoneNumber, submission.NINHash, submission.Zone, submission.LGA, submission.Unit, submission.AgentCode, submission.PhotoUploaded).
		Suffix("ON CONFLICT (registration_id) DO UPDATE SET photo_uploaded = EXCLUDED.photo_uploaded, updated_at = now() RETURNING *")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var created Submission
	if tx != nil {
		err = tx.GetContext(ctx, &created, query, args...)
		return &created, err
	}

	err = s.db.GetContext(ctx, &created, query, args...)
	return &created, err
}

func (s *SubmissionRepository) List(ctx context.Context, filter SubmissionRepositoryFilter, opts QueryOptions) (*ListResult[Submission], error) {
	if opts.Limit == 0 {
		opts.Limit = 20
	}

	query, args, err := s.buildQuery(filter, opts)
	if err != nil {
		return nil, err
	}

	var rows []Submission
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	items := lo.Map(rows, func(row Submission, _ int) *Submission {
		return &row
	})

	limit := int(min(opts.Limit, 100))
	listResult := ListResult[Submission]{
		Items: lo.Slice(items, 0, limit),
	}

	if len(items) > limit {
		last := lo.LastOr(items, nil)
		if last != nil {
			nextCursor := EncodeCursor(last.CreatedAt, last.ID)
			listResult.NextCursor = &nextCursor
		}
	}

	return &listResult, nil
}
