package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

// ErrRegistrationFeeRecorded is returned when a second registration fee is
// recorded for the same member.
var ErrRegistrationFeeRecorded = errors.New("registration fee already recorded")

const registrationFeeIndex = "uq_payments_registration_fee"

type PaymentRepository struct {
	db   *sqlx.DB
	psql sq.StatementBuilderType
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

type PaymentRepositoryFilter struct {
	ID             *uuid.UUID
	RegistrationID *string
	PaymentType    *string
	Reference      *string
}

func (p *PaymentRepository) buildQuery(filter PaymentRepositoryFilter, opts QueryOptions) (string, []any, error) {
	builder := p.psql.Select("*").From("payments")

	if filter.ID != nil {
		builder = builder.Where(sq.Eq{"id": *filter.ID})
	}
	if filter.RegistrationID != nil {
		builder = builder.Where(sq.Eq{"registration_id": *filter.RegistrationID})
	}
	if filter.PaymentType != nil {
		builder = builder.Where(sq.Eq{"payment_type": *filter.PaymentType})
	}
	if filter.Reference != nil {
		builder = builder.Where(sq.Eq{"reference": *filter.Reference})
	}

	if opts.Limit > 0 {
		var err error
		builder, err = ApplyPagination(builder, opts)
		if err != nil {
			return "", nil, err
		}
	}

	return builder.ToSql()
}

func (p *PaymentRepository) Get(ctx context.Context, filter PaymentRepositoryFilter) (*Payment, error) {
	query, args, err := p.buildQuery(filter, QueryOptions{})
	if err != nil {
		return nil, err
	}

	var payment Payment
	if err := p.db.GetContext(ctx, &payment, query, args...); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (p *PaymentRepository) Create(ctx context.Context, payment *Payment, tx *sqlx.Tx) (*Payment, error) {
	builder := p.psql.Insert("payments").
		Columns("registration_id", "payment_type", "amount", "reference").
		Values(payment.RegistrationID, payment.PaymentType, payment.Amount, payment.Reference).
		Suffix("RETURNING *")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var created Payment
	if tx != nil {
		err = tx.GetContext(ctx, &created, query, args...)
	} else {
		err = p.db.GetContext(ctx, &created, query, args...)
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == registrationFeeIndex {
			return nil, ErrRegistrationFeeRecorded
		}
		return nil, err
	}
	return &created, nil
}

func (p *PaymentRepository) List(ctx context.Context, filter PaymentRepositoryFilter, opts QueryOptions) (*ListResult[Payment], error) {
	if opts.Limit == 0 {
		opts.Limit = 20
	}

	query, args, err := p.buildQuery(filter, opts)
	if err != nil {
		return nil, err
	}

	var rows []Payment
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	items := lo.Map(rows, func(row Payment, _ int) *Payment {
		return &row
	})

	limit := int(min(opts.Limit, 100))
	listResult := ListResult[Payment]{
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
