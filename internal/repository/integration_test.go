//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/constants"
	"github.com/Jidetireni/firstcare-registration/internal/helpers"
	"github.com/Jidetireni/firstcare-registration/pkg/cache"
	postgresql "github.com/Jidetireni/firstcare-registration/pkg/database"
	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type IntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	pg        *tcpostgres.PostgresContainer
	redis     *tcredis.RedisContainer
	db        *postgresql.PostgresDB
	cache     *cache.Redis
	cleanups  []func()
	submitted *SubmissionRepository
	payments  *PaymentRepository
	sessions  *RedisSessionRepository
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	pg, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("firstcare"),
		tcpostgres.WithUsername("firstcare"),
		tcpostgres.WithPassword("firstcare"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.pg = pg

	dsn, err := pg.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, cleanup, err := postgresql.New(dsn)
	s.Require().NoError(err)
	s.db = db
	s.cleanups = append(s.cleanups, cleanup)

	rc, err := tcredis.Run(s.ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.redis = rc

	url, err := rc.ConnectionString(s.ctx)
	s.Require().NoError(err)

	redis, closeRedis, err := cache.New(url, logger.Nop())
	s.Require().NoError(err)
	s.cache = redis
	s.cleanups = append(s.cleanups, closeRedis)

	s.submitted = NewSubmissionRepository(db.DB)
	s.payments = NewPaymentRepository(db.DB)
	s.sessions = NewRedisSessionRepository(redis)
}

func (s *IntegrationSuite) TearDownSuite() {
	for _, c := range s.cleanups {
		c()
	}
	if s.pg != nil {
		_ = s.pg.Terminate(s.ctx)
	}
	if s.redis != nil {
		_ = s.redis.Terminate(s.ctx)
	}
}

func (s *IntegrationSuite) SetupTest() {
	_, err := s.db.DB.ExecContext(s.ctx, "TRUNCATE payments, submissions")
	s.Require().NoError(err)
	s.Require().NoError(s.cache.Client.FlushAll(s.ctx).Err())
}

func (s *IntegrationSuite) submission(id string) *Submission {
	return &Submission{
		RegistrationID: id,
		FirstName:      "Amina",
		LastName:       "Bello",
		PhoneNumber:    "08012345678",
		NINHash:        helpers.HashValue("12345678901"),
		Zone:           "Kaduna Region",
		LGA:            "Kaduna North",
		Unit:           "Unit 4",
		AgentCode:      sql.NullString{String: "AG847291", Valid: true},
	}
}

func (s *IntegrationSuite) TestMigrationsAreIdempotent() {
	s.Require().NoError(postgresql.RunMigrations(s.ctx, s.db.DB))
}

func (s *IntegrationSuite) TestSubmissionCreateIsUpsert() {
	first, err := s.submitted.Create(s.ctx, s.submission("FC-0001"), nil)
	s.Require().NoError(err)
	s.False(first.PhotoUploaded)

	again := s.submission("FC-0001")
	again.PhotoUploaded = true
	second, err := s.submitted.Create(s.ctx, again, nil)
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.True(second.PhotoUploaded)

	regID := "FC-0001"
	exists, err := s.submitted.Exists(s.ctx, SubmissionRepositoryFilter{RegistrationID: &regID})
	s.Require().NoError(err)
	s.True(exists)

	got, err := s.submitted.Get(s.ctx, SubmissionRepositoryFilter{RegistrationID: &regID})
	s.Require().NoError(err)
	s.Equal("AG847291", got.AgentCode.String)
}

func (s *IntegrationSuite) TestSubmissionListPaginates() {
	for _, id := range []string{"FC-0001", "FC-0002", "FC-0003"} {
		_, err := s.submitted.Create(s.ctx, s.submission(id), nil)
		s.Require().NoError(err)
	}

	page, err := s.submitted.List(s.ctx, SubmissionRepositoryFilter{}, QueryOptions{Limit: 2})
	s.Require().NoError(err)
	s.Len(page.Items, 2)
	s.Require().NotNil(page.NextCursor)

	rest, err := s.submitted.List(s.ctx, SubmissionRepositoryFilter{}, QueryOptions{Limit: 2, Cursor: page.NextCursor})
	s.Require().NoError(err)
	s.Len(rest.Items, 1)
	s.Nil(rest.NextCursor)
}

func (s *IntegrationSuite) TestPayments() {
	created, err := s.payments.Create(s.ctx, &Payment{
		RegistrationID: "FC-0001",
		PaymentType:    constants.PaymentTypeRegistration,
		Amount:         constants.RegistrationFee,
		Reference:      helpers.PaymentReference("registration"),
	}, nil)
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, created.ID)

	regID := "FC-0001"
	list, err := s.payments.List(s.ctx, PaymentRepositoryFilter{RegistrationID: &regID}, QueryOptions{})
	s.Require().NoError(err)
	s.Require().Len(list.Items, 1)
	s.Equal(constants.PaymentTypeRegistration, list.Items[0].PaymentType)

	_, err = s.payments.Create(s.ctx, &Payment{
		RegistrationID: "FC-0001",
		PaymentType:    constants.PaymentTypeDailyDues,
		Amount:         0,
		Reference:      helpers.PaymentReference("daily_dues"),
	}, nil)
	s.Error(err)
	_, err = s.payments.Create(s.ctx, &Payment{
		RegistrationID: "FC-0001",
		PaymentType:    constants.PaymentTypeRegistration,
		Amount:         constants.RegistrationFee,
		Reference:      helpers.PaymentReference("registration"),
	}, nil)
	s.ErrorIs(err, ErrRegistrationFeeRecorded)
}

func (s *IntegrationSuite) TestRedisSessionLock() {
	id := uuid.New()

	unlock, err := s.sessions.Lock(s.ctx, id)
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(s.ctx, 100*time.Millisecond)
	defer cancel()
	_, err = s.sessions.Lock(ctx, id)
	s.Error(err)

	unlock()

	unlock, err = s.sessions.Lock(s.ctx, id)
	s.Require().NoError(err)
	unlock()
}

func (s *IntegrationSuite) TestRedisSessions() {
	id := uuid.New()
	_, err := s.sessions.Get(s.ctx, id)
	s.ErrorIs(err, ErrSessionNotFound)

	snap := sampleSnapshot()
	s.Require().NoError(s.sessions.Save(s.ctx, id, snap, time.Minute))

	got, err := s.sessions.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(snap, *got)

	ttl, err := s.cache.Client.TTL(s.ctx, sessionKey(id)).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	s.Require().NoError(s.sessions.Delete(s.ctx, id))
	_, err = s.sessions.Get(s.ctx, id)
	s.ErrorIs(err, ErrSessionNotFound)
}
