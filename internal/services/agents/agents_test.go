package agents

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/config"
	"github.com/Jidetireni/firstcare-registration/internal/dto"
	"github.com/Jidetireni/firstcare-registration/internal/repository"
	svc "github.com/Jidetireni/firstcare-registration/internal/services"
	"github.com/Jidetireni/firstcare-registration/internal/services/sessions"
	"github.com/Jidetireni/firstcare-registration/internal/validation"
	"github.com/Jidetireni/firstcare-registration/internal/wizard"
	"github.com/Jidetireni/firstcare-registration/pkg/firstcare"
	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"github.com/Jidetireni/firstcare-registration/pkg/metrics"
	"github.com/Jidetireni/firstcare-registration/pkg/token"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ValidateAgentCode(ctx context.Context, code string) (*firstcare.AgentInfo, error) {
	args := m.Called(ctx, code)
	info, _ := args.Get(0).(*firstcare.AgentInfo)
	return info, args.Error(1)
}

var agent = &firstcare.AgentInfo{AgentName: "Ibrahim Musa", Zone: "Zaria Region", LGA: "Sabon Gari"}

type AgentsSuite struct {
	suite.Suite
	ctx      context.Context
	sessions *sessions.Session
	backend  *mockBackend
	service  *Agents
}

func TestAgentsSuite(t *testing.T) {
	suite.Run(t, new(AgentsSuite))
}

func (s *AgentsSuite) SetupTest() {
	s.ctx = context.Background()
	v, err := validation.New()
	s.Require().NoError(err)

	m := metrics.New(prometheus.NewRegistry())
	cfg := &config.Config{Wizard: config.WizardConfig{EntryMode: "plain", SessionTTL: time.Hour}}
	s.sessions = sessions.New(cfg, repository.NewMemorySessionRepository(), token.NewJwt("secret"), v, m, logger.Nop())

	s.backend = new(mockBackend)
	s.service, err = New(s.sessions, s.backend, m, logger.Nop())
	s.Require().NoError(err)
}

func (s *AgentsSuite) TearDownTest() {
	s.backend.AssertExpectations(s.T())
}

func (s *AgentsSuite) start(mode wizard.EntryMode) uuid.UUID {
	session, err := s.sessions.Start(s.ctx, dto.StartWizardInput{Mode: mode})
	s.Require().NoError(err)
	return session.State.SessionID
}

func (s *AgentsSuite) requireStatus(err error, status int) {
	var apiErr *svc.APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(status, apiErr.Status)
}

func (s *AgentsSuite) TestValidCodeStaysOnTheGate() {
	id := s.start(wizard.EntryAgent)
	s.backend.On("ValidateAgentCode", mock.Anything, "AG847291").Return(agent, nil).Once()

	res, err := s.service.Lookup(s.ctx, id, dto.AgentCodeInput{AgentCode: " ag847291 "})
	s.Require().NoError(err)
	s.Equal("AG847291", res.Code)
	s.Equal(dto.AgentLookupValid, res.Status)
	s.Equal("Ibrahim Musa", res.Agent.AgentName)
	s.Equal(0, res.State.CurrentStep)
	s.Equal("AG847291", res.State.Data.AgentCode)
	s.Equal("Ibrahim Musa", res.State.Data.AgentName)
	s.Equal("Zaria Region", res.State.Data.Zone)
	s.Equal("Sabon Gari", res.State.Data.LGA)

	state, err := s.service.Continue(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, state.CurrentStep)
	s.Equal("AG847291", state.Data.AgentCode)
}

func (s *AgentsSuite) TestValidCodesAreCached() {
	id := s.start(wizard.EntryAgent)
	s.backend.On("ValidateAgentCode", mock.Anything, "AG847291").Return(agent, nil).Once()

	for range 3 {
		res, err := s.service.Lookup(s.ctx, id, dto.AgentCodeInput{AgentCode: "AG847291"})
		s.Require().NoError(err)
		s.Equal(dto.AgentLookupValid, res.Status)
	}
	s.backend.AssertNumberOfCalls(s.T(), "ValidateAgentCode", 1)
}

func (s *AgentsSuite) TestShortCodeIsNotLookedUp() {
	id := s.start(wizard.EntryAgent)
	s.backend.On("ValidateAgentCode", mock.Anything, "AG847291").Return(agent, nil).Once()

	_, err := s.service.Lookup(s.ctx, id, dto.AgentCodeInput{AgentCode: "AG847291"})
	s.Require().NoError(err)

	res, err := s.service.Lookup(s.ctx, id, dto.AgentCodeInput{AgentCode: "ag8"})
	s.Require().NoError(err)
	s.Equal(dto.AgentLookupTooShort, res.Status)
	s.Nil(res.Agent)
	s.Empty(res.State.Data.AgentCode)
	s.Empty(res.State.Data.AgentName)

	_, err = s.service.Continue(s.ctx, id)
	s.requireStatus(err, http.StatusBadRequest)
}

func (s *AgentsSuite) TestUnknownCode() {
	id := s.start(wizard.EntryAgent)
	s.backend.On("ValidateAgentCode", mock.Anything, "ZZ000000").Return(nil, firstcare.ErrAgentNotFound).Once()

	res, err := s.service.Lookup(s.ctx, id, dto.AgentCodeInput{AgentCode: "zz000000"})
	s.Require().NoError(err)
	s.Equal(dto.AgentLookupNotFound, res.Status)
	s.Equal(0, res.State.CurrentStep)
	s.Empty(res.State.Data.AgentName)
}

func (s *AgentsSuite) TestDirectoryFailure() {
	id := s.start(wizard.EntryAgent)
	s.backend.On("ValidateAgentCode", mock.Anything, "AG847291").
		Return(nil, &firstcare.APIError{Status: http.StatusInternalServerError, Message: "Invalid agent code"}).Once()

	_, err := s.service.Lookup(s.ctx, id, dto.AgentCodeInput{AgentCode: "AG847291"})
	s.requireStatus(err, http.StatusBadGateway)
}

func (s *AgentsSuite) TestLookupOnlyAtTheGate() {
	id := s.start(wizard.EntryPlain)

	_, err := s.service.Lookup(s.ctx, id, dto.AgentCodeInput{AgentCode: "AG847291"})
	s.requireStatus(err, http.StatusConflict)
	s.backend.AssertNotCalled(s.T(), "ValidateAgentCode", mock.Anything, mock.Anything)
}

func (s *AgentsSuite) TestChange() {
	s.Run("agent mode returns to the gate keeping the draft", func() {
		id := s.start(wizard.EntryAgent)
		s.backend.On("ValidateAgentCode", mock.Anything, "AG847291").Return(agent, nil).Once()

		_, err := s.service.Lookup(s.ctx, id, dto.AgentCodeInput{AgentCode: "AG847291"})
		s.Require().NoError(err)
		_, err = s.service.Continue(s.ctx, id)
		s.Require().NoError(err)

		state, err := s.service.Change(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(0, state.CurrentStep)
		s.Equal(wizard.KindAgentGate, state.View.Kind)
		s.Equal("AG847291", state.Data.AgentCode)

		_, err = s.service.Change(s.ctx, id)
		s.requireStatus(err, http.StatusConflict)
	})

	s.Run("plain mode has no gate", func() {
		id := s.start(wizard.EntryPlain)
		_, err := s.service.Change(s.ctx, id)
		s.requireStatus(err, http.StatusConflict)
	})

	s.Run("not once the backend holds the registration", func() {
		id := s.start(wizard.EntryAgent)
		_, err := s.sessions.Update(s.ctx, id, func(store *wizard.Store) error {
			store.JumpTo(wizard.Form(wizard.StepReview))
			return store.AssignRegistrationID("FC-0002")
		})
		s.Require().NoError(err)

		_, err = s.service.Change(s.ctx, id)
		s.requireStatus(err, http.StatusConflict)
	})
}

func (s *AgentsSuite) TestSharedLookupOutlivesItsCaller() {
	id := s.start(wizard.EntryAgent)
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	s.backend.On("ValidateAgentCode", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), "AG847291").Return(agent, nil).Once()

	res, err := s.service.Lookup(ctx, id, dto.AgentCodeInput{AgentCode: "AG847291"})
	s.Require().NoError(err)
	s.Equal(dto.AgentLookupValid, res.Status)
}
