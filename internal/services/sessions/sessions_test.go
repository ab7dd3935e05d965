package sessions

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/config"
	"github.com/Jidetireni/firstcare-registration/internal/constants"
	"github.com/Jidetireni/firstcare-registration/internal/dto"
	"github.com/Jidetireni/firstcare-registration/internal/repository"
	svc "github.com/Jidetireni/firstcare-registration/internal/services"
	"github.com/Jidetireni/firstcare-registration/internal/validation"
	"github.com/Jidetireni/firstcare-registration/internal/wizard"
	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"github.com/Jidetireni/firstcare-registration/pkg/metrics"
	"github.com/Jidetireni/firstcare-registration/pkg/token"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type SessionSuite struct {
	suite.Suite
	ctx     context.Context
	service *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.ctx = context.Background()
	v, err := validation.New()
	s.Require().NoError(err)

	cfg := &config.Config{Wizard: config.WizardConfig{EntryMode: "plain", SessionTTL: time.Hour}}
	s.service = New(cfg, repository.NewMemorySessionRepository(), token.NewJwt("secret"), v,
		metrics.New(prometheus.NewRegistry()), logger.Nop())
}

func (s *SessionSuite) start(mode wizard.EntryMode) uuid.UUID {
	session, err := s.service.Start(s.ctx, dto.StartWizardInput{Mode: mode})
	s.Require().NoError(err)
	return session.State.SessionID
}

func personalInfo() dto.PersonalInfoInput {
	return dto.PersonalInfoInput{
		FirstName:   "Amina",
		LastName:    "Bello",
		DateOfBirth: "1990-01-01",
		Sex:         "F",
		PhoneNumber: "08012345678",
		NIN:         "12345678901",
	}
}

func (s *SessionSuite) requireStatus(err error, status int) *svc.APIError {
	var apiErr *svc.APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(status, apiErr.Status)
	return apiErr
}

func (s *SessionSuite) TestStart() {
	s.Run("default mode opens on personal info", func() {
		session, err := s.service.Start(s.ctx, dto.StartWizardInput{})
		s.Require().NoError(err)
		s.NotEmpty(session.Token)
		s.Equal(1, session.State.CurrentStep)
		s.Equal(wizard.EntryPlain, session.State.Mode)
		s.Equal("Kaduna", session.State.Data.State)

		id, err := s.service.Authenticate(session.Token)
		s.Require().NoError(err)
		s.Equal(session.State.SessionID, id)
	})

	s.Run("agent mode opens on the gate", func() {
		session, err := s.service.Start(s.ctx, dto.StartWizardInput{Mode: wizard.EntryAgent})
		s.Require().NoError(err)
		s.Equal(0, session.State.CurrentStep)
		s.Equal(wizard.KindAgentGate, session.State.View.Kind)
	})

	s.Run("bad token is unauthorized", func() {
		_, err := s.service.Authenticate("nope")
		s.requireStatus(err, http.StatusUnauthorized)
	})
}

func (s *SessionSuite) TestInvalidStepLeavesStateUnchanged() {
	id := s.start(wizard.EntryPlain)

	in := personalInfo()
	in.FirstName = "A"
	_, err := s.service.SubmitPersonalInfo(s.ctx, id, in)
	apiErr := s.requireStatus(err, http.StatusBadRequest)
	s.Require().Len(apiErr.Errors, 1)
	s.Equal("first_name", apiErr.Errors[0].Field)

	state, err := s.service.State(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, state.CurrentStep)
	s.Empty(state.Data.FirstName)
	s.Nil(state.Error)
}

func (s *SessionSuite) TestStepMustBeCurrent() {
	id := s.start(wizard.EntryPlain)

	_, err := s.service.SubmitLocation(s.ctx, id, dto.LocationInput{})
	s.requireStatus(err, http.StatusConflict)

	_, err = s.service.UploadPhoto(s.ctx, id, "me.png", pngBytes)
	s.requireStatus(err, http.StatusConflict)
}

func (s *SessionSuite) TestWalkToReview() {
	id := s.start(wizard.EntryPlain)

	state, err := s.service.SubmitPersonalInfo(s.ctx, id, personalInfo())
	s.Require().NoError(err)
	s.Equal(2, state.CurrentStep)
	s.Equal("Amina", state.Data.FirstName)

	s.Run("photo is required to continue", func() {
		_, err := s.service.ContinueFromPhoto(s.ctx, id)
		s.requireStatus(err, http.StatusBadRequest)
	})

	s.Run("non image upload is rejected", func() {
		_, err := s.service.UploadPhoto(s.ctx, id, "notes.txt", []byte("hello there"))
		s.requireStatus(err, http.StatusBadRequest)
	})

	state, err = s.service.UploadPhoto(s.ctx, id, "me.png", pngBytes)
	s.Require().NoError(err)
	s.Equal(2, state.CurrentStep)
	s.True(state.Data.HasPhoto)
	s.Contains(state.Data.PhotoPreview, "data:image/png;base64,")

	state, err = s.service.ContinueFromPhoto(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(3, state.CurrentStep)

	state, err = s.service.SubmitLocation(s.ctx, id, dto.LocationInput{
		Address: "12 Ahmadu Bello Way",
		LGA:     "Kaduna North",
		Zone:    "Kaduna Region",
		Unit:    "Unit 4",
	})
	s.Require().NoError(err)
	s.Equal(4, state.CurrentStep)
	s.Equal("Kaduna", state.Data.State)

	state, err = s.service.SubmitEmergencyContact(s.ctx, id, dto.EmergencyContactInput{
		EmergencyContactName:    "Musa Bello",
		EmergencyContactAddress: "12 Ahmadu Bello Way",
		EmergencyContactPhone:   "08011111111",
	})
	s.Require().NoError(err)
	s.Equal(5, state.CurrentStep)

	state, err = s.service.SubmitBeneficiaries(s.ctx, id, dto.BeneficiariesInput{
		Beneficiary1Name:         "Musa Bello",
		Beneficiary1Address:      "12 Ahmadu Bello Way",
		Beneficiary1Phone:        "08011111111",
		Beneficiary1Relationship: "Spouse",
	})
	s.Require().NoError(err)
	s.Equal(6, state.CurrentStep)
	s.Equal(wizard.View{Kind: wizard.KindForm, Step: wizard.StepReview}, state.View)

	s.Run("previous keeps the draft", func() {
		state, err := s.service.Previous(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(5, state.CurrentStep)
		s.Equal("Amina", state.Data.FirstName)
		s.True(state.Data.HasPhoto)
	})

	s.Run("reset clears everything", func() {
		state, err := s.service.Reset(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(1, state.CurrentStep)
		s.Empty(state.Data.FirstName)
		s.False(state.Data.HasPhoto)
		s.Equal("Kaduna", state.Data.State)
	})
}

func (s *SessionSuite) TestPreviousSaturatesAtFirstStep() {
	id := s.start(wizard.EntryPlain)

	state, err := s.service.Previous(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, state.CurrentStep)
}

func (s *SessionSuite) TestUnknownSession() {
	_, err := s.service.State(s.ctx, uuid.New())
	s.requireStatus(err, http.StatusNotFound)
}

func (s *SessionSuite) TestConcurrentUpdatesAreSerialised() {
	id := s.start(wizard.EntryPlain)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.service.Update(s.ctx, id, func(store *wizard.Store) error {
				store.Reset()
				return nil
			})
		}()
	}
	wg.Wait()

	store, err := s.service.Load(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(20, store.Generation())
}

func (s *SessionSuite) TestPhotoStep() {
	id := s.start(wizard.EntryPlain)
	_, err := s.service.SubmitPersonalInfo(s.ctx, id, personalInfo())
	s.Require().NoError(err)

	s.Run("empty file is rejected", func() {
		_, err := s.service.UploadPhoto(s.ctx, id, "me.png", nil)
		apiErr := s.requireStatus(err, http.StatusBadRequest)
		s.Equal("photo", apiErr.Errors[0].Field)
	})

	s.Run("oversized file is rejected", func() {
		big := append(bytes.Clone(pngBytes), make([]byte, constants.MaxPhotoSize)...)
		_, err := s.service.UploadPhoto(s.ctx, id, "me.png", big)
		s.requireStatus(err, http.StatusRequestEntityTooLarge)
	})

	s.Run("type is sniffed from the content", func() {
		_, err := s.service.UploadPhoto(s.ctx, id, "me.png", []byte("GIF89a not a passport photo"))
		s.requireStatus(err, http.StatusBadRequest)
	})

	state, err := s.service.State(s.ctx, id)
	s.Require().NoError(err)
	s.False(state.Data.HasPhoto)

	_, err = s.service.UploadPhoto(s.ctx, id, "me.png", pngBytes)
	s.Require().NoError(err)

	s.Run("remove clears photo and preview", func() {
		state, err := s.service.RemovePhoto(s.ctx, id)
		s.Require().NoError(err)
		s.False(state.Data.HasPhoto)
		s.Empty(state.Data.PhotoPreview)
		s.Equal(2, state.CurrentStep)

		store, err := s.service.Load(s.ctx, id)
		s.Require().NoError(err)
		s.Nil(store.Data().Photo)
	})

	s.Run("cannot continue without a photo", func() {
		_, err := s.service.ContinueFromPhoto(s.ctx, id)
		apiErr := s.requireStatus(err, http.StatusBadRequest)
		s.Equal("photo", apiErr.Errors[0].Field)
	})
}

func (s *SessionSuite) TestStaleLoadingIsCleared() {
	id := s.start(wizard.EntryPlain)
	_, err := s.service.Update(s.ctx, id, func(store *wizard.Store) error {
		store.StartLoading(time.Now())
		return nil
	})
	s.Require().NoError(err)

	_, err = s.service.Previous(s.ctx, id)
	s.requireStatus(err, http.StatusConflict)

	s.service.Now = func() time.Time { return time.Now().Add(defaultSubmitTimeout) }

	state, err := s.service.Previous(s.ctx, id)
	s.Require().NoError(err)
	s.False(state.IsLoading)
	s.Require().NotNil(state.Error)
	s.Equal(msgInterrupted, state.Error.Message)
}

func (s *SessionSuite) TestSubmittedDraftIsFrozen() {
	id := s.start(wizard.EntryPlain)
	_, err := s.service.Update(s.ctx, id, func(store *wizard.Store) error {
		store.JumpTo(wizard.Form(wizard.StepReview))
		return store.AssignRegistrationID("FC-0002")
	})
	s.Require().NoError(err)

	_, err = s.service.Previous(s.ctx, id)
	s.requireStatus(err, http.StatusConflict)

	state, err := s.service.Reset(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(state.Data.RegistrationID)

	_, err = s.service.SubmitPersonalInfo(s.ctx, id, personalInfo())
	s.Require().NoError(err)
}
