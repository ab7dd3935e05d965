package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Jidetireni/firstcare-registration/factory"
	"github.com/Jidetireni/firstcare-registration/internal/config"
	"github.com/Jidetireni/firstcare-registration/internal/constants"
	"github.com/Jidetireni/firstcare-registration/internal/middleware"
	"github.com/Jidetireni/firstcare-registration/internal/repository"
	"github.com/Jidetireni/firstcare-registration/internal/services/sessions"
	"github.com/Jidetireni/firstcare-registration/internal/validation"
	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"github.com/Jidetireni/firstcare-registration/pkg/metrics"
	"github.com/Jidetireni/firstcare-registration/pkg/token"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type response struct {
	Data    json.RawMessage `json:"data"`
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type state struct {
	CurrentStep int `json:"current_step"`
	Data        struct {
		FirstName    string `json:"first_name"`
		HasPhoto     bool   `json:"has_photo"`
		PhotoPreview string `json:"photo_preview"`
	} `json:"data"`
}

type HandlersSuite struct {
	suite.Suite
	server *httptest.Server
	router http.Handler
	token  string
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	v, err := validation.New()
	s.Require().NoError(err)

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		Wizard: config.WizardConfig{EntryMode: "plain", SessionTTL: time.Hour},
		IsDev:  true,
	}
	log := logger.Nop()
	sessionService := sessions.New(cfg, repository.NewMemorySessionRepository(), token.NewJwt("secret"), v,
		metrics.New(prometheus.NewRegistry()), log)

	f := &factory.Factory{
		Logger:     log,
		Validator:  v,
		Services:   &factory.Services{Session: sessionService},
		Middleware: middleware.New(cfg, sessionService, log),
	}
	h := NewHandlers(f, cfg, v)

	r := chi.NewRouter()
	r.Get("/constants", h.Constants)
	r.Post("/wizard", h.StartWizard)
	r.Group(func(r chi.Router) {
		r.Use(f.Middleware.RequireSession)
		r.Get("/wizard", h.WizardState)
		r.Post("/wizard/personal-info", h.SubmitPersonalInfo)
		r.Put("/wizard/photo", h.UploadPhoto)
		r.Delete("/wizard/photo", h.RemovePhoto)
		r.Post("/wizard/photo/continue", h.ContinueFromPhoto)
	})

	s.router = r
	s.server = httptest.NewServer(r)
	s.T().Cleanup(s.server.Close)

	res := s.do(http.MethodPost, "/wizard", nil, "")
	s.Require().Equal(http.StatusCreated, res.Status)
	var session struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(res.Data, &session))
	s.token = session.Token
}

func (s *HandlersSuite) do(method, path string, body any, contentType string) response {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var out response
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	s.Require().Equal(resp.StatusCode, out.Status)
	return out
}

func (s *HandlersSuite) state() state {
	res := s.do(http.MethodGet, "/wizard", nil, "")
	s.Require().Equal(http.StatusOK, res.Status)
	var st state
	s.Require().NoError(json.Unmarshal(res.Data, &st))
	return st
}

func personalInfo(firstName string) map[string]string {
	return map[string]string{
		"first_name":    firstName,
		"last_name":     "Bello",
		"date_of_birth": "1990-01-01",
		"sex":           "F",
		"phone_number":  "08012345678",
		"nin":           "12345678901",
	}
}

func (s *HandlersSuite) TestInvalidPersonalInfoKeepsState() {
	res := s.do(http.MethodPost, "/wizard/personal-info", personalInfo("A"), "")
	s.Equal(http.StatusBadRequest, res.Status)
	s.Equal("Input validation failed", res.Message)
	s.Require().Len(res.Errors, 1)
	s.Equal("first_name", res.Errors[0].Field)

	st := s.state()
	s.Equal(1, st.CurrentStep)
	s.Empty(st.Data.FirstName)
}

func (s *HandlersSuite) TestUnknownFieldsAreRejected() {
	body := personalInfo("Amina")
	body["registration_id"] = "FC-0001"

	res := s.do(http.MethodPost, "/wizard/personal-info", body, "")
	s.Equal(http.StatusBadRequest, res.Status)
	s.Equal(1, s.state().CurrentStep)
}

func photoForm(s *HandlersSuite, field, filename string, content []byte) ([]byte, string) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	s.Require().NoError(err)
	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())
	return body.Bytes(), mw.FormDataContentType()
}

func (s *HandlersSuite) uploadPhoto(field, filename string, content []byte) response {
	body, contentType := photoForm(s, field, filename, content)
	return s.do(http.MethodPut, "/wizard/photo", body, contentType)
}

func (s *HandlersSuite) TestPersonalInfoThenPhoto() {
	res := s.do(http.MethodPost, "/wizard/personal-info", personalInfo("Amina"), "")
	s.Require().Equal(http.StatusOK, res.Status)

	res = s.uploadPhoto("file", "me.png", pngBytes)
	s.Require().Equal(http.StatusOK, res.Status)

	st := s.state()
	s.Equal(2, st.CurrentStep)
	s.Equal("Amina", st.Data.FirstName)
	s.True(st.Data.HasPhoto)
	s.Contains(st.Data.PhotoPreview, "data:image/png;base64,")
}

func (s *HandlersSuite) TestRequiresSession() {
	s.token = ""
	res := s.do(http.MethodGet, "/wizard", nil, "")
	s.Equal(http.StatusUnauthorized, res.Status)
}

func (s *HandlersSuite) TestConstants() {
	res := s.do(http.MethodGet, "/constants", nil, "")
	s.Require().Equal(http.StatusOK, res.Status)

	var c struct {
		RegistrationFee int64    `json:"registration_fee"`
		LGAs            []string `json:"lgas"`
		Zones           []string `json:"zones"`
	}
	s.Require().NoError(json.Unmarshal(res.Data, &c))
	s.Equal(int64(6000), c.RegistrationFee)
	s.Len(c.LGAs, 23)
	s.Len(c.Zones, 3)
}

func (s *HandlersSuite) TestPhotoUploadRejections() {
	res := s.do(http.MethodPost, "/wizard/personal-info", personalInfo("Amina"), "")
	s.Require().Equal(http.StatusOK, res.Status)

	s.Run("missing file field", func() {
		res := s.uploadPhoto("photo", "me.png", pngBytes)
		s.Equal(http.StatusBadRequest, res.Status)
		s.Contains(res.Message, `"file"`)
	})

	s.Run("empty file", func() {
		res := s.uploadPhoto("file", "me.png", nil)
		s.Equal(http.StatusBadRequest, res.Status)
		s.Require().Len(res.Errors, 1)
		s.Equal("photo", res.Errors[0].Field)
	})

	s.Run("text file", func() {
		res := s.uploadPhoto("file", "me.png", []byte("definitely not an image"))
		s.Equal(http.StatusBadRequest, res.Status)
		s.Require().Len(res.Errors, 1)
		s.Equal("photo", res.Errors[0].Field)
	})

	s.Run("photo over the service limit", func() {
		content := append(append([]byte{}, pngBytes...), make([]byte, constants.MaxPhotoSize)...)
		res := s.uploadPhoto("file", "big.png", content)
		s.Equal(http.StatusRequestEntityTooLarge, res.Status)
	})

	s.Run("body over the request limit", func() {
		body, contentType := photoForm(s, "file", "huge.png", make([]byte, constants.MaxPhotoSize+maxBodyBytes+1))
		req := httptest.NewRequest(http.MethodPut, "/wizard/photo", bytes.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+s.token)
		rec := httptest.NewRecorder()

		s.router.ServeHTTP(rec, req)

		s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
		var out response
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
		s.Equal("Photo is too large", out.Message)
	})

	st := s.state()
	s.Equal(2, st.CurrentStep)
	s.False(st.Data.HasPhoto)
}

func (s *HandlersSuite) TestRemovePhotoAndContinue() {
	res := s.do(http.MethodPost, "/wizard/personal-info", personalInfo("Amina"), "")
	s.Require().Equal(http.StatusOK, res.Status)
	res = s.uploadPhoto("file", "me.png", pngBytes)
	s.Require().Equal(http.StatusOK, res.Status)

	res = s.do(http.MethodDelete, "/wizard/photo", nil, "")
	s.Require().Equal(http.StatusOK, res.Status)
	st := s.state()
	s.False(st.Data.HasPhoto)
	s.Empty(st.Data.PhotoPreview)

	res = s.do(http.MethodPost, "/wizard/photo/continue", nil, "")
	s.Equal(http.StatusBadRequest, res.Status)
	s.Require().Len(res.Errors, 1)
	s.Equal("photo", res.Errors[0].Field)
	s.Equal(2, s.state().CurrentStep)

	res = s.uploadPhoto("file", "me.png", pngBytes)
	s.Require().Equal(http.StatusOK, res.Status)
	res = s.do(http.MethodPost, "/wizard/photo/continue", nil, "")
	s.Require().Equal(http.StatusOK, res.Status)
	s.Equal(3, s.state().CurrentStep)
}
