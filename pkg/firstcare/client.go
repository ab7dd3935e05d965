// Package firstcare is the client for the Firstcare backend REST API and the
// agent directory.
package firstcare

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/config"
	"github.com/Jidetireni/firstcare-registration/internal/dto"
	"github.com/go-resty/resty/v2"
)

type Client struct {
	api    *resty.Client
	agents *resty.Client
}

func New(cfg *config.Config) *Client {
	return NewWithURLs(cfg.Backend.URL, cfg.Backend.AgentAPIURL, cfg.Backend.Timeout)
}

func NewWithURLs(baseURL, agentURL string, timeout time.Duration) *Client {
	if agentURL == "" {
		agentURL = baseURL
	}
	return &Client{
		api:    newRestyClient(baseURL, timeout),
		agents: newRestyClient(agentURL, timeout),
	}
}

func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
}

func (c *Client) Register(ctx context.Context, req dto.RegistrationRequest) (*UserResponse, error) {
	var out UserResponse
	resp, err := c.api.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/register")
	if err := check(resp, err, fallbackRegister); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadPhoto sends the photo as the multipart field "file". It must only be
// called once the registration exists.
func (c *Client) UploadPhoto(ctx context.Context, registrationID, filename, contentType string, content []byte) (*UploadPhotoResponse, error) {
	var out UploadPhotoResponse
	resp, err := c.api.R().
		SetContext(ctx).
		SetPathParam("id", registrationID).
		SetMultipartField("file", filename, contentType, bytes.NewReader(content)).
		SetResult(&out).
		Post("/api/upload-photo/{id}")
	if err := check(resp, err, fallbackUploadPhoto); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, registrationID string) (*UserResponse, error) {
	var out UserResponse
	resp, err := c.api.R().
		SetContext(ctx).
		SetPathParam("id", registrationID).
		SetResult(&out).
		Get("/api/user/{id}")
	if err := check(resp, err, fallbackGetUser); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]UserResponse, error) {
	var out []UserResponse
	resp, err := c.api.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/users")
	if err := check(resp, err, fallbackListUsers); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdatePayment(ctx context.Context, req PaymentRequest) (*MessageResponse, error) {
	var out MessageResponse
	resp, err := c.api.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/payment")
	if err := check(resp, err, fallbackPayment); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) QRData(ctx context.Context, registrationID string) (*QRData, error) {
	var out QRData
	resp, err := c.api.R().
		SetContext(ctx).
		SetPathParam("id", registrationID).
		SetResult(&out).
		Get("/api/qr-data/{id}")
	if err := check(resp, err, fallbackQRData); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateCard returns the PDF membership card.
func (c *Client) GenerateCard(ctx context.Context, registrationID string) ([]byte, error) {
	resp, err := c.api.R().
		SetContext(ctx).
		SetPathParam("id", registrationID).
		SetHeader("Accept", "application/pdf").
		Get("/api/generate-card/{id}")
	if err := check(resp, err, fallbackGenerateCard); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// ValidateAgentCode looks the code up in the agent directory. Unknown codes
// return ErrAgentNotFound.
func (c *Client) ValidateAgentCode(ctx context.Context, code string) (*AgentInfo, error) {
	var out AgentInfo
	resp, err := c.agents.R().
		SetContext(ctx).
		SetPathParam("code", code).
		SetResult(&out).
		Get("/api/validate-agent-code/{code}")
	if err == nil && resp != nil {
		switch resp.StatusCode() {
		case http.StatusNotFound, http.StatusBadRequest:
			return nil, ErrAgentNotFound
		}
	}
	if err := check(resp, err, fallbackAgentCode); err != nil {
		return nil, err
	}
	return &out, nil
}

// check turns a transport failure or non-2xx response into an *APIError,
// preferring the backend's detail over the fallback message.
func check(resp *resty.Response, err error, fallback string) error {
	if err != nil {
		return &APIError{Status: http.StatusBadGateway, Message: fallback, cause: err}
	}
	if !resp.IsError() {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode(), Message: fallback}

	var body errorBody
	if json.Unmarshal(resp.Body(), &body) != nil || len(body.Detail) == 0 {
		return apiErr
	}

	var detail string
	if json.Unmarshal(body.Detail, &detail) == nil {
		if detail != "" {
			apiErr.Message = detail
		}
		return apiErr
	}

	var items []DetailItem
	if json.Unmarshal(body.Detail, &items) == nil {
		apiErr.Details = items
	}
	return apiErr
}
