package firstcare

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrAgentNotFound = errors.New("firstcare: agent code not found")

const (
	fallbackRegister     = "Registration failed. Please try again."
	fallbackUploadPhoto  = "Photo upload failed. Please try again."
	fallbackGetUser      = "User not found."
	fallbackListUsers    = "Failed to fetch users."
	fallbackPayment      = "Payment update failed. Please try again."
	fallbackGenerateCard = "Card generation failed. Please try again."
	fallbackQRData       = "QR data not found."
	fallbackAgentCode    = "Invalid agent code"
)

type UserResponse struct {
	ID                  int       `json:"id"`
	RegistrationID      string    `json:"registration_id"`
	FirstName           string    `json:"first_name"`
	MiddleName          *string   `json:"middle_name"`
	LastName            string    `json:"last_name"`
	DateOfBirth         string    `json:"date_of_birth"`
	Sex                 string    `json:"sex"`
	PhoneNumber         string    `json:"phone_number"`
	NIN                 string    `json:"nin"`
	MembershipStatus    string    `json:"membership_status"`
	RegistrationFeePaid bool      `json:"registration_fee_paid"`
	CreatedAt           Timestamp `json:"created_at"`
}

type UploadPhotoResponse struct {
	Message  string `json:"message"`
	FilePath string `json:"file_path"`
}

type PaymentRequest struct {
	RegistrationID string `json:"registration_id"`
	Amount         int64  `json:"amount"`
	PaymentType    string `json:"payment_type"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type PaymentStatus struct {
	RegistrationFeePaid bool    `json:"registration_fee_paid"`
	DailyDuesBalance    float64 `json:"daily_dues_balance"`
}

type QRData struct {
	RegistrationID string        `json:"registration_id"`
	Name           string        `json:"name"`
	Phone          string        `json:"phone"`
	Status         string        `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	IssueDate      string        `json:"issue_date"`
	Zone           string        `json:"zone"`
	Unit           string        `json:"unit"`
}

type AgentInfo struct {
	AgentName string `json:"agent_name"`
	Zone      string `json:"zone"`
	LGA       string `json:"lga"`
}

// Timestamp accepts the naive ISO timestamps the backend emits as well as
// RFC 3339.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("firstcare: unrecognised timestamp %q", s)
}

type DetailItem struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

func (d DetailItem) Field() string {
	parts := make([]string, 0, len(d.Loc))
	for _, p := range d.Loc {
		parts = append(parts, fmt.Sprint(p))
	}
	return strings.Join(parts, ".")
}

// errorBody is the backend's error envelope; detail is either a string or a
// list of validation items.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// APIError is a failed backend call. Message is safe to show to the user;
// Error also carries the transport failure for logs.
type APIError struct {
	Status  int
	Message string
	Details []DetailItem

	cause error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}
