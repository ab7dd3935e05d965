package dto

import (
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/constants"
	"github.com/Jidetireni/firstcare-registration/internal/wizard"
	"github.com/google/uuid"
)

type StartWizardInput struct {
	Mode wizard.EntryMode `json:"mode" validate:"omitempty,oneof=plain agent"`
}

type PersonalInfoInput struct {
	FirstName   string `json:"first_name" validate:"required,min=2,person_name"`
	MiddleName  string `json:"middle_name" validate:"omitempty,person_name"`
	LastName    string `json:"last_name" validate:"required,min=2,person_name"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Sex         string `json:"sex" validate:"required,oneof=M F"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	NIN         string `json:"nin" validate:"required,nin"`
}

type LocationInput struct {
	Address string `json:"address" validate:"required,min=10"`
	State   string `json:"state" validate:"required,eq=Kaduna"`
	LGA     string `json:"lga" validate:"required,lga"`
	Zone    string `json:"zone" validate:"required,zone"`
	Unit    string `json:"unit" validate:"required"`
}

type EmergencyContactInput struct {
	EmergencyContactName    string `json:"emergency_contact_name" validate:"required,min=2"`
	EmergencyContactAddress string `json:"emergency_contact_address" validate:"required,min=10"`
	EmergencyContactPhone   string `json:"emergency_contact_phone" validate:"required,phone"`
}

type BeneficiariesInput struct {
	Beneficiary1Name         string `json:"beneficiary1_name" validate:"required,min=2"`
	Beneficiary1Address      string `json:"beneficiary1_address" validate:"required,min=10"`
	Beneficiary1Phone        string `json:"beneficiary1_phone" validate:"required,phone"`
	Beneficiary1Relationship string `json:"beneficiary1_relationship" validate:"required,relationship"`

	Beneficiary2Name         string `json:"beneficiary2_name" validate:"required_with=Beneficiary2Address Beneficiary2Phone Beneficiary2Relationship,omitempty,min=2"`
	Beneficiary2Address      string `json:"beneficiary2_address" validate:"required_with=Beneficiary2Name Beneficiary2Phone Beneficiary2Relationship,omitempty,min=10"`
	Beneficiary2Phone        string `json:"beneficiary2_phone" validate:"required_with=Beneficiary2Name Beneficiary2Address Beneficiary2Relationship,omitempty,phone"`
	Beneficiary2Relationship string `json:"beneficiary2_relationship" validate:"required_with=Beneficiary2Name Beneficiary2Address Beneficiary2Phone,omitempty,relationship"`
}

type AgentCodeInput struct {
	AgentCode string `json:"agent_code" validate:"required"`
}

// RegistrationRequest is the complete, validated draft sent to the backend.
type RegistrationRequest struct {
	FirstName                string `json:"first_name" validate:"required,min=2,person_name"`
	MiddleName               string `json:"middle_name,omitempty" validate:"omitempty,person_name"`
	LastName                 string `json:"last_name" validate:"required,min=2,person_name"`
	DateOfBirth              string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Sex                      string `json:"sex" validate:"required,oneof=M F"`
	PhoneNumber              string `json:"phone_number" validate:"required,phone"`
	NIN                      string `json:"nin" validate:"required,nin"`
	Address                  string `json:"address" validate:"required,min=10"`
	State                    string `json:"state" validate:"required,eq=Kaduna"`
	LGA                      string `json:"lga" validate:"required,lga"`
	Zone                     string `json:"zone" validate:"required,zone"`
	Unit                     string `json:"unit" validate:"required"`
	EmergencyContactName     string `json:"emergency_contact_name" validate:"required,min=2"`
	EmergencyContactAddress  string `json:"emergency_contact_address" validate:"required,min=10"`
	EmergencyContactPhone    string `json:"emergency_contact_phone" validate:"required,phone"`
	Beneficiary1Name         string `json:"beneficiary1_name" validate:"required,min=2"`
	Beneficiary1Address      string `json:"beneficiary1_address" validate:"required,min=10"`
	Beneficiary1Phone        string `json:"beneficiary1_phone" validate:"required,phone"`
	Beneficiary1Relationship string `json:"beneficiary1_relationship" validate:"required,relationship"`
	Beneficiary2Name         string `json:"beneficiary2_name,omitempty" validate:"required_with=Beneficiary2Address Beneficiary2Phone Beneficiary2Relationship,omitempty,min=2"`
	Beneficiary2Address      string `json:"beneficiary2_address,omitempty" validate:"required_with=Beneficiary2Name Beneficiary2Phone Beneficiary2Relationship,omitempty,min=10"`
	Beneficiary2Phone        string `json:"beneficiary2_phone,omitempty" validate:"required_with=Beneficiary2Name Beneficiary2Address Beneficiary2Relationship,omitempty,phone"`
	Beneficiary2Relationship string `json:"beneficiary2_relationship,omitempty" validate:"required_with=Beneficiary2Name Beneficiary2Address Beneficiary2Phone,omitempty,relationship"`
}

type PaymentInput struct {
	PaymentType constants.PaymentType `json:"payment_type" validate:"required,oneof=registration daily_dues"`
	Amount      int64                 `json:"amount" validate:"omitempty,gt=0"`
}

// WizardState is what clients render from.
type WizardState struct {
	SessionID   uuid.UUID          `json:"session_id"`
	Mode        wizard.EntryMode   `json:"mode"`
	CurrentStep int                `json:"current_step"`
	View        wizard.View        `json:"view"`
	Data        Draft              `json:"data"`
	IsLoading   bool               `json:"is_loading"`
	Error       *wizard.ErrorValue `json:"error"`
}

// Draft is the client-facing draft: the photo bytes are replaced by the
// preview.
type Draft struct {
	FirstName                string `json:"first_name"`
	MiddleName               string `json:"middle_name"`
	LastName                 string `json:"last_name"`
	DateOfBirth              string `json:"date_of_birth"`
	Sex                      string `json:"sex"`
	PhoneNumber              string `json:"phone_number"`
	NIN                      string `json:"nin"`
	Address                  string `json:"address"`
	State                    string `json:"state"`
	LGA                      string `json:"lga"`
	Zone                     string `json:"zone"`
	Unit                     string `json:"unit"`
	HasPhoto                 bool   `json:"has_photo"`
	PhotoPreview             string `json:"photo_preview"`
	EmergencyContactName     string `json:"emergency_contact_name"`
	EmergencyContactAddress  string `json:"emergency_contact_address"`
	EmergencyContactPhone    string `json:"emergency_contact_phone"`
	Beneficiary1Name         string `json:"beneficiary1_name"`
	Beneficiary1Address      string `json:"beneficiary1_address"`
	Beneficiary1Phone        string `json:"beneficiary1_phone"`
	Beneficiary1Relationship string `json:"beneficiary1_relationship"`
	Beneficiary2Name         string `json:"beneficiary2_name"`
	Beneficiary2Address      string `json:"beneficiary2_address"`
	Beneficiary2Phone        string `json:"beneficiary2_phone"`
	Beneficiary2Relationship string `json:"beneficiary2_relationship"`
	AgentCode                string `json:"agent_code,omitempty"`
	AgentName                string `json:"agent_name,omitempty"`
	RegistrationID           string `json:"registration_id,omitempty"`
	RegistrationComplete     bool   `json:"registration_complete"`
	PaymentComplete          bool   `json:"payment_complete"`
}

type WizardSession struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	State     *WizardState `json:"state"`
}

type AgentLookupStatus string

const (
	AgentLookupTooShort AgentLookupStatus = "too_short"
	AgentLookupNotFound AgentLookupStatus = "not_found"
	AgentLookupValid    AgentLookupStatus = "valid"
)

type AgentInfo struct {
	AgentName string `json:"agent_name"`
	Zone      string `json:"zone"`
	LGA       string `json:"lga"`
}

type AgentLookup struct {
	Code   string            `json:"agent_code"`
	Status AgentLookupStatus `json:"status"`
	Agent  *AgentInfo        `json:"agent,omitempty"`
	State  *WizardState      `json:"state"`
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

type Payment struct {
	ID             uuid.UUID             `json:"id"`
	RegistrationID string                `json:"registration_id"`
	PaymentType    constants.PaymentType `json:"payment_type"`
	Amount         int64                 `json:"amount"`
	Reference      string                `json:"reference"`
	CreatedAt      time.Time             `json:"created_at"`
}

type PaymentResult struct {
	Payment *Payment `json:"payment"`
	QRData  *QRData  `json:"qr_data,omitempty"`
}

type Card struct {
	Filename string
	Content  []byte
}

type Submission struct {
	ID             uuid.UUID `json:"id"`
	RegistrationID string    `json:"registration_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	PhoneNumber    string    `json:"phone_number"`
	Zone           string    `json:"zone"`
	LGA            string    `json:"lga"`
	Unit           string    `json:"unit"`
	AgentCode      string    `json:"agent_code,omitempty"`
	PhotoUploaded  bool      `json:"photo_uploaded"`
	CreatedAt      time.Time `json:"created_at"`
}

type SubmissionFilter struct {
	Zone      *string
	LGA       *string
	AgentCode *string
}

// Member is a registration as the backend holds it.
type Member struct {
	ID                  int       `json:"id"`
	RegistrationID      string    `json:"registration_id"`
	FirstName           string    `json:"first_name"`
	MiddleName          string    `json:"middle_name,omitempty"`
	LastName            string    `json:"last_name"`
	DateOfBirth         string    `json:"date_of_birth"`
	Sex                 string    `json:"sex"`
	PhoneNumber         string    `json:"phone_number"`
	MembershipStatus    string    `json:"membership_status"`
	RegistrationFeePaid bool      `json:"registration_fee_paid"`
	CreatedAt           time.Time `json:"created_at"`
}

type Constants struct {
	RegistrationFee    int64              `json:"registration_fee"`
	DailyDue           int64              `json:"daily_due"`
	WorkingDaysPerWeek int                `json:"working_days_per_week"`
	State              string             `json:"state"`
	SexOptions         []constants.Option `json:"sex_options"`
	Zones              []string           `json:"zones"`
	LGAs               []string           `json:"lgas"`
	Relationships      []string           `json:"relationships"`
}

type QueryOptions struct {
	Limit  uint32  `json:"limit"`
	Cursor *string `json:"cursor,omitempty"`
	Sort   *string `json:"sort,omitempty"`
}

type ListResponse[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor"`
}
