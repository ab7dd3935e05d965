package repository

import (
	"database/sql"
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/constants"
	"github.com/Jidetireni/firstcare-registration/internal/dto"
	"github.com/google/uuid"
)

type Submission struct {
	ID             uuid.UUID      `json:"id"`
	RegistrationID string         `json:"registration_id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	PhoneNumber    string         `json:"phone_number"`
	NINHash        string         `json:"nin_hash"`
	Zone           string         `json:"zone"`
	LGA            string         `json:"lga"`
	Unit           string         `json:"unit"`
	AgentCode      sql.NullString `json:"agent_code"`
	PhotoUploaded  bool           `json:"photo_uploaded"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type Payment struct {
	ID             uuid.UUID             `json:"id"`
	RegistrationID string                `json:"registration_id"`
	PaymentType    constants.PaymentType `json:"payment_type"`
	Amount         int64                 `json:"amount"`
	Reference      string                `json:"reference"`
	CreatedAt      time.Time             `json:"created_at"`
}

func (s *Submission) ToDTO() *dto.Submission {
	return &dto.Submission{
		ID:             s.ID,
		RegistrationID: s.RegistrationID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		PhoneNumber:    s.PhoneNumber,
		Zone:           s.Zone,
		LGA:            s.LGA,
		Unit:           s.Unit,
		AgentCode:      s.AgentCode.String,
		PhotoUploaded:  s.PhotoUploaded,
		CreatedAt:      s.CreatedAt,
	}
}

func (p *Payment) ToDTO() *dto.Payment {
	return &dto.Payment{
		ID:             p.ID,
		RegistrationID: p.RegistrationID,
		PaymentType:    p.PaymentType,
		Amount:         p.Amount,
		Reference:      p.Reference,
		CreatedAt:      p.CreatedAt,
	}
}
