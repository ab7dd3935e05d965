package token

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookieName = "wizard_session"
	Issuer            = "firstcare-registration"
)

type CreateTokenParams struct {
	SessionID uuid.UUID
	Mode      string
	Duration  time.Duration
}
