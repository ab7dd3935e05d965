package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims identify one wizard session.
type SessionClaims struct {
	SessionID uuid.UUID `json:"sid"`
	Mode      string    `json:"mode"`
	jwt.RegisteredClaims
}

func newSessionClaims(params *CreateTokenParams) (*SessionClaims, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &SessionClaims{
		SessionID: params.SessionID,
		Mode:      params.Mode,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Issuer:    Issuer,
			Subject:   params.SessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(params.Duration)),
		},
	}, nil
}
