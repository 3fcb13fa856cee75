package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nurpe/freelance-ledger/internal/model"
)

type claims struct {
	ProfileID int64  `json:"profile_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Parser validates HMAC-signed access tokens and extracts the
// principal. The transport layer is the only place identity is
// checked; services trust the principal they are handed.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(tokenString string) (model.Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, err
	}
	if !token.Valid {
		return model.Principal{}, fmt.Errorf("invalid token")
	}
	if c.ProfileID <= 0 {
		return model.Principal{}, fmt.Errorf("token has no profile_id claim")
	}
	role, ok := model.ParseProfileRole(c.Role)
	if !ok {
		return model.Principal{}, fmt.Errorf("token has unknown role %q", c.Role)
	}
	return model.Principal{ProfileID: c.ProfileID, Role: role}, nil
}
