package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypePurpose = "purpose"
)

// TokenManager signs and verifies every token the backend hands out. All
// tokens share one HMAC secret; PreviousSecret is verify-only so the signing
// key can rotate without cutting off tokens issued before the switch.
type TokenManager struct {
	Secret          []byte
	PreviousSecret  []byte
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	PurposeTokenTTL time.Duration
}

type IdentityClaims struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// PurposeClaims carries a verification challenge on the client instead of in
// the store: the hash of the one-time code plus whatever the flow needs to
// bind (target email, new phone number). The raw code never enters the token.
type PurposeClaims struct {
	Email     string            `json:"email"`
	Purpose   string            `json:"purpose"`
	CodeHash  string            `json:"code_hash"`
	Payload   map[string]string `json:"payload,omitempty"`
	TokenType string            `json:"typ"`
	jwt.RegisteredClaims
}

func (m TokenManager) IssueAccessToken(userID, email, username, role string) (string, time.Duration, error) {
	ttl := m.AccessTokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return m.signIdentity(userID, email, username, role, TokenTypeAccess, ttl)
}

func (m TokenManager) IssueRefreshToken(userID, email, username, role string) (string, time.Duration, error) {
	ttl := m.RefreshTokenTTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	return m.signIdentity(userID, email, username, role, TokenTypeRefresh, ttl)
}

func (m TokenManager) signIdentity(userID, email, username, role, tokenType string, ttl time.Duration) (string, time.Duration, error) {
	now := time.Now()
	claims := IdentityClaims{
		Email:     email,
		Username:  username,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return "", 0, err
	}
	return signed, ttl, nil
}

func (m TokenManager) ParseIdentityToken(tokenString string, wantType string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != wantType {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (m TokenManager) IssuePurposeToken(userID, email, purpose, codeHash string, payload map[string]string) (string, time.Duration, error) {
	ttl := m.PurposeTokenTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	now := time.Now()
	claims := PurposeClaims{
		Email:     email,
		Purpose:   purpose,
		CodeHash:  codeHash,
		Payload:   payload,
		TokenType: TokenTypePurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.Secret)
	if err != nil {
		return "", 0, err
	}
	return signed, ttl, nil
}

func (m TokenManager) ParsePurposeToken(tokenString string, wantPurpose string) (*PurposeClaims, error) {
	claims := &PurposeClaims{}
	if err := m.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypePurpose || claims.Purpose != wantPurpose {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (m TokenManager) parse(tokenString string, claims jwt.Claims) error {
	err := m.parseWithKey(tokenString, claims, m.Secret)
	if errors.Is(err, ErrTokenInvalid) && len(m.PreviousSecret) > 0 {
		err = m.parseWithKey(tokenString, claims, m.PreviousSecret)
	}
	return err
}

func (m TokenManager) parseWithKey(tokenString string, claims jwt.Claims, key []byte) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return key, nil
	})
	switch {
	case err == nil && parsed.Valid:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenInvalid
	}
}
