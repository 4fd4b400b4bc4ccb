package app

import (
	"fmt"
	"strconv"
	"time"

	"ewha-quiz-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const (
	audienceAccess = "access"
	audienceVerify = "verify"
)

// AccessClaims identify the caller of an authenticated request.
type AccessClaims struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens for login sessions and email
// verification links. The two kinds carry different audiences and are not
// interchangeable.
type TokenIssuer struct {
	secret    []byte
	accessTTL time.Duration
	verifyTTL time.Duration
	now       func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, verifyTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		verifyTTL: verifyTTL,
		now:       time.Now,
	}
}

// IssueAccess signs a login token for user.
func (t *TokenIssuer) IssueAccess(user domain.User) (string, error) {
	now := t.now()
	claims := AccessClaims{
		ID:       user.ID,
		Nickname: user.Nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Audience:  jwt.ClaimStrings{audienceAccess},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// ParseAccess validates a login token and returns its claims.
func (t *TokenIssuer) ParseAccess(tokenString string) (AccessClaims, error) {
	var claims AccessClaims
	if err := t.parse(tokenString, &claims, audienceAccess); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

// IssueVerification signs an email verification token for userID.
func (t *TokenIssuer) IssueVerification(userID int64) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Audience:  jwt.ClaimStrings{audienceVerify},
		ExpiresAt: jwt.NewNumericDate(now.Add(t.verifyTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// ParseVerification validates a verification token and returns the user id it was issued for.
func (t *TokenIssuer) ParseVerification(tokenString string) (int64, error) {
	var claims jwt.RegisteredClaims
	if err := t.parse(tokenString, &claims, audienceVerify); err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("subject %q: %w", claims.Subject, domain.ErrInvalidToken)
	}
	return id, nil
}

func (t *TokenIssuer) parse(tokenString string, claims jwt.Claims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return domain.ErrInvalidToken
	}
	return nil
}
