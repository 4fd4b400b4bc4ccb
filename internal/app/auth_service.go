package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"ewha-quiz-service/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	ExistsByEmailOrNickname(ctx context.Context, email, nickname string) (bool, error)
	MarkVerified(ctx context.Context, userID int64) error
	// WithTx runs fn against a store bound to one transaction, committing when fn
	// returns nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx UserStore) error) error
}

// Mailer delivers account verification links.
type Mailer interface {
	SendVerification(ctx context.Context, to, link string) error
}

// AuthConfig holds the registration policy.
type AuthConfig struct {
	AllowedEmailDomains     []string
	RegisterSecret          string
	BcryptCost              int
	VerifyBaseURL           string
	AutoVerifyOnMailFailure bool
}

type RegisterInput struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	Nickname   string `json:"nickname" binding:"required,max=100"`
	SecretWord string `json:"secretWord" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthService handles registration, email verification and login.
type AuthService struct {
	users  UserStore
	mailer Mailer
	tokens *TokenIssuer
	cfg    AuthConfig
}

func NewAuthService(users UserStore, mailer Mailer, tokens *TokenIssuer, cfg AuthConfig) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, mailer: mailer, tokens: tokens, cfg: cfg}
}

// Register creates an unverified account and mails a verification link. The user
// row and the mail attempt share one transaction: if the mail cannot be sent the
// account is rolled back, unless AutoVerifyOnMailFailure is set, in which case it
// is activated immediately.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	email := normalizeEmail(input.Email)
	nickname := strings.TrimSpace(input.Nickname)
	if email == "" || input.Password == "" || nickname == "" || input.SecretWord == "" {
		return domain.ErrMissingFields
	}
	if !s.allowedEmail(email) {
		return domain.ErrEmailDomain
	}
	if subtle.ConstantTimeCompare([]byte(input.SecretWord), []byte(s.cfg.RegisterSecret)) != 1 {
		return domain.ErrSecretWord
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.users.WithTx(ctx, func(tx UserStore) error {
		taken, err := tx.ExistsByEmailOrNickname(ctx, email, nickname)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrConflict
		}

		user := &domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Nickname:     nickname,
		}
		if err := tx.Create(ctx, user); err != nil {
			return err
		}

		token, err := s.tokens.IssueVerification(user.ID)
		if err != nil {
			return fmt.Errorf("sign verification token: %w", err)
		}
		link := s.cfg.VerifyBaseURL + "?token=" + url.QueryEscape(token)

		if err := s.mailer.SendVerification(ctx, email, link); err != nil {
			if !s.cfg.AutoVerifyOnMailFailure {
				return fmt.Errorf("send verification mail: %w", err)
			}
			log.Warn().Err(err).Str("email", email).Msg("verification mail failed, activating account")
			return tx.MarkVerified(ctx, user.ID)
		}
		log.Info().Str("email", email).Msg("verification mail sent")
		return nil
	})
}

// Verify activates the account named by a verification token.
func (s *AuthService) Verify(ctx context.Context, token string) error {
	userID, err := s.tokens.ParseVerification(token)
	if err != nil {
		return err
	}
	if err := s.users.MarkVerified(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidToken
		}
		return err
	}
	return nil
}

// Login checks credentials and returns a signed access token. The password is
// checked before the verification flag so unverified status is only revealed to
// the account owner.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (string, error) {
	if input.Email == "" || input.Password == "" {
		return "", domain.ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}
	if !user.Verified {
		return "", domain.ErrNotVerified
	}

	token, err := s.tokens.IssueAccess(user)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// Authenticate validates an access token.
func (s *AuthService) Authenticate(token string) (AccessClaims, error) {
	return s.tokens.ParseAccess(token)
}

// normalizeEmail is applied before every store lookup; stores compare emails exactly.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) allowedEmail(email string) bool {
	for _, suffix := range s.cfg.AllowedEmailDomains {
		if strings.HasSuffix(email, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}
