package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/studata-api/internal/models"
	appErrors "github.com/noah-isme/studata-api/pkg/errors"
)

type identityRepository interface {
	LoadUsers(ctx context.Context) ([]models.User, bool, error)
	SaveUsers(ctx context.Context, users []models.User) error
	LoadSession(ctx context.Context) (*models.User, error)
	SaveSession(ctx context.Context, user *models.User) error
	ClearSession(ctx context.Context) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string

	// Account seeded when the roster slot does not exist yet.
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// AuthService provides registration, login and session use cases over the
// persisted roster. Secrets are compared in plain form; hashing is an
// explicit non-goal of this deployment.
type AuthService struct {
	repo      identityRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo identityRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config, now: func() time.Time { return time.Now().UTC() }}
}

// Seed creates the default administrative account on first run. It runs only
// when the roster slot is absent entirely: a present roster, even an empty
// one, is never re-seeded.
func (s *AuthService) Seed(ctx context.Context) error {
	_, found, err := s.repo.LoadUsers(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	if found {
		return nil
	}
	if s.config.AdminEmail == "" || s.config.AdminPassword == "" {
		s.logger.Warn("admin seed skipped, credentials not configured")
		return s.repo.SaveUsers(ctx, []models.User{})
	}

	admin := models.User{
		ID:        uuid.NewString(),
		Name:      s.config.AdminName,
		Email:     s.config.AdminEmail,
		Password:  s.config.AdminPassword,
		CreatedAt: s.now(),
	}
	if err := s.repo.SaveUsers(ctx, []models.User{admin}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed admin account")
	}
	s.logger.Info("seeded default admin account", zap.String("email", admin.Email))
	return nil
}

// Register creates a new account. It never logs the account in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	users, _, err := s.repo.LoadUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	for _, user := range users {
		if user.Email == req.Email {
			return nil, appErrors.Clone(appErrors.ErrDuplicateAccount, "user with this email already exists")
		}
	}

	if req.Password != req.ConfirmPassword {
		return nil, appErrors.Clone(appErrors.ErrPasswordMismatch, "passwords do not match")
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		CreatedAt: s.now(),
	}

	users = append(users, user)
	if err := s.repo.SaveUsers(ctx, users); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist roster")
	}

	return &models.RegisterResponse{Message: "Account created successfully", User: user.Info()}, nil
}

// Login authenticates an account, mirrors it into the session slot, and
// issues an access token carrying the account id as record-store scope.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	users, _, err := s.repo.LoadUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	var match *models.User
	for i := range users {
		if users[i].Email == req.Email && users[i].Password == req.Password {
			match = &users[i]
			break
		}
	}
	if match == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if err := s.repo.SaveSession(ctx, match); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}

	accessToken, err := s.generateAccessToken(match)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    s.now(),
		User:        match.Info(),
	}, nil
}

// Logout clears the session slot. Calling it without an active session is a
// no-op.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.repo.ClearSession(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	return nil
}

// CurrentSession returns the mirrored session account, or nil when no
// session is active. It has no side effects.
func (s *AuthService) CurrentSession(ctx context.Context) (*models.UserInfo, error) {
	user, err := s.repo.LoadSession(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if user == nil {
		return nil, nil
	}
	info := user.Info()
	return &info, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}
