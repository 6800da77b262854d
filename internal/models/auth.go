package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest holds the registration payload.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// RegisterResponse confirms account creation. Registration never logs the
// new account in.
type RegisterResponse struct {
	Message string   `json:"message"`
	User    UserInfo `json:"user"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and account info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// JWTClaims represents the JWT payload for access tokens. UserID doubles as
// the record-store scope for every authenticated request.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
