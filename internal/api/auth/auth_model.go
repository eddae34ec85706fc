package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserAuth is the credential-store view of a user. Password hash, token
// version and the stored refresh token never serialize.
type UserAuth struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	TokenVersion   int       `json:"-"`
	RefreshToken   *string   `json:"-"`
	Bio            *string   `json:"bio,omitempty"`
	Location       *string   `json:"location,omitempty"`
	ProfilePicture *string   `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SignUpRequest represents the signup request body.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInRequest represents the signin request body.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest represents the refresh request body.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthPayload is returned by SignUp and SignIn: a fresh token pair plus the
// public user view.
type AuthPayload struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	User         *UserAuth `json:"user"`
}

// RefreshPayload is returned by RefreshAccessToken. Plain refresh re-issues
// the access token only; the refresh token is not rotated.
type RefreshPayload struct {
	AccessToken string `json:"accessToken"`
}

// AccessClaims are the claims carried by access tokens.
type AccessClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// RefreshClaims add the token-version snapshot taken at issuance. A version
// behind the user's stored counter means the token was invalidated by a
// sign-out.
type RefreshClaims struct {
	UserID  string `json:"userId"`
	Version int    `json:"version"`
	jwt.RegisteredClaims
}
