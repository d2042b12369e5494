package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the roles understood by the admin API.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleViewer UserRole = "VIEWER"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// IssueTokenRequest describes an operator token to mint.
type IssueTokenRequest struct {
	Subject string   `json:"subject" validate:"required"`
	Role    UserRole `json:"role" validate:"required,oneof=ADMIN VIEWER"`
}

// JWTClaims represents the JWT payload for operator tokens.
type JWTClaims struct {
	Role UserRole `json:"role"`
	jwt.RegisteredClaims
}
