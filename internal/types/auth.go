package types

import "github.com/golang-jwt/jwt/v5"

// LoginRequest is the admin panel credential payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session marker for subsequent admin calls.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Claims is the session token payload.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
