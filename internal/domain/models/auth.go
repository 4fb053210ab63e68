package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the JWT claims the back office issues to operators.
// Subject carries the operator id recorded as created_by / deleted_by
// on mutated records.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}
