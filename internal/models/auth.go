package models

import "github.com/golang-jwt/jwt/v5"

// UserRole describes the caller's role within a school.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
)

// JWTClaims carries the resolved tenant and caller identity. Identity
// resolution happens upstream; this service only trusts the signed claims.
type JWTClaims struct {
	UserID    string   `json:"uid"`
	SchoolID  string   `json:"school_id"`
	TeacherID string   `json:"teacher_id,omitempty"`
	Role      UserRole `json:"role"`
	jwt.RegisteredClaims
}
