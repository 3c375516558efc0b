// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

/*
Package auth implements the user identity layer.

It defines the User entity and the logic for registration, credential
verification, JWT issuance, and the password-reset flow backed by Redis.

# Architecture

  - Service: Orchestrates business logic (Register, Login, password reset).
  - Repository: Abstracted interfaces for Postgres (users) and Redis (reset tokens).
  - Security: Bcrypt password hashing and RSA-signed JWTs from the sec package.
*/
package auth

import (
	"time"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/sec"
)

// # Domain Entities

// User represents a registered storyteller account.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	IsActive     bool         `json:"is_active"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// # Field Identifiers

// Field names used in validation and response mapping for this domain.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldLogin       = "login"
	FieldToken       = "token"
	FieldNewPassword = "new_password"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
	FieldMessage     = "message"
)
