// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package auth

import (
	"context"
	"time"
)

// UserRepository is the persistence contract for user accounts.
type UserRepository interface {
	// Create persists a new user. Duplicate username or email surfaces
	// as a Conflict error.
	Create(ctx context.Context, user *User) error

	// FindByEmail resolves a user by email, or NotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername resolves a user by username, or NotFound.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByID resolves a user by ID, or NotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// TouchLastLogin records a successful authentication.
	TouchLastLogin(ctx context.Context, userID string) error
}

// ResetTokenRepository stores short-lived password reset tokens.
type ResetTokenRepository interface {
	// Set stores a reset token with its associated userID and TTL.
	Set(ctx context.Context, token, userID string, ttl time.Duration) error

	// Get retrieves the userID for a token, or NotFound when absent
	// or expired.
	Get(ctx context.Context, token string) (string, error)

	// Delete removes the token.
	Delete(ctx context.Context, token string) error
}
