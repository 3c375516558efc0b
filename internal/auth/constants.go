// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package auth

// # Authentication Constraints

const (
	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32

	// MinPasswordLength is the smallest accepted password.
	MinPasswordLength = 8

	// MinUsernameLength keeps usernames readable as creator labels on units.
	MinUsernameLength = 3
)
