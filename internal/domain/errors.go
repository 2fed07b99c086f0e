// Package domain contains the core business entities for Planwerk.
package domain

import "errors"

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (file I/O, network, etc.).

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same email exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProjectNotFound indicates the requested project does not exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrProjectNameEmpty indicates a project was created without a name.
	ErrProjectNameEmpty = errors.New("project name must not be empty")

	// ErrSelfDemotion indicates an administrator tried to remove their own
	// admin flag.
	ErrSelfDemotion = errors.New("administrators cannot revoke their own admin status")

	// ErrUnknownSettingsCategory indicates a settings write used a category
	// the application does not know.
	ErrUnknownSettingsCategory = errors.New("unknown settings category")
)
