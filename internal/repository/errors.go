// Package repository contains data access logic for the project
// tracker.  This file defines sentinel errors reused across multiple
// repositories so that handlers can map failure scenarios onto HTTP
// status codes without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering a user whose email is
// already taken.  Handlers should translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers should translate this into
// HTTP 403.
var ErrForbidden = errors.New("forbidden")
