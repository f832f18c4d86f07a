package errors

import "errors"

var ErrNotFound = errors.New("record not found")
var ErrConflict = errors.New("record already exists")
var ErrUnauthorized = errors.New("user is not authorized")
var ErrForbidden = errors.New("operation is forbidden for user")
var ErrValidation = errors.New("invalid input")
