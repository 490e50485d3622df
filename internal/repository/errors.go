package repository

import "errors"

var (
	ErrChangeNotFound = errors.New("change not found")
	ErrUserNotFound   = errors.New("user not found")
)
