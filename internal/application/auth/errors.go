package auth

import "errors"

var ErrMissingRefreshToken = errors.New("refresh token missing")
