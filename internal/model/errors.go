package model

import "errors"

// ErrInvalidAddress is shared by every package that checks address syntax.
var ErrInvalidAddress = errors.New("invalid address")
