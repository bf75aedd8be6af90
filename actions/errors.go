// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "errors"

var (
	ErrProgramExists       = errors.New("program already exists")
	ErrMissingProgram      = errors.New("program name is empty")
	ErrMissingFunction     = errors.New("function name is empty")
	ErrUnknownAction       = errors.New("unknown action")
	ErrUnsupportedType     = errors.New("unsupported parameter type")
	ErrFailedParamTypeCast = errors.New("failed to cast parameter value")
	ErrOutOfRange          = errors.New("parameter value out of range")
	ErrMissingAuth         = errors.New("transaction is not signed")
)
