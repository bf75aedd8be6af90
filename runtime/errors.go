// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import "errors"

var (
	ErrUnknownProgram     = errors.New("unknown program")
	ErrDuplicateProgram   = errors.New("duplicate program")
	ErrUnknownFunction    = errors.New("unknown function")
	ErrDuplicateFunction  = errors.New("duplicate function")
	ErrNotConstructor     = errors.New("function is not a constructor")
	ErrNotMessage         = errors.New("function is not a message")
	ErrParamsTooLarge     = errors.New("params too large")
	ErrResultTooLarge     = errors.New("result too large")
	ErrInvalidParams      = errors.New("invalid params")
	ErrInvalidResult      = errors.New("invalid result")
	ErrProgramNotDeployed = errors.New("program not deployed")
	ErrProgramPanic       = errors.New("program panicked")

	ErrAlreadyInstantiated = errors.New("program already instantiated")
)
