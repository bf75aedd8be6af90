// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import "errors"

var (
	ErrInvalidConfigFormat    = errors.New("invalid config format")
	ErrInvalidPlan            = errors.New("invalid plan")
	ErrInvalidStep            = errors.New("invalid step")
	ErrInvalidEndpoint        = errors.New("invalid endpoint")
	ErrInvalidParamType       = errors.New("invalid param type")
	ErrInvalidParam           = errors.New("invalid param")
	ErrInvalidOperator        = errors.New("invalid operator")
	ErrFailedParamTypeCast    = errors.New("failed to cast param type")
	ErrFirstParamRequiredID   = errors.New("first param must be id")
	ErrFirstParamRequiredName = errors.New("first params must be program and constructor names")
	ErrDuplicateKeyName       = errors.New("duplicate key name")
	ErrNamedKeyNotFound       = errors.New("named key not found")
	ErrUnknownStepID          = errors.New("unknown step id")
	ErrResultAssertionFailed  = errors.New("result assertion failed")
	ErrMissingCallerKey       = errors.New("no caller key")
	ErrInputEmpty             = errors.New("input is empty")
)
