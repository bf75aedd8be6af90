// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import "errors"

var ErrInvalidAuth = errors.New("invalid auth")
