// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/state"
)

// Context is the environment handed to every program function. Programs never
// look up their caller or storage from globals, everything arrives here.
type Context struct {
	// Actor is the identity of whoever issued the current invocation.
	Actor codec.Address
	// Program is the account of the program being executed.
	Program codec.Address
	// State is scoped to the program's own storage and buffered for the
	// duration of the call.
	State state.Mutable
	Log   logging.Logger
}
