// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/incrementer/actions"
	"github.com/ava-labs/incrementer/codec"
	"github.com/ava-labs/incrementer/runtime"
)

type VM interface {
	Tracer() trace.Tracer
	Logger() logging.Logger
	Programs() []string
	ABI(name string) (runtime.ABI, error)
	ProgramABI(ctx context.Context, program codec.Address) (runtime.ABI, error)
	Submit(ctx context.Context, tx *actions.Transaction) (ids.ID, []byte, error)
	Query(
		ctx context.Context,
		actor codec.Address,
		program codec.Address,
		function string,
		params []byte,
	) ([]byte, error)
}
