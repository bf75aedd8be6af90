// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

const (
	ProgramCreateID uint8 = iota
	ProgramExecuteID
)
