// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import "github.com/ava-labs/avalanchego/utils/units"

const (
	defaultMaxParamsSize = 4 * units.KiB
	defaultMaxResultSize = 4 * units.KiB
)

type Config struct {
	// MaxParamsSize bounds the encoded params of a single call.
	MaxParamsSize int `json:"maxParamsSize" yaml:"maxParamsSize"`
	// MaxResultSize bounds the encoded result of a single call.
	MaxResultSize int `json:"maxResultSize" yaml:"maxResultSize"`
}

func NewConfig() *Config {
	return &Config{
		MaxParamsSize: defaultMaxParamsSize,
		MaxResultSize: defaultMaxResultSize,
	}
}
