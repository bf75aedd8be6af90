// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"os"

	"github.com/ava-labs/incrementer/cmd/incrementer-sim/cmd"
	"github.com/ava-labs/incrementer/utils"
)

func main() {
	s := &cmd.Simulator{}
	if err := s.Execute(context.Background()); err != nil {
		utils.Outf("{{red}}error: {{/}}%+v\n", err)
		os.Exit(1)
	}
}
