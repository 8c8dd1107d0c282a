// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	cliUtils "github.com/kiln-vm/kiln/go/driver/cli"
	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/kiln-vm/kiln/go/state"
	"github.com/urfave/cli/v2"
)

var RunCmd = cliUtils.AddCommonFlags(cli.Command{
	Action:    doRun,
	Name:      "run",
	Usage:     "Executes a program on empty storage and prints its output and storage",
	ArgsUsage: "<0x-code | code-file>",
	Flags: []cli.Flag{
		cliUtils.VmFlag,
		cliUtils.InputFlag,
		cliUtils.TraceFlag,
		cliUtils.StatsFlag,
		cliUtils.StepLimitFlag,
		cliUtils.RepeatFlag,
	},
})

func doRun(context *cli.Context) error {
	arg, err := getSingleArgument(context, "program")
	if err != nil {
		return err
	}
	code, err := parseCode(arg)
	if err != nil {
		return err
	}
	input, err := hexutil.Decode(cliUtils.InputFlag.Fetch(context))
	if err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	repeat, err := cliUtils.RepeatFlag.Fetch(context)
	if err != nil {
		return err
	}
	interpreter, err := newInterpreter(context)
	if err != nil {
		return err
	}

	hash := kiln.Keccak256(code)
	var storage *state.InMemory
	var res kiln.Result
	start := time.Now()
	for i := 0; i < repeat; i++ {
		storage = state.NewInMemory()
		res, err = interpreter.Run(kiln.Parameters{
			Code:     code,
			Input:    input,
			Storage:  storage,
			CodeHash: &hash,
		})
		if err != nil {
			return err
		}
	}
	elapsed := time.Since(start)
	log.Info("Execution completed", "runs", repeat, "time", elapsed, "rate", formatRate(repeat, elapsed)+"/s")

	if res.Output == nil {
		fmt.Println("Output: none")
	} else {
		fmt.Printf("Output: 0x%x\n", []byte(res.Output))
	}
	fmt.Printf("Storage: %d slots\n", storage.Len())
	for _, key := range storage.Keys() {
		fmt.Printf("  %v: %v\n", key, storage.GetStorage(key))
	}
	printProfile(context, interpreter)
	return nil
}
