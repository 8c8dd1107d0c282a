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
	"strconv"
	"time"

	cliUtils "github.com/kiln-vm/kiln/go/driver/cli"
	"github.com/kiln-vm/kiln/go/examples"
	"github.com/urfave/cli/v2"
)

var ExamplesCmd = cliUtils.AddCommonFlags(cli.Command{
	Action:    doExamples,
	Name:      "examples",
	Usage:     "Runs the built-in example programs and checks their results",
	ArgsUsage: "[argument]",
	Flags: []cli.Flag{
		cliUtils.VmFlag,
		cliUtils.FilterFlag,
		cliUtils.RepeatFlag,
		cliUtils.TraceFlag,
		cliUtils.StatsFlag,
		cliUtils.StepLimitFlag,
	},
})

const defaultExampleArgument = 10

func doExamples(context *cli.Context) error {
	filter, err := cliUtils.FilterFlag.Fetch(context)
	if err != nil {
		return err
	}
	repeat, err := cliUtils.RepeatFlag.Fetch(context)
	if err != nil {
		return err
	}
	argument := defaultExampleArgument
	if context.Args().Len() > 0 {
		argument, err = strconv.Atoi(context.Args().First())
		if err != nil || argument < 0 {
			return fmt.Errorf("invalid example argument %q", context.Args().First())
		}
	}
	interpreter, err := newInterpreter(context)
	if err != nil {
		return err
	}

	failed := 0
	for _, example := range examples.GetAllExamples() {
		if !filter.MatchString(example.Name) {
			continue
		}
		want := example.RunReference(argument)

		var got examples.Result
		start := time.Now()
		for i := 0; i < repeat; i++ {
			got, err = example.RunOn(interpreter, argument)
			if err != nil {
				return fmt.Errorf("running the %s example failed: %w", example.Name, err)
			}
		}
		elapsed := time.Since(start)

		status := "OK"
		if want != got.Result {
			status = fmt.Sprintf("FAIL (wanted %d)", want)
			failed++
		}
		fmt.Printf(
			"%-20s %s(%d) = %d, ~%s runs per second, %s\n",
			example.Name, example.Name, argument, got.Result, formatRate(repeat, elapsed), status,
		)
	}
	printProfile(context, interpreter)

	if failed > 0 {
		return fmt.Errorf("%d examples produced incorrect results", failed)
	}
	return nil
}
