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
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	cliUtils "github.com/kiln-vm/kiln/go/driver/cli"
	"github.com/kiln-vm/kiln/go/vmtest"
	"github.com/urfave/cli/v2"
)

var TestCmd = cliUtils.AddCommonFlags(cli.Command{
	Action:    doTest,
	Name:      "test",
	Usage:     "Runs VMTests-style JSON fixtures",
	ArgsUsage: "<file | directory>...",
	Flags: []cli.Flag{
		cliUtils.VmFlag,
		cliUtils.FilterFlag,
		cliUtils.JobsFlag,
		cliUtils.StepLimitFlag,
	},
})

func doTest(context *cli.Context) error {
	filter, err := cliUtils.FilterFlag.Fetch(context)
	if err != nil {
		return err
	}
	if context.Args().Len() == 0 {
		return fmt.Errorf("no fixture files or directories given")
	}

	fixtures := []vmtest.Fixture{}
	for _, path := range context.Args().Slice() {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			loaded, err := vmtest.LoadDir(path, filter)
			if err != nil {
				return err
			}
			fixtures = append(fixtures, loaded...)
			continue
		}
		loaded, err := vmtest.LoadFile(path)
		if err != nil {
			return err
		}
		for _, fixture := range loaded {
			if filter.MatchString(fixture.Name) {
				fixtures = append(fixtures, fixture)
			}
		}
	}
	log.Info("Loaded fixtures", "count", len(fixtures))

	interpreter, err := newInterpreter(context)
	if err != nil {
		return err
	}

	jobs := cliUtils.JobsFlag.Fetch(context)
	start := time.Now()
	outcomes := vmtest.RunAll(interpreter, fixtures, jobs)
	elapsed := time.Since(start)

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Passed() {
			log.Debug("Test passed", "name", outcome.Fixture.Name, "time", outcome.Duration)
			continue
		}
		failed++
		fmt.Printf("FAIL: %s (%s): %v\n", outcome.Fixture.Name, outcome.Fixture.File, outcome.Err)
	}

	fmt.Printf(
		"Processed %d tests in %v (~%s tests per second), %d failed\n",
		len(outcomes), elapsed.Round(time.Millisecond), formatRate(len(outcomes), elapsed), failed,
	)
	if failed > 0 {
		return fmt.Errorf("failed to pass %d test cases", failed)
	}
	fmt.Printf("All tests passed successfully!\n")
	return nil
}
