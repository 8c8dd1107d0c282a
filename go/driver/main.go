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

	"github.com/ethereum/go-ethereum/log"
	cliUtils "github.com/kiln-vm/kiln/go/driver/cli"
	"github.com/kiln-vm/kiln/go/interpreter/bvm"
	_ "github.com/kiln-vm/kiln/go/interpreter/geth"
	"github.com/urfave/cli/v2"
)

func main() {
	bvm.RegisterExperimentalInterpreterConfigurations()

	app := &cli.App{
		Name:      "kiln",
		Usage:     "Kiln byte-code VM driver",
		Copyright: "(c) 2024 Fantom Foundation",
		Flags: []cli.Flag{
			cliUtils.VerbosityFlag,
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			&RunCmd,
			&DisasmCmd,
			&TestCmd,
			&ExamplesCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(context *cli.Context) error {
	level, err := cliUtils.VerbosityFlag.Fetch(context)
	if err != nil {
		return err
	}
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(level), false)
	log.SetDefault(log.NewLogger(handler))
	return nil
}
