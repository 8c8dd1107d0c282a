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

	cliUtils "github.com/kiln-vm/kiln/go/driver/cli"
	"github.com/kiln-vm/kiln/go/kiln/vm"
	"github.com/urfave/cli/v2"
)

var DisasmCmd = cliUtils.AddCommonFlags(cli.Command{
	Action:    doDisasm,
	Name:      "disasm",
	Usage:     "Prints the instructions of a program",
	ArgsUsage: "<0x-code | code-file>",
})

func doDisasm(context *cli.Context) error {
	arg, err := getSingleArgument(context, "program")
	if err != nil {
		return err
	}
	code, err := parseCode(arg)
	if err != nil {
		return err
	}
	fmt.Print(vm.Listing(vm.Disassemble(code)))
	return nil
}
