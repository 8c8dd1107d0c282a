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
	"strings"
	"time"

	"github.com/dsnet/golib/unitconv"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	cliUtils "github.com/kiln-vm/kiln/go/driver/cli"
	"github.com/kiln-vm/kiln/go/interpreter/bvm"
	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/urfave/cli/v2"
)

// parseCode interprets a 0x-prefixed argument as hex encoded code and any
// other argument as the path of a file containing hex encoded code.
func parseCode(arg string) ([]byte, error) {
	if strings.HasPrefix(arg, "0x") {
		return hexutil.Decode(arg)
	}
	content, err := os.ReadFile(arg)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(content))
	if !strings.HasPrefix(text, "0x") {
		text = "0x" + text
	}
	code, err := hexutil.Decode(text)
	if err != nil {
		return nil, fmt.Errorf("invalid code in %s: %w", arg, err)
	}
	return code, nil
}

func getSingleArgument(context *cli.Context, name string) (string, error) {
	if context.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly one %s, got %d arguments", name, context.Args().Len())
	}
	return context.Args().First(), nil
}

// newInterpreter creates the interpreter selected by the command line flags.
func newInterpreter(context *cli.Context) (kiln.Interpreter, error) {
	config := bvm.Config{
		StepLimit:         cliUtils.StepLimitFlag.Fetch(context),
		CollectStatistics: cliUtils.StatsFlag.Fetch(context),
	}
	if cliUtils.TraceFlag.Fetch(context) {
		if config.CollectStatistics {
			log.Warn("Tracing is not supported while collecting statistics, trace disabled")
		} else {
			config.Trace = os.Stdout
		}
	}

	name := cliUtils.VmFlag.Fetch(context)
	if kiln.GetInterpreterFactory(name) == nil {
		return nil, fmt.Errorf("invalid VM %q, use one of %v", name, kiln.RegisteredInterpreterNames())
	}
	// Interpreters other than bvm variants reject configurations, so one is
	// only passed if a flag requires it.
	var configs []any
	if config != (bvm.Config{}) {
		configs = append(configs, config)
	}
	interpreter, err := kiln.NewInterpreter(name, configs...)
	if err != nil {
		return nil, fmt.Errorf("failed to create VM %q: %w", name, err)
	}
	log.Debug("Created interpreter", "vm", name, "stepLimit", config.StepLimit)
	return interpreter, nil
}

func printProfile(context *cli.Context, interpreter kiln.Interpreter) {
	if !cliUtils.StatsFlag.Fetch(context) {
		return
	}
	if pvm, ok := interpreter.(kiln.ProfilingInterpreter); ok {
		fmt.Print(pvm.DumpProfile())
	}
}

func formatRate(count int, elapsed time.Duration) string {
	seconds := elapsed.Seconds()
	if seconds <= 0 {
		return "-"
	}
	return unitconv.FormatPrefix(float64(count)/seconds, unitconv.SI, 0)
}
