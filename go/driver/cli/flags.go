// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cliUtils

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"runtime/pprof"

	"github.com/urfave/cli/v2"
)

type vmFlagType struct {
	cli.StringFlag
}

var VmFlag = &vmFlagType{
	cli.StringFlag{
		Name:  "vm",
		Usage: "name of the registered interpreter to use",
		Value: "bvm",
	},
}

func (f *vmFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type inputFlagType struct {
	cli.StringFlag
}

var InputFlag = &inputFlagType{
	cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "hex encoded call data, 0x prefixed",
		Value:   "0x",
	},
}

func (f *inputFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type traceFlagType struct {
	cli.BoolFlag
}

var TraceFlag = &traceFlagType{
	cli.BoolFlag{
		Name:  "trace",
		Usage: "print a trace line for every executed instruction",
	},
}

func (f *traceFlagType) Fetch(context *cli.Context) bool {
	return context.Bool(f.Name)
}

type statsFlagType struct {
	cli.BoolFlag
}

var StatsFlag = &statsFlagType{
	cli.BoolFlag{
		Name:  "stats",
		Usage: "collect and print instruction statistics",
	},
}

func (f *statsFlagType) Fetch(context *cli.Context) bool {
	return context.Bool(f.Name)
}

type stepLimitFlagType struct {
	cli.Uint64Flag
}

var StepLimitFlag = &stepLimitFlagType{
	cli.Uint64Flag{
		Name:  "step-limit",
		Usage: "maximum number of executed instructions, 0 for no limit",
	},
}

func (f *stepLimitFlagType) Fetch(context *cli.Context) uint64 {
	return context.Uint64(f.Name)
}

type verbosityFlagType struct {
	cli.IntFlag
}

var VerbosityFlag = &verbosityFlagType{
	cli.IntFlag{
		Name:  "verbosity",
		Usage: "log level: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	},
}

func (f *verbosityFlagType) Fetch(context *cli.Context) (int, error) {
	level := context.Int(f.Name)
	if level < 0 || level > 5 {
		return 0, fmt.Errorf("invalid verbosity %d, must be in range [0, 5]", level)
	}
	return level, nil
}

type filterFlagType struct {
	cli.StringFlag
}

var FilterFlag = &filterFlagType{
	cli.StringFlag{
		Name:    "filter",
		Aliases: []string{"f"},
		Usage:   "process only items which name matches the given regex",
		Value:   "",
	},
}

func (f *filterFlagType) Fetch(context *cli.Context) (*regexp.Regexp, error) {
	return regexp.Compile(context.String(f.Name))
}

type jobsFlagType struct {
	cli.IntFlag
}

var JobsFlag = &jobsFlagType{
	cli.IntFlag{
		Name:    "jobs",
		Aliases: []string{"j"},
		Usage:   "number of jobs run simultaneously",
		Value:   runtime.NumCPU(),
	},
}

func (f *jobsFlagType) Fetch(context *cli.Context) int {
	return context.Int(f.Name)
}

type repeatFlagType struct {
	cli.IntFlag
}

var RepeatFlag = &repeatFlagType{
	cli.IntFlag{
		Name:  "repeat",
		Usage: "number of times each program is executed",
		Value: 1,
	},
}

func (f *repeatFlagType) Fetch(context *cli.Context) (int, error) {
	repeat := context.Int(f.Name)
	if repeat < 1 {
		return 0, fmt.Errorf("invalid repeat count %d, must be positive", repeat)
	}
	return repeat, nil
}

var commonFlags = []cli.Flag{
	cpuProfileFlag,
}

var cpuProfileFlag = &cli.StringFlag{
	Name:      "cpuprofile",
	Usage:     "store CPU profile in the provided filename",
	TakesFile: true,
}

// AddCommonFlags extends the given command by flags shared by all commands.
func AddCommonFlags(command cli.Command) cli.Command {
	command.Flags = append(command.Flags, commonFlags...)

	action := command.Action
	command.Action = func(ctx *cli.Context) (err error) {

		if cpuprofileFilename := ctx.String(cpuProfileFlag.Name); cpuprofileFilename != "" {
			f, err := os.Create(cpuprofileFilename)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		return action(ctx)
	}
	return command
}
