// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package bvm

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/kiln-vm/kiln/go/kiln"
)

// Registers the byte-code VM as a possible interpreter implementation.
func init() {
	// This is the officially supported configuration.
	mustRegister("bvm", func(c Config) Config { return c })
}

var registerExperimentalOnce sync.Once

// RegisterExperimentalInterpreterConfigurations registers additional
// configurations of the VM for diagnostics and testing. The resulting VMs
// are not intended for production use. Repeated calls have no effect.
func RegisterExperimentalInterpreterConfigurations() {
	registerExperimentalOnce.Do(func() {
		mustRegister("bvm-logging", func(c Config) Config {
			if c.Trace == nil {
				c.Trace = os.Stderr
			}
			return c
		})
		mustRegister("bvm-stats", func(c Config) Config {
			c.CollectStatistics = true
			return c
		})
		mustRegister("bvm-no-cache", func(c Config) Config {
			c.AnalysisCacheSize = -1
			return c
		})
		mustRegister("bvm-direct-storage", func(c Config) Config {
			c.DirectStorageWrites = true
			return c
		})
	})
}

// mustRegister binds a factory to the given name. The factory accepts an
// optional Config, which is adjusted by the given function before creating
// the VM.
func mustRegister(name string, adjust func(Config) Config) {
	err := kiln.RegisterInterpreterFactory(name, func(config any) (kiln.Interpreter, error) {
		base := Config{}
		if config != nil {
			c, ok := config.(Config)
			if !ok {
				return nil, fmt.Errorf("invalid configuration for %s: %T", name, config)
			}
			base = c
		}
		return NewVm(adjust(base))
	})
	if err != nil {
		panic(err)
	}
}

// Config lists the configuration options of the VM. The zero value is the
// default configuration.
type Config struct {
	// AnalysisCacheSize is the number of code analyses retained for codes
	// run with a code hash. If 0, a default size is used. If negative, no
	// cache is used.
	AnalysisCacheSize int
	// MaxMemorySize limits the memory of a single run in bytes. If 0, a
	// default of 32MiB is used.
	MaxMemorySize uint64
	// StepLimit limits the number of instructions executed by a single run.
	// If 0, runs are not limited.
	StepLimit uint64
	// DirectStorageWrites forwards storage writes to the storage of a run
	// as they happen. By default writes are buffered and only applied if
	// the run succeeds.
	DirectStorageWrites bool
	// Trace, if set, receives a trace line for every executed instruction.
	Trace io.Writer
	// CollectStatistics enables the collection of instruction statistics,
	// see DumpProfile.
	CollectStatistics bool
}

var _ kiln.ProfilingInterpreter = (*bvm)(nil)

type bvm struct {
	config   Config
	analyzer *analyzer
	runner   runner
}

func NewVm(config Config) (*bvm, error) {
	analyzer, err := newAnalyzer(config.AnalysisCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create code analyzer: %v", err)
	}
	var runner runner
	switch {
	case config.CollectStatistics:
		runner = &statisticRunner{stats: newStatistics()}
	case config.Trace != nil:
		runner = newLogger(config.Trace)
	}
	return &bvm{config: config, analyzer: analyzer, runner: runner}, nil
}

func (v *bvm) Run(params kiln.Parameters) (kiln.Result, error) {
	config := interpreterConfig{
		runner:              v.runner,
		maxMemorySize:       v.config.MaxMemorySize,
		stepLimit:           v.config.StepLimit,
		directStorageWrites: v.config.DirectStorageWrites,
	}
	return run(config, params, v.analyzer.analyze(params.Code, params.CodeHash))
}

func (v *bvm) DumpProfile() string {
	if statsRunner, ok := v.runner.(*statisticRunner); ok {
		return statsRunner.getSummary()
	}
	return ""
}

func (v *bvm) ResetProfile() {
	if statsRunner, ok := v.runner.(*statisticRunner); ok {
		statsRunner.reset()
	}
}

var defaultVm = sync.OnceValues(func() (*bvm, error) {
	return NewVm(Config{})
})

// Execute runs code on the given input and storage using the default
// configuration. The output is nil if the program stopped without a RETURN.
// Storage is only modified if the run succeeds. A non-nil error is a
// *kiln.ExecutionError.
func Execute(code, calldata []byte, storage kiln.Storage) ([]byte, error) {
	vm, err := defaultVm()
	if err != nil {
		return nil, err
	}
	res, err := vm.Run(kiln.Parameters{
		Code:    code,
		Input:   calldata,
		Storage: storage,
	})
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}
