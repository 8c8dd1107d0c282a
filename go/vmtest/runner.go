// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package vmtest

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/kiln-vm/kiln/go/state"
	"golang.org/x/sync/errgroup"
)

// Run executes the given fixture on the interpreter using a fresh storage
// holding the fixture's pre state and checks the outcome against the fixture's expectations. A nil result
// indicates a passing test.
func Run(interpreter kiln.Interpreter, fixture Fixture) error {
	storage := state.NewInMemoryFrom(fixture.Pre)
	hash := kiln.Keccak256(fixture.Code)
	res, err := interpreter.Run(kiln.Parameters{
		Code:     fixture.Code,
		Input:    fixture.Data,
		Storage:  storage,
		CodeHash: &hash,
	})

	if fixture.ExpectFailure {
		if err == nil {
			return fmt.Errorf("expected execution to fail, but it succeeded")
		}
		var execErr *kiln.ExecutionError
		if !errors.As(err, &execErr) {
			return fmt.Errorf("expected execution error, got %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("unexpected execution failure: %w", err)
	}

	if fixture.CheckOutput && !bytes.Equal(fixture.Output, res.Output) {
		return fmt.Errorf("unexpected output, wanted 0x%x, got 0x%x", fixture.Output, res.Output)
	}
	return compareStorage(fixture.Storage, storage)
}

func compareStorage(want map[kiln.Key]kiln.Word, got *state.InMemory) error {
	var errs []error
	for key, value := range want {
		if current := got.GetStorage(key); current != value {
			errs = append(errs, fmt.Errorf("unexpected value in slot %v, wanted %v, got %v", key, value, current))
		}
	}
	for key, value := range got.NonZero() {
		if _, found := want[key]; !found {
			errs = append(errs, fmt.Errorf("unexpected value in slot %v, wanted zero, got %v", key, value))
		}
	}
	return errors.Join(errs...)
}

// Outcome is the result of running a single fixture.
type Outcome struct {
	Fixture  Fixture
	Err      error
	Duration time.Duration
}

func (o Outcome) Passed() bool {
	return o.Err == nil
}

// RunAll runs all given fixtures using up to jobs parallel workers. The
// result lists the outcomes in the order of the fixtures.
func RunAll(interpreter kiln.Interpreter, fixtures []Fixture, jobs int) []Outcome {
	if jobs < 1 {
		jobs = 1
	}
	res := make([]Outcome, len(fixtures))

	var group errgroup.Group
	group.SetLimit(jobs)
	for i := range fixtures {
		group.Go(func() error {
			start := time.Now()
			err := Run(interpreter, fixtures[i])
			res[i] = Outcome{
				Fixture:  fixtures[i],
				Err:      err,
				Duration: time.Since(start),
			}
			return nil
		})
	}
	_ = group.Wait()
	return res
}
