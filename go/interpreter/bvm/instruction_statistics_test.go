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
	"strings"
	"sync"
	"testing"

	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/kiln-vm/kiln/go/kiln/vm"
)

func TestStatisticsRunner_CountsExecutedInstructions(t *testing.T) {
	code := []byte{byte(vm.PUSH1), 0x01, byte(vm.PUSH1), 0x01, byte(vm.STOP)}
	statsRunner := &statisticRunner{stats: newStatistics()}
	config := interpreterConfig{runner: statsRunner}
	if _, err := run(config, kiln.Parameters{Code: code}, analyzeCode(code)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := statsRunner.stats
	if want, got := uint64(3), stats.steps; want != got {
		t.Errorf("unexpected number of steps, wanted %d, got %d", want, got)
	}
	if want, got := uint64(2), stats.counts[0][sequence{vm.PUSH1}]; want != got {
		t.Errorf("unexpected PUSH1 count, wanted %d, got %d", want, got)
	}
	if want, got := uint64(1), stats.counts[1][sequence{vm.PUSH1, vm.STOP}]; want != got {
		t.Errorf("unexpected PUSH1 STOP count, wanted %d, got %d", want, got)
	}
	if want, got := uint64(1), stats.counts[2][sequence{vm.PUSH1, vm.PUSH1, vm.STOP}]; want != got {
		t.Errorf("unexpected PUSH1 PUSH1 STOP count, wanted %d, got %d", want, got)
	}
	if want, got := 0, len(stats.counts[3]); want != got {
		t.Errorf("unexpected number of quads, wanted %d, got %d", want, got)
	}
}

func TestStatisticsRunner_FailingRunsAreCounted(t *testing.T) {
	code := []byte{byte(vm.ADD)}
	statsRunner := &statisticRunner{}
	config := interpreterConfig{runner: statsRunner}
	if _, err := run(config, kiln.Parameters{Code: code}, analyzeCode(code)); err == nil {
		t.Fatalf("expected an error")
	}
	if want, got := uint64(1), statsRunner.stats.steps; want != got {
		t.Errorf("unexpected number of steps, wanted %d, got %d", want, got)
	}
}

func TestStatisticsRunner_SummaryListsSequences(t *testing.T) {
	code := []byte{byte(vm.PUSH1), 0x01, byte(vm.PUSH1), 0x01, byte(vm.PUSH1), 0x01, byte(vm.STOP)}
	statsRunner := &statisticRunner{}
	config := interpreterConfig{runner: statsRunner}
	if _, err := run(config, kiln.Parameters{Code: code}, analyzeCode(code)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary := statsRunner.getSummary()
	for _, want := range []string{
		"Steps: 4",
		fmt.Sprintf("%-15v: 3 (75.00%%)", vm.PUSH1),
		fmt.Sprintf("%-15v: 1 (25.00%%)", vm.STOP),
		fmt.Sprintf("%-15v%-15v%-15v: 1 (25.00%%)", vm.PUSH1, vm.PUSH1, vm.STOP),
		fmt.Sprintf("%-15v%-15v%-15v%-15v: 1 (25.00%%)", vm.PUSH1, vm.PUSH1, vm.PUSH1, vm.STOP),
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary does not contain %q:\n%s", want, summary)
		}
	}

	statsRunner.reset()
	if !strings.Contains(statsRunner.getSummary(), "Steps: 0") {
		t.Errorf("expected empty statistics after reset")
	}
}

func TestStatisticsRunner_ConcurrentRunsAreAggregated(t *testing.T) {
	code := []byte{byte(vm.JUMPDEST), byte(vm.STOP)}
	statsRunner := &statisticRunner{}
	config := interpreterConfig{runner: statsRunner}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := run(config, kiln.Parameters{Code: code}, analyzeCode(code)); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if want, got := uint64(20), statsRunner.stats.steps; want != got {
		t.Errorf("unexpected number of steps, wanted %d, got %d", want, got)
	}
}

func TestStatistics_TopOrdersByCount(t *testing.T) {
	stats := newStatistics()
	collector := statsCollector{stats: stats}
	for _, op := range []vm.OpCode{vm.ADD, vm.POP, vm.POP, vm.MUL, vm.POP} {
		collector.nextOp(op)
	}
	top := stats.top(1, 2)
	if want, got := 2, len(top); want != got {
		t.Fatalf("unexpected number of entries, wanted %d, got %d", want, got)
	}
	if want, got := (sequenceCount{sequence{vm.POP}, 3}), top[0]; want != got {
		t.Errorf("unexpected top entry, wanted %v, got %v", want, got)
	}
	if want, got := (sequenceCount{sequence{vm.ADD}, 1}), top[1]; want != got {
		t.Errorf("unexpected second entry, wanted %v, got %v", want, got)
	}
}
