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
	"slices"
	"strings"
	"sync"

	"github.com/kiln-vm/kiln/go/kiln/vm"
)

// maxSequenceLength is the length of the longest instruction sequence
// counted by the statistics.
const maxSequenceLength = 4

// statisticRunner is a runner counting how often instructions and short
// instruction sequences are executed. Counts are aggregated over all runs
// until reset.
type statisticRunner struct {
	mutex sync.Mutex
	stats *statistics
}

func (s *statisticRunner) run(c *context) (status, error) {
	collector := statsCollector{stats: newStatistics()}
	status := statusRunning
	var err error
	for status == statusRunning {
		if c.pc < uint64(len(c.code)) {
			collector.nextOp(vm.OpCode(c.code[c.pc]))
		}
		status, err = step(c)
		if err != nil {
			break
		}
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	s.stats.insert(collector.stats)
	return status, err
}

// getSummary renders the statistics collected since the last reset.
func (s *statisticRunner) getSummary() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	return s.stats.print()
}

func (s *statisticRunner) reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stats = newStatistics()
}

// sequence is a run of up to maxSequenceLength consecutive instructions.
// Unused trailing positions are zero and ignored based on the length of the
// table the sequence is counted in.
type sequence [maxSequenceLength]vm.OpCode

// statistics holds the execution counts of instruction sequences. The
// counts[i] table covers sequences of length i+1.
type statistics struct {
	steps  uint64
	counts [maxSequenceLength]map[sequence]uint64
}

func newStatistics() *statistics {
	res := &statistics{}
	for i := range res.counts {
		res.counts[i] = map[sequence]uint64{}
	}
	return res
}

// insert adds the counts of src to s.
func (s *statistics) insert(src *statistics) {
	s.steps += src.steps
	for i, table := range src.counts {
		for seq, count := range table {
			s.counts[i][seq] += count
		}
	}
}

type sequenceCount struct {
	seq   sequence
	count uint64
}

// top returns the n most frequent sequences of the given length, the most
// frequent first. Ties are ordered by opcode values.
func (s *statistics) top(length, n int) []sequenceCount {
	table := s.counts[length-1]
	list := make([]sequenceCount, 0, len(table))
	for seq, count := range table {
		list = append(list, sequenceCount{seq, count})
	}
	slices.SortFunc(list, func(a, b sequenceCount) int {
		if a.count != b.count {
			if a.count > b.count {
				return -1
			}
			return 1
		}
		return slices.Compare(a.seq[:], b.seq[:])
	})
	return list[:min(n, len(list))]
}

func (s *statistics) print() string {
	labels := [maxSequenceLength]string{"Singles", "Pairs", "Triples", "Quads"}

	builder := strings.Builder{}
	fmt.Fprintf(&builder, "\n----- Statistics ------\n")
	fmt.Fprintf(&builder, "\nSteps: %d\n", s.steps)
	for i, label := range labels {
		fmt.Fprintf(&builder, "\n%s:\n", label)
		for _, entry := range s.top(i+1, 5) {
			builder.WriteString("\t")
			for _, op := range entry.seq[:i+1] {
				fmt.Fprintf(&builder, "%-15v", op)
			}
			share := float64(entry.count*100) / float64(s.steps)
			fmt.Fprintf(&builder, ": %d (%.2f%%)\n", entry.count, share)
		}
	}
	builder.WriteString("\n")
	return builder.String()
}

// statsCollector tracks the most recently executed instructions of a single
// run to count the sequences ending in each new instruction.
type statsCollector struct {
	stats  *statistics
	window sequence
	filled int
}

func (s *statsCollector) nextOp(op vm.OpCode) {
	copy(s.window[:], s.window[1:])
	s.window[maxSequenceLength-1] = op
	s.filled = min(s.filled+1, maxSequenceLength)
	s.stats.steps++

	for length := 1; length <= s.filled; length++ {
		var seq sequence
		copy(seq[:], s.window[maxSequenceLength-length:])
		s.stats.counts[length-1][seq]++
	}
}
