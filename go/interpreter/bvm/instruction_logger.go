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

	"github.com/kiln-vm/kiln/go/kiln/vm"
)

// loggingRunner is a runner that writes a trace line for every executed
// instruction to an io.Writer. Without a writer nothing is logged.
type loggingRunner struct {
	log io.Writer
}

// newLogger creates a new logging runner writing to the given writer.
func newLogger(writer io.Writer) loggingRunner {
	return loggingRunner{log: writer}
}

func (l loggingRunner) run(c *context) (status, error) {
	status := statusRunning
	var err error
	for status == statusRunning {
		// log format: <pc>: <op>, <stack depth>, <top-of-stack>\n
		if l.log != nil && c.pc < uint64(len(c.code)) {
			top := "-empty-"
			if c.stack.len() > 0 {
				top = c.stack.peek().Hex()
			}
			_, err = fmt.Fprintf(l.log, "%d: %v, %d, %v\n", c.pc, vm.OpCode(c.code[c.pc]), c.stack.len(), top)
			if err != nil {
				return status, fmt.Errorf("failed to write trace: %w", err)
			}
		}
		status, err = step(c)
		if err != nil {
			return status, err
		}
	}
	return status, nil
}
