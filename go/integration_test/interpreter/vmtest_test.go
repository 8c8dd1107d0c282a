// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter

import (
	"fmt"
	"testing"

	"github.com/kiln-vm/kiln/go/vmtest"
)

func TestVmTests_FixturesPassOnAllVariants(t *testing.T) {
	fixtures, err := vmtest.LoadDir("../../vmtest/testdata", nil)
	if err != nil {
		t.Fatalf("failed to load fixtures: %v", err)
	}
	if len(fixtures) == 0 {
		t.Fatalf("no fixtures found")
	}
	for _, variant := range getAllInterpreterVariantsForTests() {
		interpreter := newInterpreter(t, variant)
		for _, outcome := range vmtest.RunAll(interpreter, fixtures, 4) {
			t.Run(fmt.Sprintf("%s/%s", variant, outcome.Fixture.Name), func(t *testing.T) {
				if !outcome.Passed() {
					t.Errorf("fixture %s failed: %v", outcome.Fixture.File, outcome.Err)
				}
			})
		}
	}
}
