// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package vmtest loads and runs test fixtures in the format of the Ethereum
// VMTests suite. A fixture file holds a JSON object mapping test names to
// test cases:
//
//	{
//	  "add0": {
//	    "exec": { "address": "0x0f57...", "code": "0x...", "data": "0x" },
//	    "pre":  { "0x0f57...": { "storage": { "0x01": "0x05" } } },
//	    "out":  "0x",
//	    "post": { "0x0f57...": { "storage": { "0x00": "0x03" } } }
//	  }
//	}
//
// The optional pre state of the executing account initializes its storage. A
// test case without a post state expects the execution to fail.
package vmtest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/kiln-vm/kiln/go/kiln"
)

// DefaultAddress is the account executing the code of fixtures without an
// explicit address.
var DefaultAddress = common.HexToAddress("0x0f572e5295c57f15886f9b263e2f6d2d6c7b5ec6")

// Fixture is a single test case.
type Fixture struct {
	Name string
	File string

	Code []byte
	Data []byte
	// Pre is the storage content before the run.
	Pre map[kiln.Key]kiln.Word

	// ExpectFailure is set if the execution is expected to abort.
	ExpectFailure bool
	// Storage is the expected storage after a successful run. Slots not
	// listed are expected to be zero.
	Storage map[kiln.Key]kiln.Word
	// Output is the expected output, if specified.
	Output []byte
	// CheckOutput is set if the fixture specifies an output.
	CheckOutput bool
}

type fixtureJSON struct {
	Exec struct {
		Address *common.Address `json:"address"`
		Code    hexutil.Bytes   `json:"code"`
		Data    hexutil.Bytes   `json:"data"`
	} `json:"exec"`
	Out  *hexutil.Bytes                 `json:"out"`
	Pre  map[common.Address]accountJSON `json:"pre"`
	Post map[common.Address]accountJSON `json:"post"`
}

type accountJSON struct {
	Storage map[kiln.Key]kiln.Word `json:"storage"`
}

// Parse decodes the fixtures of a single fixture file. The result is
// ordered by test name.
func Parse(file string, data []byte) ([]Fixture, error) {
	var cases map[string]fixtureJSON
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", file, err)
	}

	res := make([]Fixture, 0, len(cases))
	for name, test := range cases {
		fixture := Fixture{
			Name:          name,
			File:          file,
			Code:          test.Exec.Code,
			Data:          test.Exec.Data,
			ExpectFailure: test.Post == nil,
		}
		if test.Out != nil {
			fixture.Output = *test.Out
			fixture.CheckOutput = true
		}
		address := DefaultAddress
		if test.Exec.Address != nil {
			address = *test.Exec.Address
		}
		fixture.Pre = test.Pre[address].Storage
		if !fixture.ExpectFailure {
			account, found := test.Post[address]
			if !found && len(test.Post) > 0 {
				return nil, fmt.Errorf("%s: %s: no post state for executing account %v", file, name, address)
			}
			fixture.Storage = account.Storage
			if fixture.Storage == nil {
				fixture.Storage = map[kiln.Key]kiln.Word{}
			}
		}
		res = append(res, fixture)
	}
	slices.SortFunc(res, func(a, b Fixture) int {
		return strings.Compare(a.Name, b.Name)
	})
	return res, nil
}

// LoadFile reads all fixtures of the given file.
func LoadFile(path string) ([]Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// LoadDir reads the fixtures of all .json files in the given directory and
// its subdirectories. If filter is not nil, only fixtures whose name
// matches are included.
func LoadDir(dir string, filter *regexp.Regexp) ([]Fixture, error) {
	res := []Fixture{}
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		fixtures, err := LoadFile(path)
		if err != nil {
			return err
		}
		for _, fixture := range fixtures {
			if filter == nil || filter.MatchString(fixture.Name) {
				res = append(res, fixture)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
