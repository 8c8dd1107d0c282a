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
	"fmt"
	"path/filepath"
	"testing"

	"github.com/kiln-vm/kiln/go/interpreter/bvm"
	"github.com/kiln-vm/kiln/go/kiln"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRun_FixturesPassOnBvm(t *testing.T) {
	fixtures, err := LoadDir("testdata", nil)
	require.NoError(t, err)
	require.NotEmpty(t, fixtures)

	interpreter, err := bvm.NewVm(bvm.Config{})
	require.NoError(t, err)
	for _, fixture := range fixtures {
		t.Run(fmt.Sprintf("%s/%s", filepath.Base(fixture.File), fixture.Name), func(t *testing.T) {
			require.NoError(t, Run(interpreter, fixture))
		})
	}
}

func TestRun_DetectsStorageMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	interpreter := kiln.NewMockInterpreter(ctrl)
	interpreter.EXPECT().Run(gomock.Any()).DoAndReturn(func(params kiln.Parameters) (kiln.Result, error) {
		params.Storage.SetStorage(kiln.Key{}, kiln.NewWord(4))
		params.Storage.SetStorage(kiln.Key{1}, kiln.NewWord(1))
		return kiln.Result{}, nil
	})

	err := Run(interpreter, Fixture{
		Code:    []byte{0x00},
		Storage: map[kiln.Key]kiln.Word{{}: kiln.NewWord(3)},
	})
	require.ErrorContains(t, err, "wanted 0x")
	require.ErrorContains(t, err, "wanted zero")
}

func TestRun_DetectsOutputMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	interpreter := kiln.NewMockInterpreter(ctrl)
	interpreter.EXPECT().Run(gomock.Any()).Return(kiln.Result{Output: []byte{1}}, nil)

	err := Run(interpreter, Fixture{
		Code:        []byte{0x00},
		Storage:     map[kiln.Key]kiln.Word{},
		Output:      []byte{2},
		CheckOutput: true,
	})
	require.ErrorContains(t, err, "unexpected output")
}

func TestRun_ProvidesCodeInputAndHash(t *testing.T) {
	ctrl := gomock.NewController(t)
	interpreter := kiln.NewMockInterpreter(ctrl)
	code := []byte{0x60, 0x01, 0x00}
	data := []byte{0xaa}
	interpreter.EXPECT().Run(gomock.Any()).DoAndReturn(func(params kiln.Parameters) (kiln.Result, error) {
		require.Equal(t, kiln.Code(code), params.Code)
		require.Equal(t, kiln.Data(data), params.Input)
		require.NotNil(t, params.CodeHash)
		require.Equal(t, kiln.Keccak256(code), *params.CodeHash)
		require.NotNil(t, params.Storage)
		return kiln.Result{}, nil
	})
	require.NoError(t, Run(interpreter, Fixture{Code: code, Data: data}))
}

func TestRun_StorageStartsWithPreState(t *testing.T) {
	ctrl := gomock.NewController(t)
	interpreter := kiln.NewMockInterpreter(ctrl)
	interpreter.EXPECT().Run(gomock.Any()).DoAndReturn(func(params kiln.Parameters) (kiln.Result, error) {
		require.Equal(t, kiln.NewWord(5), params.Storage.GetStorage(kiln.Key{1}))
		params.Storage.SetStorage(kiln.Key{1}, kiln.NewWord(6))
		return kiln.Result{}, nil
	})

	pre := map[kiln.Key]kiln.Word{{1}: kiln.NewWord(5)}
	err := Run(interpreter, Fixture{
		Code:    []byte{0x00},
		Pre:     pre,
		Storage: map[kiln.Key]kiln.Word{{1}: kiln.NewWord(6)},
	})
	require.NoError(t, err)
	require.Equal(t, kiln.NewWord(5), pre[kiln.Key{1}])
}

func TestRun_ExpectedFailure(t *testing.T) {
	tests := map[string]struct {
		err     error
		success bool
	}{
		"execution error": {
			err:     &kiln.ExecutionError{Err: kiln.ErrStackUnderflow},
			success: true,
		},
		"no error": {
			err:     nil,
			success: false,
		},
		"other error": {
			err:     fmt.Errorf("injected"),
			success: false,
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			interpreter := kiln.NewMockInterpreter(ctrl)
			interpreter.EXPECT().Run(gomock.Any()).Return(kiln.Result{}, test.err)

			err := Run(interpreter, Fixture{Code: []byte{0x01}, ExpectFailure: true})
			if test.success {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestRun_UnexpectedFailureIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	interpreter := kiln.NewMockInterpreter(ctrl)
	interpreter.EXPECT().Run(gomock.Any()).Return(kiln.Result{}, &kiln.ExecutionError{Err: kiln.ErrInvalidJump})

	err := Run(interpreter, Fixture{Code: []byte{0x56}, Storage: map[kiln.Key]kiln.Word{}})
	require.ErrorIs(t, err, kiln.ErrInvalidJump)
}

func TestRunAll_ReportsOutcomesInFixtureOrder(t *testing.T) {
	interpreter, err := bvm.NewVm(bvm.Config{})
	require.NoError(t, err)

	fixtures := []Fixture{
		{Name: "ok", Code: []byte{0x00}, Storage: map[kiln.Key]kiln.Word{}},
		{Name: "fails", Code: []byte{0x01}, Storage: map[kiln.Key]kiln.Word{}},
		{Name: "expectedFailure", Code: []byte{0x01}, ExpectFailure: true},
	}
	for _, jobs := range []int{0, 1, 4} {
		outcomes := RunAll(interpreter, fixtures, jobs)
		require.Len(t, outcomes, len(fixtures))
		require.Equal(t, "ok", outcomes[0].Fixture.Name)
		require.True(t, outcomes[0].Passed())
		require.Equal(t, "fails", outcomes[1].Fixture.Name)
		require.False(t, outcomes[1].Passed())
		require.Equal(t, "expectedFailure", outcomes[2].Fixture.Name)
		require.True(t, outcomes[2].Passed())
	}
}
