package compiler

import (
	"testing"

	"github.com/parthshah1/solwizard/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const retrieveABI = `[{"inputs":[],"name":"retrieve","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

func TestNewInput(t *testing.T) {
	input := NewInput("simple_storage.sol", "contract A {}")
	assert.Equal(t, "Solidity", input.Language)
	assert.Equal(t, "contract A {}", input.Sources["simple_storage.sol"].Content)
	assert.Equal(t, []string{"abi", "metadata", "evm.bytecode", "evm.sourceMap"}, input.Settings.OutputSelection["*"]["*"])
}

func TestArtifactFromMetadata(t *testing.T) {
	output := &Output{Contracts: map[string]map[string]Contract{
		"a.sol": {"A": {
			Metadata: `{"output":{"abi":` + retrieveABI + `}}`,
			EVM:      EVM{Bytecode: Bytecode{Object: "0x6001"}},
		}},
	}}

	artifact, err := output.Artifact("", "A")
	require.NoError(t, err)
	assert.Equal(t, "a.sol", artifact.SourceFile)
	assert.Equal(t, []byte{0x60, 0x01}, artifact.Bytecode)
	assert.Contains(t, artifact.ABI.Methods, "retrieve")
}

func TestArtifactFailures(t *testing.T) {
	cases := map[string]Contract{
		"no abi":    {EVM: EVM{Bytecode: Bytecode{Object: "6001"}}},
		"bad meta":  {Metadata: "{", EVM: EVM{Bytecode: Bytecode{Object: "6001"}}},
		"no code":   {ABI: []byte(retrieveABI)},
		"unlinked":  {ABI: []byte(retrieveABI), EVM: EVM{Bytecode: Bytecode{Object: "6001__$abc$__"}}},
		"not hex":   {ABI: []byte(retrieveABI), EVM: EVM{Bytecode: Bytecode{Object: "zz"}}},
		"bad abi":   {ABI: []byte(`[{"type":"function","name":1}]`), EVM: EVM{Bytecode: Bytecode{Object: "6001"}}},
		"null abi":  {ABI: []byte(`null`), EVM: EVM{Bytecode: Bytecode{Object: "6001"}}},
		"empty out": {Metadata: `{"output":{}}`, EVM: EVM{Bytecode: Bytecode{Object: "6001"}}},
	}
	for name, contract := range cases {
		t.Run(name, func(t *testing.T) {
			output := &Output{Contracts: map[string]map[string]Contract{"a.sol": {"A": contract}}}
			_, err := output.Artifact("a.sol", "A")
			require.ErrorIs(t, err, errs.ErrCompilation)
		})
	}
}

func TestDiagnostics(t *testing.T) {
	output := &Output{Errors: []Diagnostic{
		{Severity: "warning", Type: "Warning", Message: "unused"},
		{Severity: "error", Type: "TypeError", Message: "bad", FormattedMessage: "a.sol:1:1: TypeError: bad\n"},
	}}

	require.Len(t, output.Errs(), 1)
	require.Len(t, output.Warnings(), 1)
	assert.Equal(t, "a.sol:1:1: TypeError: bad", output.Errs()[0].String())
	assert.Equal(t, "Warning: unused", output.Warnings()[0].String())
}
