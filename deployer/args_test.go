package deployer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustType(t *testing.T, name string) abi.Type {
	t.Helper()
	typ, err := abi.NewType(name, "", nil)
	require.NoError(t, err)
	return typ
}

func TestConvertArguments(t *testing.T) {
	inputs := abi.Arguments{
		{Name: "n", Type: mustType(t, "uint256")},
		{Name: "small", Type: mustType(t, "uint8")},
		{Name: "signed", Type: mustType(t, "int64")},
		{Name: "who", Type: mustType(t, "address")},
		{Name: "flag", Type: mustType(t, "bool")},
		{Name: "name", Type: mustType(t, "string")},
		{Name: "blob", Type: mustType(t, "bytes")},
		{Name: "word", Type: mustType(t, "bytes4")},
	}
	values := []interface{}{"15", 7, "-3", "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1", "true", "alice", "0xdead", "0x6057361d"}

	converted, err := ConvertArguments(inputs, values)
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(15), converted[0])
	assert.Equal(t, uint8(7), converted[1])
	assert.Equal(t, int64(-3), converted[2])
	assert.Equal(t, common.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1"), converted[3])
	assert.Equal(t, true, converted[4])
	assert.Equal(t, "alice", converted[5])
	assert.Equal(t, []byte{0xde, 0xad}, converted[6])
	assert.Equal(t, [4]byte{0x60, 0x57, 0x36, 0x1d}, converted[7])

	_, err = inputs.Pack(converted...)
	require.NoError(t, err)
}

func TestConvertArgumentsFromYAMLScalars(t *testing.T) {
	inputs := abi.Arguments{{Type: mustType(t, "uint256")}, {Type: mustType(t, "bool")}}

	converted, err := ConvertArguments(inputs, []interface{}{float64(42), true})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), converted[0])
	assert.Equal(t, true, converted[1])

	converted, err = ConvertArguments(inputs[:1], []interface{}{"0x10"})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(16), converted[0])
}

func TestConvertArgumentsFailures(t *testing.T) {
	cases := []struct {
		typ   string
		value interface{}
	}{
		{"uint256", "fifteen"},
		{"uint256", "-1"},
		{"uint256", 1.5},
		{"uint8", 256},
		{"int8", -129},
		{"address", "0x1234"},
		{"bool", "maybe"},
		{"bytes", 12},
		{"bytes4", "0xdead"},
		{"uint256", []int{1}},
	}
	for _, c := range cases {
		_, err := ConvertArguments(abi.Arguments{{Type: mustType(t, c.typ)}}, []interface{}{c.value})
		assert.Error(t, err, "%s %v", c.typ, c.value)
	}

	_, err := ConvertArguments(abi.Arguments{{Type: mustType(t, "uint256")}}, nil)
	require.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "15", FormatValue(big.NewInt(15)))
	assert.Equal(t, "0x0000000000000000000000000000000000000001", FormatValue(common.HexToAddress("0x01")))
	assert.Equal(t, "0xdead", FormatValue([]byte{0xde, 0xad}))
	assert.Equal(t, "0x6057361d", FormatValue([4]byte{0x60, 0x57, 0x36, 0x1d}))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "1, a", FormatValues([]interface{}{big.NewInt(1), "a"}))
	assert.Equal(t, []interface{}{"a", "b"}, StringArgs([]string{" a", "b "}))
}
