package deployer

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ConvertArguments turns loosely typed values (CLI strings, YAML scalars) into
// the Go types abi.Pack expects for inputs.
func ConvertArguments(inputs abi.Arguments, values []interface{}) ([]interface{}, error) {
	if len(inputs) != len(values) {
		return nil, fmt.Errorf("argument count mismatch: want %d, got %d", len(inputs), len(values))
	}

	converted := make([]interface{}, len(values))
	for i, value := range values {
		arg, err := convertArgument(inputs[i].Type, value)
		if err != nil {
			return nil, fmt.Errorf("failed to convert argument %d (%v) to %s: %w", i, value, inputs[i].Type.String(), err)
		}
		converted[i] = arg
	}
	return converted, nil
}

// StringArgs adapts CLI arguments for ConvertArguments.
func StringArgs(args []string) []interface{} {
	values := make([]interface{}, len(args))
	for i, arg := range args {
		values[i] = strings.TrimSpace(arg)
	}
	return values
}

func convertArgument(typ abi.Type, value interface{}) (interface{}, error) {
	switch typ.T {
	case abi.UintTy, abi.IntTy:
		n, err := toBig(value)
		if err != nil {
			return nil, err
		}
		return sizedInt(typ, n)
	case abi.AddressTy:
		s, ok := value.(string)
		if !ok || !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address")
		}
		return common.HexToAddress(s), nil
	case abi.BoolTy:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(v)
		}
		return nil, fmt.Errorf("invalid bool")
	case abi.StringTy:
		return fmt.Sprint(value), nil
	case abi.BytesTy:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("bytes must be hex encoded")
		}
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("bytes%d must be hex encoded", typ.Size)
		}
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != typ.Size {
			return nil, fmt.Errorf("want %d bytes, got %d", typ.Size, len(b))
		}
		arr := reflect.New(typ.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	}
	return nil, fmt.Errorf("unsupported type: %s", typ.String())
}

func toBig(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("not an integer")
		}
		n, _ := big.NewFloat(v).Int(nil)
		return n, nil
	case string:
		n, ok := new(big.Int).SetString(strings.TrimSpace(v), 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer")
		}
		return n, nil
	}
	return nil, fmt.Errorf("invalid integer type %T", value)
}

// sizedInt range-checks n and returns the Go type abi.Pack wants for typ.
func sizedInt(typ abi.Type, n *big.Int) (interface{}, error) {
	if typ.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > typ.Size {
			return nil, fmt.Errorf("out of range for uint%d", typ.Size)
		}
		switch typ.Size {
		case 8:
			return uint8(n.Uint64()), nil
		case 16:
			return uint16(n.Uint64()), nil
		case 32:
			return uint32(n.Uint64()), nil
		case 64:
			return n.Uint64(), nil
		}
		return n, nil
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
	if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
		return nil, fmt.Errorf("out of range for int%d", typ.Size)
	}
	switch typ.Size {
	case 8:
		return int8(n.Int64()), nil
	case 16:
		return int16(n.Int64()), nil
	case 32:
		return int32(n.Int64()), nil
	case 64:
		return n.Int64(), nil
	}
	return n, nil
}

// FormatValue renders a decoded ABI value for console output.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case *big.Int:
		return v.String()
	case common.Address:
		return v.Hex()
	case []byte:
		return hexutil.Encode(v)
	case string:
		return v
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return hexutil.Encode(b)
	}
	return fmt.Sprint(value)
}

// FormatValues joins FormatValue over a decoded result.
func FormatValues(values []interface{}) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatValue(v)
	}
	return strings.Join(parts, ", ")
}
