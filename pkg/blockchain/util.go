package blockchain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// attoDecimals is the number of decimals of ONE (and Ether).
	attoDecimals = 18
	gweiDecimals = 9
)

// OneToAtto converts a ONE amount to its smallest unit atto (18 decimals).
//
// Supported input types for iamount: string, float64, int64, decimal.Decimal,
// *decimal.Decimal. Any other type results in an error.
func OneToAtto(iamount any) (*big.Int, error) {
	amount, err := toDecimal(iamount)
	if err != nil {
		return nil, err
	}
	return amount.Shift(attoDecimals).BigInt(), nil
}

// AttoToOne converts an atto amount into ONE with 18 digits of precision.
//
// Supported input types for ivalue: string, *big.Int, int.
// Any other type results in decimal.Zero and logs an error.
func AttoToOne(ivalue any) decimal.Decimal {
	value := new(big.Int)
	switch v := ivalue.(type) {
	case string:
		if _, ok := value.SetString(v, 10); !ok {
			zap.L().Error("Failed to parse atto amount", zap.String("value", v))
			return decimal.Zero
		}
	case *big.Int:
		if v == nil {
			return decimal.Zero
		}
		value = v
	case int:
		value.SetInt64(int64(v))
	default:
		zap.L().Error("Unsupported type", zap.String("type", fmt.Sprintf("%T", ivalue)))
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -attoDecimals)
}

// GweiToWei converts a gwei amount to wei.
func GweiToWei(iamount any) (*big.Int, error) {
	amount, err := toDecimal(iamount)
	if err != nil {
		return nil, err
	}
	return amount.Shift(gweiDecimals).BigInt(), nil
}

func toDecimal(iamount any) (decimal.Decimal, error) {
	switch v := iamount.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			zap.L().Error("Failed to convert string to decimal", zap.Error(err))
			return decimal.Zero, err
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0), nil
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, fmt.Errorf("nil amount")
		}
		return *v, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T", iamount)
	}
}
