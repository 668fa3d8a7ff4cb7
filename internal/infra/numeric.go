package infra

import (
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

var ten = big.NewInt(10)

// NumericToCents converts a NUMERIC(15,0) settlement amount to integer cents.
// NULL, NaN, infinities, fractional cents and values outside int64 are errors.
func NumericToCents(n pgtype.Numeric) (int64, error) {
	switch {
	case !n.Valid:
		return 0, fmt.Errorf("amount is NULL")
	case n.NaN:
		return 0, fmt.Errorf("amount is NaN")
	case n.InfinityModifier != pgtype.Finite:
		return 0, fmt.Errorf("amount is infinite")
	}

	v := new(big.Int).Set(n.Int)
	if n.Exp > 0 {
		v.Mul(v, new(big.Int).Exp(ten, big.NewInt(int64(n.Exp)), nil))
	} else if n.Exp < 0 {
		var rem big.Int
		v.QuoRem(v, new(big.Int).Exp(ten, big.NewInt(int64(-n.Exp)), nil), &rem)
		if rem.Sign() != 0 {
			return 0, fmt.Errorf("amount %s has fractional cents", n.Int)
		}
	}
	if !v.IsInt64() {
		return 0, fmt.Errorf("amount %s overflows int64", v)
	}
	return v.Int64(), nil
}

// CentsToNumeric converts integer cents for a NUMERIC(15,0) column.
func CentsToNumeric(cents int64) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(cents), InfinityModifier: pgtype.Finite, Valid: true}
}
