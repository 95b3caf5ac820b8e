package core

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

var amountCtx = apd.BaseContext.WithPrecision(38)

var lamportsPerSOLDec = apd.New(int64(LamportsPerSOL), 0)

// ParseSOL converts a display-unit amount ("2", "0.5") to base currency
// units. Amounts below one base unit or negative amounts are rejected.
func ParseSOL(s string) (uint64, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.Negative {
		return 0, fmt.Errorf("amount %q is negative", s)
	}

	var lamports apd.Decimal
	if _, err := amountCtx.Mul(&lamports, d, lamportsPerSOLDec); err != nil {
		return 0, fmt.Errorf("convert amount %q: %w", s, err)
	}
	lamports.Reduce(&lamports)
	if lamports.Exponent < 0 {
		return 0, fmt.Errorf("amount %q is below one base unit", s)
	}

	i, err := lamports.Int64()
	if err != nil {
		return 0, fmt.Errorf("amount %q out of range: %w", s, err)
	}
	return uint64(i), nil
}

// FormatLamports renders a base-unit amount in display units, with
// trailing zeros trimmed ("2", "0.5").
func FormatLamports(lamports uint64) string {
	d := apd.NewWithBigInt(new(apd.BigInt).SetUint64(lamports), -9)
	d.Reduce(d)
	return d.Text('f')
}
