// Package money переводит суммы между копейками хранения и основными единицами отображения.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// ToMajor возвращает сумму в основных единицах валюты (центы / 100).
func ToMajor(cents int64) float64 {
	return decimal.NewFromInt(cents).Shift(-2).InexactFloat64()
}

// FromMajor переводит положительную сумму в основных единицах в центы с округлением.
func FromMajor(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}

	cents := decimal.NewFromFloat(amount).Mul(hundred).Round(0)
	if !cents.IsPositive() || cents.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, ErrInvalidAmount
	}

	return cents.IntPart(), nil
}

// Percent возвращает долю part от whole в процентах, округленную до places знаков.
// При нулевом whole возвращает 0.
func Percent(part, whole int64, places int32) float64 {
	if whole == 0 {
		return 0
	}

	return decimal.NewFromInt(part).
		Mul(hundred).
		Div(decimal.NewFromInt(whole)).
		Round(places).
		InexactFloat64()
}
