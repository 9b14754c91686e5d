package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the fixed precision of every stored money value.
const MoneyPlaces = 2

// MinPasswordLength is the floor applied to branch password changes.
const MinPasswordLength = 6

// IsValidAmount reports whether amount is a usable positive money value.
// Excess precision is NOT rejected here; the ledger rounds at computation
// time so the stored amount and the balance delta cannot drift apart.
func IsValidAmount(amount decimal.Decimal) bool {
	return amount.IsPositive()
}

// RoundMoney normalizes a money value to the fixed 2-place precision.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}

// IsValidBranchName rejects empty or whitespace-only congregation names.
func IsValidBranchName(name string) bool {
	return strings.TrimSpace(name) != ""
}

// IsValidPassword enforces the minimum credential length for branch
// password changes.
func IsValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}
