package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind_Known(t *testing.T) {
	for _, name := range []string{"TITHE", "OFFERING", "DEPOSIT", "WITHDRAWAL", "GENERAL_CASH", "OTHER"} {
		k, ok := ParseKind(name)
		require.True(t, ok, name)
		assert.Equal(t, name, string(k))
	}
}

func TestParseKind_Unknown(t *testing.T) {
	_, ok := ParseKind("DIVIDEND")
	assert.False(t, ok)

	_, ok = ParseKind("tithe")
	assert.False(t, ok, "kind names are case sensitive")
}

func TestKindRouting(t *testing.T) {
	assert.True(t, KindTithe.RoutesToGeneralCash())
	assert.True(t, KindOffering.RoutesToGeneralCash())
	assert.False(t, KindDeposit.RoutesToGeneralCash())
	assert.False(t, KindWithdrawal.RoutesToGeneralCash())
	assert.False(t, KindOther.RoutesToGeneralCash())

	assert.True(t, KindDeposit.RequiresFund())
	assert.True(t, KindWithdrawal.RequiresFund())
	assert.True(t, KindOther.RequiresFund())
	assert.False(t, KindTithe.RequiresFund())
}

func TestKindPostable(t *testing.T) {
	assert.True(t, KindTithe.Postable())
	assert.True(t, KindOffering.Postable())
	assert.True(t, KindDeposit.Postable())
	assert.True(t, KindWithdrawal.Postable())
	assert.True(t, KindOther.Postable())
	assert.False(t, KindGeneralCash.Postable(), "GENERAL_CASH labels the system fund, entries never carry it")
}

func TestKindApply(t *testing.T) {
	balance := decimal.NewFromInt(100)
	amount := decimal.NewFromInt(30)

	assert.True(t, decimal.NewFromInt(130).Equal(KindTithe.Apply(balance, amount)))
	assert.True(t, decimal.NewFromInt(130).Equal(KindDeposit.Apply(balance, amount)))
	assert.True(t, decimal.NewFromInt(70).Equal(KindWithdrawal.Apply(balance, amount)))

	// Withdrawals may compute a negative result; the caller rejects it.
	over := decimal.NewFromInt(150)
	assert.True(t, KindWithdrawal.Apply(balance, over).IsNegative())
}

func TestRevenueKinds(t *testing.T) {
	assert.Equal(t, []EntryKind{KindTithe, KindOffering}, RevenueKinds())
}
