package domain

import "github.com/shopspring/decimal"

// EntryKind is the closed set of ledger entry categories. Sign and fund
// routing are carried here as data so no caller ever branches on raw
// type-name strings.
type EntryKind string

const (
	KindTithe       EntryKind = "TITHE"
	KindOffering    EntryKind = "OFFERING"
	KindDeposit     EntryKind = "DEPOSIT"
	KindWithdrawal  EntryKind = "WITHDRAWAL"
	KindGeneralCash EntryKind = "GENERAL_CASH"
	KindOther       EntryKind = "OTHER"
)

type kindSpec struct {
	sign            int  // +1 credits the fund, -1 debits it
	routesToGeneral bool // entry always lands on the branch's general-cash fund
	requiresFund    bool // caller must name an existing fund
	postable        bool // accepted by PostEntry
}

var kindSpecs = map[EntryKind]kindSpec{
	KindTithe:       {sign: 1, routesToGeneral: true, postable: true},
	KindOffering:    {sign: 1, routesToGeneral: true, postable: true},
	KindDeposit:     {sign: 1, requiresFund: true, postable: true},
	KindWithdrawal:  {sign: -1, requiresFund: true, postable: true},
	KindOther:       {sign: 1, requiresFund: true, postable: true},
	KindGeneralCash: {sign: 1},
}

// ParseKind maps a request type string onto the enumeration.
func ParseKind(name string) (EntryKind, bool) {
	k := EntryKind(name)
	_, ok := kindSpecs[k]
	return k, ok
}

func (k EntryKind) Sign() int                 { return kindSpecs[k].sign }
func (k EntryKind) RoutesToGeneralCash() bool { return kindSpecs[k].routesToGeneral }
func (k EntryKind) RequiresFund() bool        { return kindSpecs[k].requiresFund }
func (k EntryKind) Postable() bool            { return kindSpecs[k].postable }

// Apply returns balance adjusted by amount in this kind's direction.
func (k EntryKind) Apply(balance, amount decimal.Decimal) decimal.Decimal {
	if k.Sign() < 0 {
		return balance.Sub(amount)
	}
	return balance.Add(amount)
}

// RevenueKinds are the kinds whose monthly totals the archiver snapshots.
func RevenueKinds() []EntryKind {
	return []EntryKind{KindTithe, KindOffering}
}

// PostableKinds lists the kinds accepted by the posting form, in display
// order.
func PostableKinds() []EntryKind {
	return []EntryKind{KindTithe, KindOffering, KindDeposit, KindWithdrawal, KindOther}
}
