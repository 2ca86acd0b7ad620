package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

// Direction says which way a leg moves an asset balance.
type Direction int

const (
	Debit Direction = iota
	Credit
)

func (d Direction) String() string {
	if d == Debit {
		return "debit"
	}
	return "credit"
}

// Inverse returns the opposite direction; reversing a transaction runs its
// legs through this, so forward and reverse math can never drift apart.
func (d Direction) Inverse() Direction {
	if d == Debit {
		return Credit
	}
	return Debit
}

// assetKind selects which balance dimension a leg touches: the transaction's
// cash currency or the gold-gram balance.
type assetKind int

const (
	cashAsset assetKind = iota
	goldAsset
)

// amountTerm names the expression a leg's magnitude is derived from.
type amountTerm int

const (
	termNet          amountTerm = iota // amount - fee
	termGrossPlusFee                   // amount + fee
	termFee                            // fee only
	termGrams                          // gold grams
)

// legRule is one declarative side of a transaction type's balance effect.
type legRule struct {
	kind      assetKind
	direction Direction
	amount    amountTerm
}

// ruleTable declares the forward balance effect of every transaction type.
// Refund has no rules of its own: a refund entry records the reversal of its
// original transaction, executed by running the original's rules inverted.
var ruleTable = map[enums.TransactionType][]legRule{
	enums.TransactionTypeDeposit: {
		{kind: cashAsset, direction: Credit, amount: termNet},
	},
	enums.TransactionTypeWithdrawal: {
		{kind: cashAsset, direction: Debit, amount: termGrossPlusFee},
	},
	enums.TransactionTypeGoldPurchase: {
		{kind: cashAsset, direction: Debit, amount: termGrossPlusFee},
		{kind: goldAsset, direction: Credit, amount: termGrams},
	},
	enums.TransactionTypeGoldSale: {
		{kind: goldAsset, direction: Debit, amount: termGrams},
		{kind: cashAsset, direction: Credit, amount: termNet},
	},
	enums.TransactionTypePhysicalDelivery: {
		{kind: goldAsset, direction: Debit, amount: termGrams},
		{kind: cashAsset, direction: Debit, amount: termFee},
	},
}

// Leg is a resolved balance mutation: one asset and the magnitude to move.
type Leg struct {
	Asset     enums.Asset
	Direction Direction
	Amount    decimal.Decimal
}

// Delta returns the signed balance change the leg produces.
func (l Leg) Delta() decimal.Decimal {
	if l.Direction == Debit {
		return l.Amount.Neg()
	}
	return l.Amount
}

// forwardLegs resolves the rule table against a transaction's recorded
// amounts. Zero-magnitude legs (e.g. a waived fee) are dropped; a negative
// resolved magnitude means corrupt input and is rejected.
func forwardLegs(txn *models.Transaction) ([]Leg, error) {
	rules, ok := ruleTable[txn.Type]
	if !ok {
		return nil, fmt.Errorf("no ledger rules for transaction type %q", txn.Type)
	}

	legs := make([]Leg, 0, len(rules))
	for _, rule := range rules {
		asset := txn.Currency
		if rule.kind == goldAsset {
			asset = enums.AssetGold
		}

		magnitude, err := resolveTerm(txn, rule.amount)
		if err != nil {
			return nil, err
		}
		magnitude = magnitude.Round(asset.Precision())

		if magnitude.IsZero() && rule.amount == termFee {
			continue
		}
		if !magnitude.IsPositive() {
			return nil, fmt.Errorf("%s leg of %s resolves to non-positive amount %s",
				asset, txn.Type, magnitude)
		}

		legs = append(legs, Leg{Asset: asset, Direction: rule.direction, Amount: magnitude})
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("transaction %s resolves to no ledger legs", txn.ID)
	}
	return legs, nil
}

// reverseLegs derives the exact counter-mutation of a transaction's forward
// effect by inverting each leg's direction.
func reverseLegs(txn *models.Transaction) ([]Leg, error) {
	legs, err := forwardLegs(txn)
	if err != nil {
		return nil, err
	}
	reversed := make([]Leg, len(legs))
	for i, leg := range legs {
		reversed[i] = Leg{Asset: leg.Asset, Direction: leg.Direction.Inverse(), Amount: leg.Amount}
	}
	return reversed, nil
}

func resolveTerm(txn *models.Transaction, term amountTerm) (decimal.Decimal, error) {
	switch term {
	case termNet:
		return txn.Amount.Sub(txn.Fee), nil
	case termGrossPlusFee:
		return txn.Amount.Add(txn.Fee), nil
	case termFee:
		return txn.Fee, nil
	case termGrams:
		return txn.Grams, nil
	}
	return decimal.Zero, fmt.Errorf("unknown amount term %d", term)
}
