package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahabi-gold/zahabi-backend/pkg/db/models"
	"github.com/zahabi-gold/zahabi-backend/pkg/enums"
)

func buildTxn(txType enums.TransactionType, amount, fee, grams string) *models.Transaction {
	return &models.Transaction{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Type:      txType,
		Currency:  enums.AssetUSD,
		Amount:    decimal.RequireFromString(amount),
		Fee:       decimal.RequireFromString(fee),
		Grams:     decimal.RequireFromString(grams),
	}
}

func TestForwardLegsPerType(t *testing.T) {
	cases := []struct {
		name string
		txn  *models.Transaction
		want []Leg
	}{
		{
			name: "deposit credits amount minus fee",
			txn:  buildTxn(enums.TransactionTypeDeposit, "100.00", "1.00", "0"),
			want: []Leg{
				{Asset: enums.AssetUSD, Direction: Credit, Amount: decimal.RequireFromString("99.00")},
			},
		},
		{
			name: "withdrawal debits amount plus fee",
			txn:  buildTxn(enums.TransactionTypeWithdrawal, "100.00", "0.50", "0"),
			want: []Leg{
				{Asset: enums.AssetUSD, Direction: Debit, Amount: decimal.RequireFromString("100.50")},
			},
		},
		{
			name: "gold purchase debits cash and credits grams",
			txn:  buildTxn(enums.TransactionTypeGoldPurchase, "655.00", "6.55", "10"),
			want: []Leg{
				{Asset: enums.AssetUSD, Direction: Debit, Amount: decimal.RequireFromString("661.55")},
				{Asset: enums.AssetGold, Direction: Credit, Amount: decimal.RequireFromString("10")},
			},
		},
		{
			name: "gold sale debits grams and credits net cash",
			txn:  buildTxn(enums.TransactionTypeGoldSale, "655.00", "6.55", "10"),
			want: []Leg{
				{Asset: enums.AssetGold, Direction: Debit, Amount: decimal.RequireFromString("10")},
				{Asset: enums.AssetUSD, Direction: Credit, Amount: decimal.RequireFromString("648.45")},
			},
		},
		{
			name: "physical delivery debits grams and the fee",
			txn:  buildTxn(enums.TransactionTypePhysicalDelivery, "0", "25.00", "50"),
			want: []Leg{
				{Asset: enums.AssetGold, Direction: Debit, Amount: decimal.RequireFromString("50")},
				{Asset: enums.AssetUSD, Direction: Debit, Amount: decimal.RequireFromString("25.00")},
			},
		},
		{
			name: "waived delivery fee drops the cash leg",
			txn:  buildTxn(enums.TransactionTypePhysicalDelivery, "0", "0", "50"),
			want: []Leg{
				{Asset: enums.AssetGold, Direction: Debit, Amount: decimal.RequireFromString("50")},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			legs, err := forwardLegs(tc.txn)
			require.NoError(t, err)
			require.Len(t, legs, len(tc.want))
			for i, want := range tc.want {
				assert.Equal(t, want.Asset, legs[i].Asset)
				assert.Equal(t, want.Direction, legs[i].Direction)
				assert.True(t, want.Amount.Equal(legs[i].Amount),
					"leg %d: want %s got %s", i, want.Amount, legs[i].Amount)
			}
		})
	}
}

func TestForwardLegsRoundsToAssetPrecision(t *testing.T) {
	txn := buildTxn(enums.TransactionTypeGoldSale, "655.004", "0", "10.1234567")
	legs, err := forwardLegs(txn)
	require.NoError(t, err)
	require.Len(t, legs, 2)
	assert.True(t, legs[0].Amount.Equal(decimal.RequireFromString("10.123457")), "gold rounds to 6dp, got %s", legs[0].Amount)
	assert.True(t, legs[1].Amount.Equal(decimal.RequireFromString("655.00")), "cash rounds to 2dp, got %s", legs[1].Amount)
}

func TestForwardLegsRejectsBadInput(t *testing.T) {
	t.Run("refund has no forward rules", func(t *testing.T) {
		_, err := forwardLegs(buildTxn(enums.TransactionTypeRefund, "10", "0", "0"))
		require.Error(t, err)
	})
	t.Run("fee exceeding deposit amount", func(t *testing.T) {
		_, err := forwardLegs(buildTxn(enums.TransactionTypeDeposit, "10.00", "15.00", "0"))
		require.Error(t, err)
	})
}

func TestReverseLegsMirrorForward(t *testing.T) {
	txn := buildTxn(enums.TransactionTypeGoldPurchase, "655.00", "6.55", "10")

	forward, err := forwardLegs(txn)
	require.NoError(t, err)
	reverse, err := reverseLegs(txn)
	require.NoError(t, err)
	require.Len(t, reverse, len(forward))

	sum := decimal.Zero
	for i := range forward {
		assert.Equal(t, forward[i].Asset, reverse[i].Asset)
		assert.Equal(t, forward[i].Direction.Inverse(), reverse[i].Direction)
		assert.True(t, forward[i].Amount.Equal(reverse[i].Amount))
		sum = sum.Add(forward[i].Delta()).Add(reverse[i].Delta())
	}
	assert.True(t, sum.IsZero(), "forward plus reverse must cancel, got %s", sum)
}

func TestDirectionInverse(t *testing.T) {
	assert.Equal(t, Credit, Debit.Inverse())
	assert.Equal(t, Debit, Credit.Inverse())
	assert.Equal(t, "debit", Debit.String())
	assert.Equal(t, "credit", Credit.String())
}
