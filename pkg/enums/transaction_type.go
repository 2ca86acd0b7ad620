package enums

import "fmt"

// TransactionType maps to the transaction_type_enum enum in Postgres.
type TransactionType string

const (
	TransactionTypeDeposit          TransactionType = "deposit"
	TransactionTypeWithdrawal       TransactionType = "withdrawal"
	TransactionTypeGoldPurchase     TransactionType = "gold_purchase"
	TransactionTypeGoldSale         TransactionType = "gold_sale"
	TransactionTypePhysicalDelivery TransactionType = "physical_delivery"
	TransactionTypeRefund           TransactionType = "refund"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeDeposit,
	TransactionTypeWithdrawal,
	TransactionTypeGoldPurchase,
	TransactionTypeGoldSale,
	TransactionTypePhysicalDelivery,
	TransactionTypeRefund,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsInstant reports whether the type settles in the same request rather than
// waiting for admin review.
func (t TransactionType) IsInstant() bool {
	return t == TransactionTypeGoldPurchase || t == TransactionTypeGoldSale
}

// IsGoldTrade reports whether the type exchanges cash for gold grams.
func (t TransactionType) IsGoldTrade() bool {
	return t == TransactionTypeGoldPurchase || t == TransactionTypeGoldSale
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
