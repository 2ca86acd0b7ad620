package enums

import "fmt"

// Asset identifies a balance dimension on an account: a fiat cash currency
// or gold measured in grams.
type Asset string

const (
	AssetUSD Asset = "USD"
	AssetEUR Asset = "EUR"
	AssetGBP Asset = "GBP"
	AssetEGP Asset = "EGP"
	AssetAED Asset = "AED"
	AssetSAR Asset = "SAR"
	// AssetGold is the gold-gram balance. The XAU code is borrowed from the
	// ISO currency list but the unit here is grams, not troy ounces.
	AssetGold Asset = "XAU"
)

var validAssets = []Asset{
	AssetUSD,
	AssetEUR,
	AssetGBP,
	AssetEGP,
	AssetAED,
	AssetSAR,
	AssetGold,
}

// AllAssets lists every supported asset, fiat plus gold.
func AllAssets() []Asset {
	out := make([]Asset, len(validAssets))
	copy(out, validAssets)
	return out
}

// CashCurrencies lists the fiat assets an account can hold.
func CashCurrencies() []Asset {
	return []Asset{AssetUSD, AssetEUR, AssetGBP, AssetEGP, AssetAED, AssetSAR}
}

// String implements fmt.Stringer.
func (a Asset) String() string {
	return string(a)
}

// IsValid reports whether the asset is recognized.
func (a Asset) IsValid() bool {
	for _, candidate := range validAssets {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsCash reports whether the asset is a fiat currency.
func (a Asset) IsCash() bool {
	return a.IsValid() && a != AssetGold
}

// Precision returns the number of decimal places amounts in this asset are
// rounded to: 2 for fiat, 6 for gold grams.
func (a Asset) Precision() int32 {
	if a == AssetGold {
		return 6
	}
	return 2
}

// ParseAsset converts a raw string into an Asset.
func ParseAsset(value string) (Asset, error) {
	for _, candidate := range validAssets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset %q", value)
}

// ParseCashCurrency converts a raw string into a fiat Asset, rejecting gold.
func ParseCashCurrency(value string) (Asset, error) {
	asset, err := ParseAsset(value)
	if err != nil {
		return "", err
	}
	if !asset.IsCash() {
		return "", fmt.Errorf("asset %q is not a cash currency", value)
	}
	return asset, nil
}
