// Package domain contains the core types shared across the funding engine.
package domain

import (
	"fmt"
	"strings"
)

// AssetClass categorizes a supported asset.
type AssetClass string

const (
	AssetClassFiat       AssetClass = "fiat"
	AssetClassStablecoin AssetClass = "stablecoin"
	AssetClassCrypto     AssetClass = "crypto"
)

// Asset describes a supported asset and its display metadata.
type Asset struct {
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	Symbol   string     `json:"symbol"`
	Class    AssetClass `json:"class"`
	Decimals int        `json:"decimals"`
	Icon     string     `json:"icon"`
	PeggedTo string     `json:"pegged_to,omitempty"` // Fiat code a stablecoin tracks 1:1
	Locale   string     `json:"locale"`              // BCP 47 tag used for amount formatting
}

// SupportedAssets is the static registry of assets the funding flow accepts.
var SupportedAssets = map[string]Asset{
	"USDC": {Code: "USDC", Name: "USD Coin", Symbol: "$", Class: AssetClassStablecoin, Decimals: 2, Icon: "usdc.svg", PeggedTo: "USD", Locale: "en-US"},
	"USD":  {Code: "USD", Name: "US Dollar", Symbol: "$", Class: AssetClassFiat, Decimals: 2, Icon: "usd.svg", Locale: "en-US"},
	"COP":  {Code: "COP", Name: "Colombian Peso", Symbol: "$", Class: AssetClassFiat, Decimals: 0, Icon: "cop.svg", Locale: "es-CO"},
	"ETH":  {Code: "ETH", Name: "Ether", Symbol: "Ξ", Class: AssetClassCrypto, Decimals: 6, Icon: "eth.svg", Locale: "en-US"},
	"BTC":  {Code: "BTC", Name: "Bitcoin", Symbol: "₿", Class: AssetClassCrypto, Decimals: 8, Icon: "btc.svg", Locale: "en-US"},
}

// GetAsset looks up a supported asset by code (case-insensitive).
func GetAsset(code string) (Asset, error) {
	asset, ok := SupportedAssets[strings.ToUpper(code)]
	if !ok {
		return Asset{}, fmt.Errorf("unsupported asset: %s", code)
	}
	return asset, nil
}

// NormalizeFiat maps an asset code to the fiat code external rate providers
// understand. USD-pegged stablecoins are treated 1:1 as their peg currency.
// Returns the fiat code and true, or "" and false for non-fiat assets.
func NormalizeFiat(code string) (string, bool) {
	asset, err := GetAsset(code)
	if err != nil {
		return "", false
	}

	switch asset.Class {
	case AssetClassFiat:
		return asset.Code, true
	case AssetClassStablecoin:
		if asset.PeggedTo != "" {
			return asset.PeggedTo, true
		}
	}
	return "", false
}
