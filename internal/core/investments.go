package core

import (
	"math"
	"strings"
)

type (
	FixedIncomeKind    string
	VariableIncomeKind string

	// FixedIncomeAsset is a bond-like position growing at an annual rate.
	FixedIncomeAsset struct {
		Meta
		Name         string          `json:"name"`
		Issuer       string          `json:"issuer,omitempty"`
		Kind         FixedIncomeKind `json:"kind"`
		Principal    Money           `json:"principal"`
		AnnualRate   float64         `json:"annualRate"`
		PurchaseDate Date            `json:"purchaseDate"`
		MaturityDate Date            `json:"maturityDate"`
	}

	// VariableIncomeAsset is a quoted position (stocks, funds, crypto).
	VariableIncomeAsset struct {
		Meta
		Ticker       string             `json:"ticker"`
		Name         string             `json:"name,omitempty"`
		Kind         VariableIncomeKind `json:"kind"`
		Quantity     float64            `json:"quantity"`
		AveragePrice Money              `json:"averagePrice"`
		CurrentPrice Money              `json:"currentPrice"`
	}
)

const (
	CDB       FixedIncomeKind = "cdb"
	LCI       FixedIncomeKind = "lci"
	LCA       FixedIncomeKind = "lca"
	Tesouro   FixedIncomeKind = "tesouro"
	Debenture FixedIncomeKind = "debenture"
	OtherBond FixedIncomeKind = "other"

	Stock       VariableIncomeKind = "stock"
	FII         VariableIncomeKind = "fii"
	ETF         VariableIncomeKind = "etf"
	Crypto      VariableIncomeKind = "crypto"
	OtherQuoted VariableIncomeKind = "other"
)

func (a *FixedIncomeAsset) Normalize() {
	a.Name = trim(a.Name)
	if a.Kind == "" {
		a.Kind = OtherBond
	}
}

func (a FixedIncomeAsset) Validate() error {
	if err := checkText(a.Name, ErrEmptyName); err != nil {
		return err
	}
	if !oneOf(a.Kind, CDB, LCI, LCA, Tesouro, Debenture, OtherBond) {
		return ErrInvalidType
	}
	if err := a.Principal.Validate(); err != nil {
		return err
	}
	if math.IsNaN(a.AnnualRate) || a.AnnualRate < 0 || a.AnnualRate > 1000 {
		return ErrInvalidRate
	}
	return checkRange(a.PurchaseDate, a.MaturityDate)
}

func (a *VariableIncomeAsset) Normalize() {
	a.Ticker = strings.ToUpper(trim(a.Ticker))
	if a.Kind == "" {
		a.Kind = Stock
	}
}

func (a VariableIncomeAsset) Validate() error {
	if err := checkText(a.Ticker, ErrEmptyName); err != nil {
		return err
	}
	if !oneOf(a.Kind, Stock, FII, ETF, Crypto, OtherQuoted) {
		return ErrInvalidType
	}
	if math.IsNaN(a.Quantity) || math.IsInf(a.Quantity, 0) || a.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if err := a.AveragePrice.Validate(); err != nil {
		return err
	}
	if a.CurrentPrice.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Price is the last known quote, falling back to the average price.
func (a VariableIncomeAsset) Price() Money {
	if a.CurrentPrice.IsZero() {
		return a.AveragePrice
	}
	return a.CurrentPrice
}
