package affiliate

import "github.com/shopspring/decimal"

// Transaction is the first qualifying sale reported by the platform
type Transaction struct {
	BrandName   string          `json:"brandName"`
	ProductName string          `json:"productName"`
	Amount      decimal.Decimal `json:"amount"`
	Commission  decimal.Decimal `json:"commission"`
	Date        string          `json:"date"`
}
