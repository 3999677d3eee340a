package dto

import "github.com/shopspring/decimal"

type TransactionCreateRequest struct {
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category" validate:"required,min=1"`
	Description *string         `json:"description,omitempty"`
	Date        string          `json:"date" validate:"required"`
	ReceiptID   *string         `json:"receiptId,omitempty"`
}

type TransactionUpdateRequest struct {
	Type        *string          `json:"type,omitempty" validate:"omitempty,oneof=income expense"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,min=1"`
	Description *string          `json:"description,omitempty"`
	Date        *string          `json:"date,omitempty"`
	ReceiptID   *string          `json:"receiptId,omitempty"`
}

type TransactionResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
	ReceiptID   *string `json:"receiptId,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type TransactionStatsResponse struct {
	TotalIncome      float64 `json:"totalIncome"`
	TotalExpenses    float64 `json:"totalExpenses"`
	NetBalance       float64 `json:"netBalance"`
	TransactionCount int     `json:"transactionCount"`
	IncomeCount      int     `json:"incomeCount"`
	ExpenseCount     int     `json:"expenseCount"`
}

type MonthlyStatsResponse struct {
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	TotalIncome      float64 `json:"totalIncome"`
	TotalExpenses    float64 `json:"totalExpenses"`
	NetBalance       float64 `json:"netBalance"`
	TransactionCount int     `json:"transactionCount"`
}
