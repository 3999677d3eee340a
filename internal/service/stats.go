package service

import (
	"sort"

	"github.com/leonberkemeier/Receiptly/internal/dto"
	"github.com/leonberkemeier/Receiptly/internal/models"

	"github.com/shopspring/decimal"
)

// summarize computes totals over the given transactions in one pass.
func summarize(transactions []*models.Transaction) *dto.TransactionStatsResponse {
	income, expenses := decimal.Zero, decimal.Zero
	stats := &dto.TransactionStatsResponse{TransactionCount: len(transactions)}

	for _, tx := range transactions {
		switch tx.Type {
		case models.TransactionTypeIncome:
			income = income.Add(tx.Amount)
			stats.IncomeCount++
		case models.TransactionTypeExpense:
			expenses = expenses.Add(tx.Amount)
			stats.ExpenseCount++
		}
	}

	stats.TotalIncome = income.InexactFloat64()
	stats.TotalExpenses = expenses.InexactFloat64()
	stats.NetBalance = income.Sub(expenses).InexactFloat64()
	return stats
}

type monthKey struct {
	year  int
	month int
}

type monthTotals struct {
	income   decimal.Decimal
	expenses decimal.Decimal
	count    int
}

// groupMonthly buckets transactions by the UTC calendar month of their date
// and returns one record per month in ascending order. Anything that is not
// income counts as an expense.
func groupMonthly(transactions []*models.Transaction) []dto.MonthlyStatsResponse {
	groups := make(map[monthKey]*monthTotals)
	for _, tx := range transactions {
		date := tx.Date.UTC()
		key := monthKey{year: date.Year(), month: int(date.Month())}
		totals, ok := groups[key]
		if !ok {
			totals = &monthTotals{income: decimal.Zero, expenses: decimal.Zero}
			groups[key] = totals
		}
		if tx.Type == models.TransactionTypeIncome {
			totals.income = totals.income.Add(tx.Amount)
		} else {
			totals.expenses = totals.expenses.Add(tx.Amount)
		}
		totals.count++
	}

	keys := make([]monthKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	result := make([]dto.MonthlyStatsResponse, 0, len(keys))
	for _, key := range keys {
		totals := groups[key]
		result = append(result, dto.MonthlyStatsResponse{
			Year:             key.year,
			Month:            key.month,
			TotalIncome:      totals.income.InexactFloat64(),
			TotalExpenses:    totals.expenses.InexactFloat64(),
			NetBalance:       totals.income.Sub(totals.expenses).InexactFloat64(),
			TransactionCount: totals.count,
		})
	}
	return result
}
