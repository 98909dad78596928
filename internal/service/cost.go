package service

import (
	"github.com/shopspring/decimal"

	"github.com/set-night/parley/internal/config"
	"github.com/set-night/parley/internal/domain"
)

var perMillion = decimal.NewFromInt(1_000_000)

// CalculateCost prices token usage with per-1M-token rates.
func CalculateCost(promptTokens, completionTokens int, pricing config.Pricing) decimal.Decimal {
	promptCost := decimal.NewFromInt(int64(promptTokens)).Mul(pricing.PromptPerM).Div(perMillion)
	completionCost := decimal.NewFromInt(int64(completionTokens)).Mul(pricing.CompletionPerM).Div(perMillion)
	return promptCost.Add(completionCost)
}

// PriceUsage fills in the cost of u.
func PriceUsage(u domain.Usage, pricing config.Pricing) domain.Usage {
	if pricing.IsFree() {
		return u
	}
	u.Cost = CalculateCost(u.PromptTokens, u.CompletionTokens, pricing)
	return u
}
