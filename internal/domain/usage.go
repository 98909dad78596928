package domain

import "github.com/shopspring/decimal"

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	Cost             decimal.Decimal
}

func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + o.PromptTokens,
		CompletionTokens: u.CompletionTokens + o.CompletionTokens,
		Cost:             u.Cost.Add(o.Cost),
	}
}

func (u Usage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}
