package domain

import (
	"fmt"
	"time"
)

type BudgetLineItem struct {
	ID              string
	Category        string
	Axis            string
	Label           string
	PlannedAmount   float64
	CommittedAmount float64
	ActualAmount    float64
	CreatedAt       time.Time
}

// DedupeKey identifies rows that are exact duplicates of one another.
func (b *BudgetLineItem) DedupeKey() string {
	return fmt.Sprintf("%s|%s|%s|%.4f|%.4f|%.4f",
		b.Category, b.Axis, b.Label, b.PlannedAmount, b.CommittedAmount, b.ActualAmount)
}
