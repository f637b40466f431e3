package analytics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DayBucket is the summed hours for one entry date
type DayBucket struct {
	Date  string          `json:"date"`
	Hours decimal.Decimal `json:"hours"`
}

// RoleBucket is the summed hours and amount for one rate role
type RoleBucket struct {
	RoleID uuid.UUID       `json:"role_id"`
	Name   string          `json:"name"`
	Hours  decimal.Decimal `json:"hours"`
	Amount decimal.Decimal `json:"amount"`
}

// TabAnalyticsResponse carries the aggregations behind a tab's charts
type TabAnalyticsResponse struct {
	TabID       uuid.UUID       `json:"tab_id"`
	ByDay       []DayBucket     `json:"by_day"`
	ByRole      []RoleBucket    `json:"by_role"`
	TotalHours  decimal.Decimal `json:"total_hours"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
