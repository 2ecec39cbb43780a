package metrics

import "time"

type WeeklyMetric struct {
	ID                 string    `json:"id"`
	WeekKey            string    `json:"weekKey"`
	UserID             int       `json:"userId"`
	LeadsCount         int       `json:"leadsCount" validate:"min=0"`
	DealsCount         int       `json:"dealsCount" validate:"min=0"`
	MP                 float64   `json:"mp" validate:"min=0"`
	TonsCount          float64   `json:"tonsCount" validate:"min=0"`
	DealsInNegotiation int       `json:"dealsInNegotiation" validate:"min=0"`
	BuyersCount        int       `json:"buyersCount" validate:"min=0"`
	SuppliersCount     int       `json:"suppliersCount" validate:"min=0"`
	LeadsProcessed     int       `json:"leadsProcessed" validate:"min=0"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// MonthlyMetric carries finance numbers for one month. TonsPerDeal and
// MPPerDeal are derived on save.
type MonthlyMetric struct {
	ID          string    `json:"id"`
	MonthKey    string    `json:"monthKey"`
	UserID      int       `json:"userId"`
	Revenue     float64   `json:"revenue" validate:"min=0"`
	NetProfit   float64   `json:"netProfit" validate:"min=0"`
	SK          float64   `json:"sk" validate:"min=0"`
	MP          float64   `json:"mp" validate:"min=0"`
	TonsCount   float64   `json:"tonsCount" validate:"min=0"`
	DealsCount  int       `json:"dealsCount" validate:"min=0"`
	TonsPerDeal float64   `json:"tonsPerDeal"`
	MPPerDeal   float64   `json:"mpPerDeal"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
