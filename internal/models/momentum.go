package models

import "time"

type MomentumRecord struct {
	ID          int64     `json:"id"`
	TokenID     string    `json:"tokenId"`
	PriceNow    float64   `json:"priceNow"`
	PriceMinus3 float64   `json:"priceMinus3"`
	PriceMinus7 float64   `json:"priceMinus7"`
	AccelLog    float64   `json:"accelLog"`
	ComputedAt  time.Time `json:"computedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}
