package models

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Coupon struct {
	Code       string       `json:"code"`
	Type       DiscountType `json:"type"`
	Value      float64      `json:"value"`
	MinOrder   float64      `json:"min_order"`
	ValidUntil time.Time    `json:"valid_until"`
}
