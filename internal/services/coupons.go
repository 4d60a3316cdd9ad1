package services

import (
	"strings"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

var couponTable = []models.Coupon{
	{
		Code:       "NEWUSER100",
		Type:       models.DiscountFixed,
		Value:      100,
		MinOrder:   500,
		ValidUntil: time.Date(2099, 12, 31, 23, 59, 59, 0, time.UTC),
	},
	{
		Code:       "FIT10",
		Type:       models.DiscountPercentage,
		Value:      10,
		MinOrder:   1000,
		ValidUntil: time.Date(2099, 12, 31, 23, 59, 59, 0, time.UTC),
	},
	{
		Code:       "VIP300",
		Type:       models.DiscountFixed,
		Value:      300,
		MinOrder:   3000,
		ValidUntil: time.Date(2099, 12, 31, 23, 59, 59, 0, time.UTC),
	},
	{
		Code:       "SUMMER15",
		Type:       models.DiscountPercentage,
		Value:      15,
		MinOrder:   0,
		ValidUntil: time.Date(2024, 9, 30, 23, 59, 59, 0, time.UTC),
	},
}

func Coupons() []models.Coupon {
	out := make([]models.Coupon, len(couponTable))
	copy(out, couponTable)
	return out
}

func FindCoupon(code string) (models.Coupon, bool) {
	code = strings.TrimSpace(code)
	for _, coupon := range couponTable {
		if strings.EqualFold(coupon.Code, code) {
			return coupon, true
		}
	}
	return models.Coupon{}, false
}

// couponDiscount returns the discount a coupon grants on subtotal together
// with a message explaining why it was not applied.
func couponDiscount(code string, subtotal float64, now time.Time) (float64, string, string) {
	if strings.TrimSpace(code) == "" {
		return 0, "", ""
	}
	coupon, ok := FindCoupon(code)
	if !ok {
		return 0, "", "优惠券不存在"
	}
	if now.After(coupon.ValidUntil) {
		return 0, "", "优惠券已过期"
	}
	if subtotal < coupon.MinOrder {
		return 0, "", "未达到优惠券最低消费"
	}

	discount := 0.0
	switch coupon.Type {
	case models.DiscountPercentage:
		discount = subtotal * coupon.Value / 100
	case models.DiscountFixed:
		discount = coupon.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount, coupon.Code, ""
}
