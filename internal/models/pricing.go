package models

type LocationMode string

const (
	LocationStore LocationMode = "store"
	LocationHome  LocationMode = "home"
)

type MemberTier string

const (
	TierNormal  MemberTier = "normal"
	TierVIP     MemberTier = "vip"
	TierPremium MemberTier = "premium"
)

type Package struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sessions int    `json:"sessions"`
}

type PricingContext struct {
	Coach      *Coach
	Package    *Package
	Goals      []string
	Location   LocationMode
	Tier       MemberTier
	CouponCode string
}

type PriceBreakdown struct {
	UnitPrice          float64 `json:"unit_price"`
	Sessions           int     `json:"sessions"`
	BasePrice          float64 `json:"base_price"`
	PackageFactor      float64 `json:"package_factor"`
	PackageDiscount    float64 `json:"package_discount"`
	GoalFactor         float64 `json:"goal_factor"`
	GoalSurcharge      float64 `json:"goal_surcharge"`
	LocationSurcharge  float64 `json:"location_surcharge"`
	MembershipDiscount float64 `json:"membership_discount"`
	CouponDiscount     float64 `json:"coupon_discount"`
	CouponApplied      string  `json:"coupon_applied,omitempty"`
	CouponMessage      string  `json:"coupon_message,omitempty"`
	FinalPrice         float64 `json:"final_price"`
	Savings            float64 `json:"savings"`
	SavingsPercent     float64 `json:"savings_percent"`
}
