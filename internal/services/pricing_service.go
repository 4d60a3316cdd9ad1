package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

const (
	homeSurchargeRate = 0.15
	vipDiscountRate   = 0.15
	premiumDiscount   = 0.25
)

// Goal surcharges stack multiplicatively.
var goalFactors = map[string]float64{
	"功能康复":  1.1,
	"体态修复":  1.05,
	"青少年训练": 1.08,
}

var standardPackages = []models.Package{
	{ID: "single", Name: "单次体验", Sessions: 1},
	{ID: "p8", Name: "8节课包", Sessions: 8},
	{ID: "p12", Name: "12节课包", Sessions: 12},
	{ID: "p20", Name: "20节课包", Sessions: 20},
}

type CoachFinder interface {
	Coach(ctx context.Context, id int64) (*models.Coach, error)
}

type PricingService struct {
	coachRepo CoachFinder
	now       func() time.Time
}

func NewPricingService(coachRepo CoachFinder) *PricingService {
	return &PricingService{coachRepo: coachRepo, now: time.Now}
}

type QuoteInput struct {
	CoachID    int64
	PackageID  string
	Sessions   int
	Goals      []string
	Location   models.LocationMode
	Tier       models.MemberTier
	CouponCode string
}

func Packages() []models.Package {
	out := make([]models.Package, len(standardPackages))
	copy(out, standardPackages)
	return out
}

func FindPackage(id string) (models.Package, bool) {
	for _, pkg := range standardPackages {
		if pkg.ID == strings.TrimSpace(id) {
			return pkg, true
		}
	}
	return models.Package{}, false
}

func (s *PricingService) Quote(ctx context.Context, input QuoteInput) (*models.PriceBreakdown, error) {
	pkg, err := resolvePackage(input)
	if err != nil {
		return nil, err
	}

	coach, err := s.coachRepo.Coach(ctx, input.CoachID)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}

	breakdown := CalculatePrice(models.PricingContext{
		Coach:      coach,
		Package:    &pkg,
		Goals:      input.Goals,
		Location:   input.Location,
		Tier:       input.Tier,
		CouponCode: input.CouponCode,
	}, s.now())
	return &breakdown, nil
}

func resolvePackage(input QuoteInput) (models.Package, error) {
	if input.PackageID != "" {
		pkg, ok := FindPackage(input.PackageID)
		if !ok {
			return models.Package{}, ErrInvalidInput
		}
		return pkg, nil
	}
	if input.Sessions <= 0 {
		return models.Package{}, ErrInvalidInput
	}
	return models.Package{ID: "custom", Name: "自定义课包", Sessions: input.Sessions}, nil
}

// CalculatePrice applies, in order: package discount, goal surcharges, home
// surcharge, membership discount and coupon. Each step works on the running
// subtotal left by the previous one.
func CalculatePrice(pctx models.PricingContext, now time.Time) models.PriceBreakdown {
	unitPrice := models.DefaultCoachPrice
	if pctx.Coach != nil && pctx.Coach.Price > 0 {
		unitPrice = pctx.Coach.Price
	}
	sessions := 1
	if pctx.Package != nil && pctx.Package.Sessions > 0 {
		sessions = pctx.Package.Sessions
	}

	basePrice := unitPrice * float64(sessions)

	packageFactor := PackageFactor(sessions)
	subtotal := basePrice * packageFactor
	packageDiscount := basePrice - subtotal

	goalFactor := GoalFactor(pctx.Goals)
	goalSurcharge := subtotal * (goalFactor - 1)
	subtotal += goalSurcharge

	locationSurcharge := 0.0
	if pctx.Location == models.LocationHome {
		locationSurcharge = subtotal * homeSurchargeRate
	}
	subtotal += locationSurcharge

	membershipDiscount := subtotal * MembershipDiscountRate(pctx.Tier)
	subtotal -= membershipDiscount

	coupon, applied, message := couponDiscount(pctx.CouponCode, subtotal, now)
	finalPrice := math.Max(0, subtotal-coupon)

	savings := math.Max(0, basePrice-finalPrice)
	savingsPercent := 0.0
	if basePrice > 0 {
		savingsPercent = savings / basePrice * 100
	}

	return models.PriceBreakdown{
		UnitPrice:          round2(unitPrice),
		Sessions:           sessions,
		BasePrice:          round2(basePrice),
		PackageFactor:      packageFactor,
		PackageDiscount:    round2(packageDiscount),
		GoalFactor:         round4(goalFactor),
		GoalSurcharge:      round2(goalSurcharge),
		LocationSurcharge:  round2(locationSurcharge),
		MembershipDiscount: round2(membershipDiscount),
		CouponDiscount:     round2(coupon),
		CouponApplied:      applied,
		CouponMessage:      message,
		FinalPrice:         round2(finalPrice),
		Savings:            round2(savings),
		SavingsPercent:     round2(savingsPercent),
	}
}

func PackageFactor(sessions int) float64 {
	switch {
	case sessions >= 20:
		return 0.85
	case sessions >= 12:
		return 0.9
	case sessions >= 8:
		return 0.95
	default:
		return 1.0
	}
}

func GoalFactor(goals []string) float64 {
	factor := 1.0
	for _, goal := range nonEmpty(goals) {
		if f, ok := goalFactors[goal]; ok {
			factor *= f
		}
	}
	return factor
}

func MembershipDiscountRate(tier models.MemberTier) float64 {
	switch tier {
	case models.TierPremium:
		return premiumDiscount
	case models.TierVIP:
		return vipDiscountRate
	default:
		return 0
	}
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
