package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

var pricingNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type stubCoachFinder struct {
	coach *models.Coach
	err   error
}

func (s *stubCoachFinder) Coach(_ context.Context, _ int64) (*models.Coach, error) {
	return s.coach, s.err
}

func TestCalculatePricePackageDiscount(t *testing.T) {
	pkg, ok := FindPackage("p20")
	if !ok {
		t.Fatal("expected p20 package")
	}
	got := CalculatePrice(models.PricingContext{
		Coach:   &models.Coach{ID: 1, Price: 500},
		Package: &pkg,
	}, pricingNow)

	if got.BasePrice != 10000 {
		t.Fatalf("expected base 10000, got %.2f", got.BasePrice)
	}
	if got.PackageDiscount != 1500 || got.FinalPrice != 8500 {
		t.Fatalf("expected 1500 off to 8500, got %+v", got)
	}
	if got.Savings != 1500 || got.SavingsPercent != 15 {
		t.Fatalf("unexpected savings %+v", got)
	}
}

func TestCalculatePriceNoDiscountBelowEightSessions(t *testing.T) {
	got := CalculatePrice(models.PricingContext{
		Coach:   &models.Coach{Price: 500},
		Package: &models.Package{Sessions: 7},
	}, pricingNow)

	if got.PackageFactor != 1 || got.PackageDiscount != 0 {
		t.Fatalf("expected no package discount, got %+v", got)
	}
	if got.FinalPrice != 3500 {
		t.Fatalf("expected 3500, got %.2f", got.FinalPrice)
	}
}

func TestCalculatePriceDefaultsCoachAndSessions(t *testing.T) {
	got := CalculatePrice(models.PricingContext{}, pricingNow)

	if got.UnitPrice != models.DefaultCoachPrice || got.Sessions != 1 {
		t.Fatalf("expected default unit price and one session, got %+v", got)
	}
	if got.FinalPrice != models.DefaultCoachPrice {
		t.Fatalf("expected final %.2f, got %.2f", models.DefaultCoachPrice, got.FinalPrice)
	}
}

func TestCalculatePriceAppliesStepsInOrder(t *testing.T) {
	got := CalculatePrice(models.PricingContext{
		Coach:      &models.Coach{Price: 500},
		Package:    &models.Package{Sessions: 8},
		Goals:      []string{"功能康复"},
		Location:   models.LocationHome,
		Tier:       models.TierVIP,
		CouponCode: "newuser100",
	}, pricingNow)

	if got.BasePrice != 4000 || got.PackageDiscount != 200 {
		t.Fatalf("unexpected package step %+v", got)
	}
	if got.GoalSurcharge != 380 || got.LocationSurcharge != 627 {
		t.Fatalf("unexpected surcharges %+v", got)
	}
	if got.MembershipDiscount != 721.05 {
		t.Fatalf("expected membership discount 721.05, got %.2f", got.MembershipDiscount)
	}
	if got.CouponApplied != "NEWUSER100" || got.CouponDiscount != 100 {
		t.Fatalf("expected coupon NEWUSER100 for 100, got %+v", got)
	}
	if got.FinalPrice != 3985.95 || got.Savings != 14.05 || got.SavingsPercent != 0.35 {
		t.Fatalf("unexpected totals %+v", got)
	}
}

func TestCalculatePriceGoalFactorsStack(t *testing.T) {
	factor := GoalFactor([]string{"功能康复", "青少年训练", "增肌"})
	if round4(factor) != 1.188 {
		t.Fatalf("expected 1.188, got %.4f", factor)
	}
}

func TestCalculatePriceSurchargeCanExceedBase(t *testing.T) {
	got := CalculatePrice(models.PricingContext{
		Coach:    &models.Coach{Price: 400},
		Location: models.LocationHome,
	}, pricingNow)

	if got.FinalPrice != 460 {
		t.Fatalf("expected 460, got %.2f", got.FinalPrice)
	}
	if got.Savings != 0 || got.SavingsPercent != 0 {
		t.Fatalf("expected no savings, got %+v", got)
	}
}

func TestCalculatePriceCoupons(t *testing.T) {
	tests := []struct {
		name         string
		price        float64
		code         string
		wantDiscount float64
		wantMessage  string
	}{
		{name: "below minimum", price: 100, code: "FIT10", wantMessage: "未达到优惠券最低消费"},
		{name: "expired", price: 1000, code: "SUMMER15", wantMessage: "优惠券已过期"},
		{name: "unknown", price: 1000, code: "NOPE", wantMessage: "优惠券不存在"},
		{name: "percentage case insensitive", price: 1000, code: " fit10 ", wantDiscount: 100},
		{name: "fixed", price: 600, code: "NEWUSER100", wantDiscount: 100},
		{name: "empty", price: 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePrice(models.PricingContext{
				Coach:      &models.Coach{Price: tt.price},
				CouponCode: tt.code,
			}, pricingNow)

			if got.CouponDiscount != tt.wantDiscount {
				t.Fatalf("expected discount %.2f, got %.2f", tt.wantDiscount, got.CouponDiscount)
			}
			if got.CouponMessage != tt.wantMessage {
				t.Fatalf("expected message %q, got %q", tt.wantMessage, got.CouponMessage)
			}
			if got.FinalPrice != round2(tt.price-tt.wantDiscount) {
				t.Fatalf("expected final %.2f, got %.2f", tt.price-tt.wantDiscount, got.FinalPrice)
			}
		})
	}
}

func TestCalculatePriceBounds(t *testing.T) {
	tiers := []models.MemberTier{models.TierNormal, models.TierVIP, models.TierPremium}
	locations := []models.LocationMode{models.LocationStore, models.LocationHome}
	codes := []string{"", "NEWUSER100", "FIT10", "VIP300"}

	for _, pkg := range Packages() {
		for _, tier := range tiers {
			for _, location := range locations {
				for _, code := range codes {
					p := pkg
					got := CalculatePrice(models.PricingContext{
						Coach:      &models.Coach{Price: 120},
						Package:    &p,
						Goals:      []string{"体态修复"},
						Location:   location,
						Tier:       tier,
						CouponCode: code,
					}, pricingNow)

					if got.FinalPrice < 0 {
						t.Fatalf("negative final price %+v", got)
					}
					if got.Savings < 0 || got.Savings > got.BasePrice {
						t.Fatalf("savings out of range %+v", got)
					}
				}
			}
		}
	}
}

func TestPricingServiceQuote(t *testing.T) {
	service := NewPricingService(&stubCoachFinder{coach: &models.Coach{ID: 3, Price: 500}})
	service.now = func() time.Time { return pricingNow }

	got, err := service.Quote(context.Background(), QuoteInput{CoachID: 3, PackageID: "p12"})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if got.Sessions != 12 || got.FinalPrice != 5400 {
		t.Fatalf("unexpected quote %+v", got)
	}
}

func TestPricingServiceQuoteErrors(t *testing.T) {
	tests := []struct {
		name    string
		finder  *stubCoachFinder
		input   QuoteInput
		wantErr error
	}{
		{name: "unknown package", finder: &stubCoachFinder{}, input: QuoteInput{PackageID: "p99"}, wantErr: ErrInvalidInput},
		{name: "no sessions", finder: &stubCoachFinder{}, input: QuoteInput{}, wantErr: ErrInvalidInput},
		{name: "missing coach", finder: &stubCoachFinder{err: crud.ErrNotFound}, input: QuoteInput{Sessions: 2}, wantErr: ErrCoachNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPricingService(tt.finder).Quote(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
