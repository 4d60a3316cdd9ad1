package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"github.com/Sign-up-admin/safe-room-sub007/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type priceQuoter interface {
	Quote(ctx context.Context, input services.QuoteInput) (*models.PriceBreakdown, error)
}

type PricingHandler struct {
	pricingService priceQuoter
	validate       *validator.Validate
}

func NewPricingHandler(pricingService priceQuoter) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		validate:       validator.New(),
	}
}

type quoteRequest struct {
	CoachID    int64    `json:"coach_id" validate:"required,gt=0"`
	PackageID  string   `json:"package_id" validate:"omitempty,max=20"`
	Sessions   int      `json:"sessions" validate:"omitempty,min=1,max=200"`
	Goals      []string `json:"goals" validate:"omitempty,max=10,dive,max=20"`
	Location   string   `json:"location" validate:"omitempty,oneof=store home"`
	Tier       string   `json:"tier" validate:"omitempty,oneof=normal vip premium"`
	CouponCode string   `json:"coupon_code" validate:"omitempty,max=32"`
}

func (h *PricingHandler) Quote(c *fiber.Ctx) error {
	var req quoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	location := models.LocationStore
	if req.Location != "" {
		location = models.LocationMode(req.Location)
	}
	tier := models.TierNormal
	if req.Tier != "" {
		tier = models.MemberTier(req.Tier)
	}

	breakdown, err := h.pricingService.Quote(c.UserContext(), services.QuoteInput{
		CoachID:    req.CoachID,
		PackageID:  strings.TrimSpace(req.PackageID),
		Sessions:   req.Sessions,
		Goals:      req.Goals,
		Location:   location,
		Tier:       tier,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown package or session count"})
		case errors.Is(err, services.ErrCoachNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coach not found"})
		default:
			slog.Error("Error quoting price", "coach_id", req.CoachID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to calculate price"})
		}
	}

	return c.JSON(fiber.Map{"quote": breakdown})
}

func (h *PricingHandler) ListPackages(c *fiber.Ctx) error {
	type packageResponse struct {
		models.Package
		Factor float64 `json:"factor"`
	}

	packages := services.Packages()
	response := make([]packageResponse, 0, len(packages))
	for _, pkg := range packages {
		response = append(response, packageResponse{Package: pkg, Factor: services.PackageFactor(pkg.Sessions)})
	}
	return c.JSON(fiber.Map{"packages": response})
}

// ListCoupons returns the whole coupon table with expired entries marked.
func (h *PricingHandler) ListCoupons(c *fiber.Ctx) error {
	type couponResponse struct {
		models.Coupon
		Expired bool `json:"expired"`
	}

	now := time.Now()
	coupons := services.Coupons()
	response := make([]couponResponse, 0, len(coupons))
	for _, coupon := range coupons {
		response = append(response, couponResponse{Coupon: coupon, Expired: now.After(coupon.ValidUntil)})
	}
	return c.JSON(fiber.Map{"coupons": response})
}
