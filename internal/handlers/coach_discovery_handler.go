package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"github.com/Sign-up-admin/safe-room-sub007/internal/services"
	"github.com/gofiber/fiber/v2"
)

type coachDiscoveryRepository interface {
	Coaches(ctx context.Context, query crud.ListQuery) ([]models.Coach, error)
	Coach(ctx context.Context, id int64) (*models.Coach, error)
}

type coachRecommender interface {
	Recommend(ctx context.Context, opts models.RecommendOptions, limit int) ([]models.RecommendedCoach, error)
}

type CoachDiscoveryHandler struct {
	coachRepo             coachDiscoveryRepository
	recommendationService coachRecommender
}

func NewCoachDiscoveryHandler(
	coachRepo coachDiscoveryRepository,
	recommendationService coachRecommender,
) *CoachDiscoveryHandler {
	return &CoachDiscoveryHandler{
		coachRepo:             coachRepo,
		recommendationService: recommendationService,
	}
}

func (h *CoachDiscoveryHandler) ListCoaches(c *fiber.Ctx) error {
	page, limit := parsePagination(c)

	filters := map[string]string{}
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		filters["jiaolianxingming"] = name
	}

	coaches, err := h.coachRepo.Coaches(c.UserContext(), crud.ListQuery{
		Page:    page,
		Limit:   limit,
		Sort:    "addtime",
		Order:   "desc",
		Filters: filters,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch coaches"})
	}

	response := make([]models.RecommendedCoach, 0, len(coaches))
	for _, coach := range coaches {
		response = append(response, models.RecommendedCoach{Coach: coach, Tags: services.CoachTags(coach)})
	}

	return c.JSON(fiber.Map{
		"coaches": response,
		"page":    page,
		"limit":   limit,
	})
}

func (h *CoachDiscoveryHandler) GetRecommendedCoaches(c *fiber.Ctx) error {
	maxPrice, err := parseNonNegativeFloat(c.Query("max_price"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_price must be a valid non-negative number"})
	}
	budgetMin, err := parseNonNegativeFloat(c.Query("budget_min"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "budget_min must be a valid non-negative number"})
	}
	budgetMax, err := parseNonNegativeFloat(c.Query("budget_max"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "budget_max must be a valid non-negative number"})
	}
	if budgetMax > 0 && budgetMin > budgetMax {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "budget_min must not exceed budget_max"})
	}
	history, err := parseIDList(c.Query("history"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "history must be a list of coach ids"})
	}

	limit := parsePositiveInt(c.Query("limit"), defaultPageLimit)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	coaches, err := h.recommendationService.Recommend(c.UserContext(), models.RecommendOptions{
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		Skill:       strings.TrimSpace(c.Query("skill")),
		MaxPrice:    maxPrice,
		History:     history,
		Goals:       parseList(c.Query("goals")),
		Preferences: parseList(c.Query("preferences")),
		BudgetMin:   budgetMin,
		BudgetMax:   budgetMax,
	}, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch recommended coaches"})
	}

	return c.JSON(fiber.Map{"coaches": coaches})
}

func (h *CoachDiscoveryHandler) GetCoachDetail(c *fiber.Ctx) error {
	coachID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || coachID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid coach id"})
	}

	coach, err := h.coachRepo.Coach(c.UserContext(), coachID)
	if err != nil {
		if errors.Is(err, crud.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coach not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch coach"})
	}

	return c.JSON(fiber.Map{
		"coach": models.RecommendedCoach{Coach: *coach, Tags: services.CoachTags(*coach)},
	})
}
