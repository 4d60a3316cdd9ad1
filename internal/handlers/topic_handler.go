package handlers

import (
	"context"

	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"github.com/Sign-up-admin/safe-room-sub007/internal/services"
	"github.com/gofiber/fiber/v2"
)

type topicRanker interface {
	Rank(ctx context.Context, window services.TopicWindow, interests []string) (*models.HotTopicRanking, error)
}

type TopicHandler struct {
	topicService topicRanker
}

func NewTopicHandler(topicService topicRanker) *TopicHandler {
	return &TopicHandler{topicService: topicService}
}

func (h *TopicHandler) GetHotTopics(c *fiber.Ctx) error {
	window, err := services.ParseTopicWindow(c.Query("window"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "window must be one of 24h, 7d, 30d, all"})
	}

	ranking, err := h.topicService.Rank(c.UserContext(), window, parseList(c.Query("interests")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to rank topics"})
	}
	return c.JSON(ranking)
}
