package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/deadline-mate/api/internal/service"
	"github.com/deadline-mate/api/internal/utils"
)

// ActivityHandler exposes the recent activity feed.
type ActivityHandler struct {
	activity service.ActivityRecorder
	logger   zerolog.Logger
}

// NewActivityHandler creates a new handler instance.
func NewActivityHandler(activity service.ActivityRecorder, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		logger:   logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches the activity feed endpoint.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.listRecent)
}

func (h *ActivityHandler) listRecent(c *fiber.Ctx) error {
	limit := 0
	if value := c.Query("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	entries, err := h.activity.ListRecent(c.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load activity feed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load activity feed")
	}

	return utils.SendSuccess(c, "activity retrieved", entries)
}
