package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/Domenick1991/busbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type ScheduleHandler struct {
	service catalog.CatalogUseCase
}

type updatePriceRequest struct {
	PriceCents int64 `json:"price_cents"`
}

func NewScheduleHandler(service catalog.CatalogUseCase) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// Register mounts schedule search for everyone and mutations for staff.
func (h *ScheduleHandler) Register(router *gin.RouterGroup, g Guards) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", g.Auth, g.Staff, h.create)
	router.PUT("/:id/price", g.Auth, g.Staff, h.updatePrice)
	router.DELETE("/:id", g.Auth, g.Staff, h.delete)
}

// list handles GET /schedules?from=&to=&date=YYYY-MM-DD.
func (h *ScheduleHandler) list(c *gin.Context) {
	filter := domain.ScheduleFilter{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(c, domain.NewValidationError("date", "must be formatted as YYYY-MM-DD"))
			return
		}
		filter.Date = &day
	}

	schedules, err := h.service.ListSchedules(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

func (h *ScheduleHandler) get(c *gin.Context) {
	schedule, err := h.service.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) create(c *gin.Context) {
	var req catalog.ScheduleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err)
		return
	}
	schedule, err := h.service.CreateSchedule(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

func (h *ScheduleHandler) updatePrice(c *gin.Context) {
	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err)
		return
	}
	schedule, err := h.service.UpdateSchedulePrice(c.Request.Context(), c.Param("id"), req.PriceCents)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

func (h *ScheduleHandler) delete(c *gin.Context) {
	if err := h.service.DeleteSchedule(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
