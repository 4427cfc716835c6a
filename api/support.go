package api

import (
	"net/http"

	"github.com/Domenick1991/busbooking/internal/service/support"
	"github.com/gin-gonic/gin"
)

type SupportHandler struct {
	service support.SupportUseCase
}

func NewSupportHandler(service support.SupportUseCase) *SupportHandler {
	return &SupportHandler{service: service}
}

func (h *SupportHandler) Register(router *gin.RouterGroup, g Guards) {
	router.Use(g.Auth)
	router.POST("", h.create)
	router.GET("/mytickets", h.listMine)
	router.GET("", g.Staff, h.listAll)
	router.PUT("/:id", g.Staff, h.update)
}

func (h *SupportHandler) create(c *gin.Context) {
	var req support.CreateTicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err)
		return
	}
	ticket, err := h.service.CreateTicket(c.Request.Context(), identity(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *SupportHandler) listMine(c *gin.Context) {
	tickets, err := h.service.ListMyTickets(c.Request.Context(), identity(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *SupportHandler) listAll(c *gin.Context) {
	tickets, err := h.service.ListAllTickets(c.Request.Context(), identity(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *SupportHandler) update(c *gin.Context) {
	var req support.UpdateTicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err)
		return
	}
	ticket, err := h.service.UpdateTicket(c.Request.Context(), identity(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
