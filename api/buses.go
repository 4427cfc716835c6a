package api

import (
	"net/http"

	"github.com/Domenick1991/busbooking/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

type BusHandler struct {
	service catalog.CatalogUseCase
}

func NewBusHandler(service catalog.CatalogUseCase) *BusHandler {
	return &BusHandler{service: service}
}

func (h *BusHandler) Register(router *gin.RouterGroup, g Guards) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", g.Auth, g.Staff, h.create)
	router.PUT("/:id", g.Auth, g.Staff, h.update)
	router.DELETE("/:id", g.Auth, g.Staff, h.delete)
}

func (h *BusHandler) list(c *gin.Context) {
	vehicles, err := h.service.ListVehicles(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

func (h *BusHandler) get(c *gin.Context) {
	vehicle, err := h.service.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (h *BusHandler) create(c *gin.Context) {
	var req catalog.VehicleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err)
		return
	}
	vehicle, err := h.service.CreateVehicle(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// update applies a partial change; omitted fields keep their stored values.
func (h *BusHandler) update(c *gin.Context) {
	var req catalog.VehicleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err)
		return
	}
	vehicle, err := h.service.UpdateVehicle(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (h *BusHandler) delete(c *gin.Context) {
	if err := h.service.DeleteVehicle(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
