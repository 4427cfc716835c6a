package api

import (
	"net/http"

	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/Domenick1991/busbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	ScheduleID     string   `json:"scheduleId"`
	Seats          []string `json:"seats"`
	PaymentMethod  string   `json:"paymentMethod"`
	TransactionID  string   `json:"transactionId"`
	PassengerName  string   `json:"passengerName"`
	PassengerPhone string   `json:"passengerPhone"`
	DeliveryMethod string   `json:"deliveryMethod"`
}

func (r createBookingRequest) input() booking.CreateBookingInput {
	return booking.CreateBookingInput{
		ScheduleID:     r.ScheduleID,
		Seats:          r.Seats,
		PaymentMethod:  domain.PaymentMethod(r.PaymentMethod),
		TransactionID:  r.TransactionID,
		PassengerName:  r.PassengerName,
		PassengerPhone: r.PassengerPhone,
		DeliveryMethod: domain.DeliveryMethod(r.DeliveryMethod),
	}
}

// TotalAmount is the booking total in the same minor units as schedule prices.
type bookingResponse struct {
	domain.Booking
	PNR         string `json:"pnr"`
	TotalAmount int64  `json:"totalAmount"`
}

type bookingDetailsResponse struct {
	domain.BookingDetails
	PNR         string `json:"pnr"`
	TotalAmount int64  `json:"totalAmount"`
}

func newBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{Booking: *b, PNR: b.PNR(), TotalAmount: b.TotalCents}
}

func newDetailsResponse(d domain.BookingDetails) bookingDetailsResponse {
	return bookingDetailsResponse{BookingDetails: d, PNR: d.PNR(), TotalAmount: d.TotalCents}
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the booking endpoints. Every endpoint needs a caller.
func (h *BookingHandler) Register(router *gin.RouterGroup, g Guards) {
	router.Use(g.Auth)
	router.POST("", h.create)
	router.GET("/mybookings", h.listMine)
	router.GET("", g.Staff, h.listAll)
	router.GET("/:id", h.get)
	router.PUT("/:id/cancel", g.Staff, h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), identity(c), req.input())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newBookingResponse(b))
}

func (h *BookingHandler) listMine(c *gin.Context) {
	list, err := h.service.ListBookings(c.Request.Context(), identity(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detailsResponses(list))
}

func (h *BookingHandler) listAll(c *gin.Context) {
	list, err := h.service.ListAllBookings(c.Request.Context(), identity(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detailsResponses(list))
}

func (h *BookingHandler) get(c *gin.Context) {
	details, err := h.service.GetBooking(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDetailsResponse(*details))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(b))
}

func detailsResponses(list []domain.BookingDetails) []bookingDetailsResponse {
	out := make([]bookingDetailsResponse, 0, len(list))
	for _, d := range list {
		out = append(out, newDetailsResponse(d))
	}
	return out
}
