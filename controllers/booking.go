package controllers

import (
	"MediCall/apperror"
	"MediCall/models"
	"MediCall/util"
	"MediCall/validation"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) Booking(router gin.IRouter) {
	bookings := router.Group("/bookings")
	bookings.GET("", h.ListBookings)
	bookings.POST("", h.CreateBooking)
	bookings.GET("/:id", h.GetBooking)
	bookings.PUT("/:id", h.UpdateBooking)
	bookings.PATCH("/:id/status", h.SetBookingStatus)
	bookings.PATCH("/:id/payment", h.SetBookingPayment)
	bookings.POST("/:id/remind", h.RemindBooking)
	bookings.DELETE("/:id", h.DeleteBooking)
}

/*
* Parse the status, date, patient and doctor filters
* A malformed id or date in the query is a validation error
 */
func (h *Handlers) ListBookings(c *gin.Context) {
	q := models.BookingQuery{Status: c.Query("status")}
	if raw := c.Query("date"); raw != "" {
		day, err := validation.ParseDate(raw)
		if err != nil {
			util.Fail(c, apperror.Invalid("date", "must be a valid date"))
			return
		}
		q.Date = &day
	}
	var valid bool
	if q.PatientID, valid = queryID(c, "patient"); !valid {
		return
	}
	if q.DoctorID, valid = queryID(c, "doctor"); !valid {
		return
	}
	list, err := h.Bookings.List(c.Request.Context(), q)
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "bookings", list)
}

func (h *Handlers) CreateBooking(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	booking, err := h.Bookings.Create(c.Request.Context(), caller(c), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	created(c, "booking", booking)
}

func (h *Handlers) GetBooking(c *gin.Context) {
	booking, err := h.Bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "booking", booking)
}

func (h *Handlers) UpdateBooking(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	booking, err := h.Bookings.Update(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "booking", booking)
}

func (h *Handlers) SetBookingStatus(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	booking, err := h.Bookings.SetStatus(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "booking", booking)
}

func (h *Handlers) SetBookingPayment(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	booking, err := h.Bookings.SetPayment(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "booking", booking)
}

func (h *Handlers) RemindBooking(c *gin.Context) {
	booking, err := h.Bookings.Remind(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "booking", booking)
}

func (h *Handlers) DeleteBooking(c *gin.Context) {
	if err := h.Bookings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		util.Fail(c, err)
		return
	}
	deleted(c)
}
