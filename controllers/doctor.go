package controllers

import (
	"MediCall/apperror"
	"MediCall/config/authorization"
	"MediCall/integrations/elevenlabs"
	"MediCall/models"
	"MediCall/util"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) Doctor(router gin.IRouter) {
	doctors := router.Group("/doctors")
	doctors.GET("", h.ListDoctors)
	doctors.POST("", h.CreateDoctor)
	doctors.GET("/:id", h.GetDoctor)
	doctors.PUT("/:id", h.UpdateDoctor)
	doctors.PATCH("/:id/status", h.SetDoctorStatus)
	doctors.PATCH("/:id/deactivate", h.DeactivateDoctor)
	doctors.DELETE("/:id", authorization.RequireRole(models.RoleAdmin), h.DeleteDoctor)
	doctors.POST("/:id/voice-clone", h.CloneDoctorVoice)
	doctors.DELETE("/:id/voice-clone", h.DeleteDoctorVoice)
}

/*
* Read the filters and the page from the query
* The service clamps page and limit
 */
func (h *Handlers) ListDoctors(c *gin.Context) {
	page, err := h.Doctors.List(c.Request.Context(), models.DoctorQuery{
		Specialty:       c.Query("specialty"),
		Department:      c.Query("department"),
		Status:          c.Query("status"),
		Search:          c.Query("search"),
		IncludeInactive: c.Query("includeInactive") == "true",
		Page:            queryInt(c, "page"),
		Limit:           queryInt(c, "limit"),
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	c.JSON(200, page)
}

func (h *Handlers) CreateDoctor(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	doctor, err := h.Doctors.Create(c.Request.Context(), caller(c), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	created(c, "doctor", doctor)
}

func (h *Handlers) GetDoctor(c *gin.Context) {
	doctor, err := h.Doctors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "doctor", doctor)
}

func (h *Handlers) UpdateDoctor(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	doctor, err := h.Doctors.Update(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "doctor", doctor)
}

func (h *Handlers) SetDoctorStatus(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	doctor, err := h.Doctors.SetStatus(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "doctor", doctor)
}

func (h *Handlers) DeactivateDoctor(c *gin.Context) {
	doctor, err := h.Doctors.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "doctor", doctor)
}

func (h *Handlers) DeleteDoctor(c *gin.Context) {
	if err := h.Doctors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		util.Fail(c, err)
		return
	}
	deleted(c)
}

/*
* Read the audio sample from the multipart form
* Pass it to the service which tracks the clone status
 */
func (h *Handlers) CloneDoctorVoice(c *gin.Context) {
	header, err := c.FormFile("audio")
	if err != nil {
		util.Fail(c, apperror.Invalid("audio", util.AUDIO_FILE_REQUIRED))
		return
	}
	file, err := header.Open()
	if err != nil {
		util.Fail(c, apperror.Unexpected(err))
		return
	}
	defer file.Close()

	doctor, err := h.Doctors.CloneVoice(c.Request.Context(), c.Param("id"), elevenlabs.Sample{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "doctor", doctor)
}

func (h *Handlers) DeleteDoctorVoice(c *gin.Context) {
	doctor, err := h.Doctors.DeleteVoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "doctor", doctor)
}
