package controllers

import (
	"MediCall/models"
	"MediCall/util"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) Patient(router gin.IRouter) {
	patients := router.Group("/patients")
	patients.GET("", h.ListPatients)
	patients.POST("", h.CreatePatient)
	patients.GET("/:id", h.GetPatient)
	patients.PUT("/:id", h.UpdatePatient)
	patients.PATCH("/:id/status", h.SetPatientStatus)
	patients.DELETE("/:id", h.DeletePatient)
	patients.POST("/:id/remind", h.RemindPatient)
}

func (h *Handlers) ListPatients(c *gin.Context) {
	list, err := h.Patients.List(c.Request.Context(), models.PatientQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "patients", list)
}

/*
* Bind JSON
* The caller is recorded as createdBy by the service
 */
func (h *Handlers) CreatePatient(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	patient, err := h.Patients.Create(c.Request.Context(), caller(c), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	created(c, "patient", patient)
}

func (h *Handlers) GetPatient(c *gin.Context) {
	patient, err := h.Patients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "patient", patient)
}

/*
* Get id from params
* Bind only the fields which need to be updated
 */
func (h *Handlers) UpdatePatient(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	patient, err := h.Patients.Update(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "patient", patient)
}

func (h *Handlers) SetPatientStatus(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	patient, err := h.Patients.SetStatus(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "patient", patient)
}

func (h *Handlers) DeletePatient(c *gin.Context) {
	if err := h.Patients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		util.Fail(c, err)
		return
	}
	deleted(c)
}

/*
* The body may name the medication to remind about
* Otherwise the first active medication is used
 */
func (h *Handlers) RemindPatient(c *gin.Context) {
	data, valid := optionalBody(c)
	if !valid {
		return
	}
	entry, err := h.Patients.Remind(c.Request.Context(), caller(c), c.Param("id"), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	created(c, "callLog", entry)
}
