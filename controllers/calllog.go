package controllers

import (
	"time"

	"MediCall/apperror"
	"MediCall/models"
	"MediCall/util"
	"MediCall/validation"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) CallLog(router gin.IRouter) {
	logs := router.Group("/call-logs")
	logs.GET("", h.ListCallLogs)
	logs.POST("", h.CreateCallLog)
	logs.GET("/:id", h.GetCallLog)
	logs.PUT("/:id", h.UpdateCallLog)
	logs.DELETE("/:id", h.DeleteCallLog)
}

func queryDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := validation.ParseDate(raw)
	if err != nil {
		util.Fail(c, apperror.Invalid(key, "must be a valid date"))
		return nil, false
	}
	return &t, true
}

/*
* Parse outcome, call type, patient and the date range
* Either end of the range may be given alone
 */
func (h *Handlers) ListCallLogs(c *gin.Context) {
	q := models.CallLogQuery{Outcome: c.Query("outcome"), CallType: c.Query("callType")}
	var valid bool
	if q.PatientID, valid = queryID(c, "patient"); !valid {
		return
	}
	if q.StartDate, valid = queryDate(c, "startDate"); !valid {
		return
	}
	if q.EndDate, valid = queryDate(c, "endDate"); !valid {
		return
	}
	list, err := h.CallLogs.List(c.Request.Context(), q)
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "callLogs", list)
}

/*
* Bind JSON
* The caller is recorded as the agent whatever the body says
 */
func (h *Handlers) CreateCallLog(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	entry, err := h.CallLogs.Create(c.Request.Context(), caller(c), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	created(c, "callLog", entry)
}

func (h *Handlers) GetCallLog(c *gin.Context) {
	entry, err := h.CallLogs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "callLog", entry)
}

func (h *Handlers) UpdateCallLog(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	entry, err := h.CallLogs.Update(c.Request.Context(), c.Param("id"), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "callLog", entry)
}

func (h *Handlers) DeleteCallLog(c *gin.Context) {
	if err := h.CallLogs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		util.Fail(c, err)
		return
	}
	deleted(c)
}
