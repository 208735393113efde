package controllers

import (
	"MediCall/config/authorization"
	"MediCall/models"
	"MediCall/util"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) User(router gin.IRouter) {
	adminOnly := authorization.RequireRole(models.RoleAdmin)
	users := router.Group("/users")
	users.GET("", adminOnly, h.ListUsers)
	users.POST("", adminOnly, h.CreateUser)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", adminOnly, h.DeleteUser)
}

func (h *Handlers) ListUsers(c *gin.Context) {
	list, err := h.Users.List(c.Request.Context(), models.UserQuery{
		Role:       c.Query("role"),
		Department: c.Query("department"),
		Search:     c.Query("search"),
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "users", list)
}

/*
* Bind JSON
* Admins may set any role and the active flag
 */
func (h *Handlers) CreateUser(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	user, err := h.Users.Create(c.Request.Context(), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	created(c, "user", user)
}

func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "user", user)
}

/*
* Get id from params and bind the fields to update
* The service decides which fields the caller may change
 */
func (h *Handlers) UpdateUser(c *gin.Context) {
	data, valid := body(c)
	if !valid {
		return
	}
	user, err := h.Users.Update(c.Request.Context(), caller(c), c.Param("id"), data)
	if err != nil {
		util.Fail(c, err)
		return
	}
	ok(c, "user", user)
}

func (h *Handlers) DeleteUser(c *gin.Context) {
	if err := h.Users.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		util.Fail(c, err)
		return
	}
	deleted(c)
}
