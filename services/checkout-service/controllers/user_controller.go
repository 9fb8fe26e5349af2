package controllers

import (
	"net/http"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/services"
	"github.com/gin-gonic/gin"
)

// UserController serves the internal provisioning routes used by the user service.
type UserController struct {
	Service services.UserService
}

func NewUserController(svc services.UserService) *UserController {
	return &UserController{Service: svc}
}

func (uc *UserController) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := uc.Service.CreateUser(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (uc *UserController) UpdateEmail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := uc.Service.UpdateEmail(c.Request.Context(), id, req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := uc.Service.DeleteUser(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
