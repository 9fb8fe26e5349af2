package controllers

import (
	"net/http"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/middleware"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/services"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service services.OrderService
}

func NewOrderController(svc services.OrderService) *OrderController {
	return &OrderController{Service: svc}
}

func (oc *OrderController) ListOrders(c *gin.Context) {
	res, err := oc.Service.List(c.Request.Context(), middleware.GetUserID(c), queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := oc.Service.Get(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
