package controllers

import (
	"net/http"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/middleware"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/services"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	Service services.CartService
}

func NewCartController(svc services.CartService) *CartController {
	return &CartController{Service: svc}
}

func (cc *CartController) GetCart(c *gin.Context) {
	lines, err := cc.Service.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lines})
}

func (cc *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := cc.Service.Add(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (cc *CartController) UpdateItem(c *gin.Context) {
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := cc.Service.UpdateQuantity(c.Request.Context(), middleware.GetUserID(c), itemID, &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := cc.Service.Remove(c.Request.Context(), middleware.GetUserID(c), itemID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
