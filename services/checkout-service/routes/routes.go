package routes

import (
	"net/http"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/controllers"
	"github.com/AI-zik/shoe-store-backend/services/checkout-service/middleware"
	"github.com/AI-zik/shoe-store-backend/services/common/auth"
	commonmw "github.com/AI-zik/shoe-store-backend/services/common/middleware"
	"github.com/gin-gonic/gin"
)

const ServiceName = "checkout-service"

type Controllers struct {
	Checkout *controllers.CheckoutController
	Webhook  *controllers.WebhookController
	Cart     *controllers.CartController
	Orders   *controllers.OrderController
	Users    *controllers.UserController
}

// RegisterRoutes mounts every endpoint. The webhook is unauthenticated and relies
// on its signature; everything else needs a user.
func RegisterRoutes(r *gin.Engine, ctrl Controllers, validator *auth.TokenValidator) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": ServiceName})
	})

	r.POST("/webhook", ctrl.Webhook.HandleStripeEvent)

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(validator), commonmw.RateLimitMiddleware(60, 20))
	{
		authed.POST("/payment-intent", ctrl.Checkout.CreatePaymentIntent)
		authed.POST("/checkout-session", ctrl.Checkout.CreateCheckoutSession)

		authed.GET("/cart", ctrl.Cart.GetCart)
		authed.POST("/cart", ctrl.Cart.AddItem)
		authed.PATCH("/cart/:id", ctrl.Cart.UpdateItem)
		authed.DELETE("/cart/:id", ctrl.Cart.RemoveItem)

		authed.GET("/orders", ctrl.Orders.ListOrders)
		authed.GET("/orders/:id", ctrl.Orders.GetOrder)
	}

	internal := r.Group("/internal")
	internal.Use(middleware.AuthMiddleware(validator), middleware.AdminOnly())
	{
		internal.POST("/users", ctrl.Users.CreateUser)
		internal.PATCH("/users/:id/email", ctrl.Users.UpdateEmail)
		internal.DELETE("/users/:id", ctrl.Users.DeleteUser)
	}
}
