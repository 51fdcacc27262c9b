package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/takumaeat/takumaeat-app/config"
	"github.com/takumaeat/takumaeat-app/controllers"
	"github.com/takumaeat/takumaeat-app/middlewares"
	"github.com/takumaeat/takumaeat-app/services"
)

func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi services
	promoSvc := services.NewPromoService(db)
	midtransSvc := services.NewMidtransService(&cfg.Midtrans)
	paymentSvc := services.NewPaymentService(db)
	gateway := services.NewSnapGateway(midtransSvc)
	orderSvc := services.NewOrderService(db, promoSvc, midtransSvc, cfg.DeliveryFee)
	checkoutSvc := services.NewCheckoutService(db, orderSvc, promoSvc, gateway, cfg.DeliveryFee)

	// Inisialisasi controllers
	userCtrl := controllers.NewUserController(db)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	menuCtrl := controllers.NewMenuController(db)
	branchCtrl := controllers.NewBranchController(db)
	addressCtrl := controllers.NewAddressController(db)
	promoCtrl := controllers.NewPromoController(db, promoSvc)
	orderCtrl := controllers.NewOrderController(db, orderSvc)
	paymentCtrl := controllers.NewPaymentController(paymentSvc, midtransSvc, gateway)
	checkoutCtrl := controllers.NewCheckoutController(checkoutSvc)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.NewRateLimiter(120, 60).RateLimit())

	// Rate limiter untuk login/register
	auth := api.Group("/auth")
	auth.Use(middlewares.NewStrictRateLimiter())
	{
		auth.POST("/register", userCtrl.Register)
		auth.POST("/login", userCtrl.Login)
	}

	// Storefront (tanpa auth)
	api.GET("/categories", categoryCtrl.GetAllCategories)
	api.GET("/menus", menuCtrl.GetAllMenus)
	api.GET("/menus/by-category", menuCtrl.GetMenuByCategory)
	api.GET("/menus/:menu_id", menuCtrl.GetMenuByID)
	api.GET("/branches", branchCtrl.GetAllBranches)

	// Order creation dan detail (customer tidak wajib login)
	api.POST("/orders", orderCtrl.CreateOrder)
	api.GET("/orders/:order_ref", orderCtrl.GetOrderByRef)

	// Promo check
	api.POST("/promos/check", promoCtrl.CheckPromo)

	// Payment gateway
	api.POST("/payments/callback", paymentCtrl.HandleNotification)
	api.GET("/payments/config", paymentCtrl.GetPaymentConfig)
	api.GET("/payments/:order_ref/check", paymentCtrl.CheckPaymentStatus)

	// Checkout wizard per sesi
	co := api.Group("/checkout")
	{
		co.POST("/sessions", checkoutCtrl.StartSession)
		co.GET("/sessions/:session_id", checkoutCtrl.GetSummary)
		co.POST("/sessions/:session_id/items", checkoutCtrl.AddItem)
		co.PATCH("/sessions/:session_id/items/:item_name", checkoutCtrl.UpdateItem)
		co.PUT("/sessions/:session_id/order-type", checkoutCtrl.SetOrderType)
		co.POST("/sessions/:session_id/details", checkoutCtrl.GoToDetails)
		co.POST("/sessions/:session_id/review", checkoutCtrl.BackToReview)
		co.PUT("/sessions/:session_id/details", checkoutCtrl.SetDetails)
		co.POST("/sessions/:session_id/promo", checkoutCtrl.ApplyPromo)
		co.DELETE("/sessions/:session_id/promo", checkoutCtrl.RemovePromo)
		co.POST("/sessions/:session_id/submit", checkoutCtrl.Submit)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	user := api.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/profile", userCtrl.GetProfile)
		user.GET("/addresses", addressCtrl.GetAddresses)
		user.POST("/addresses", addressCtrl.CreateAddress)
		user.DELETE("/addresses/:address_id", addressCtrl.DeleteAddress)
	}

	admin := api.Group("/admin")
	admin.Use(middlewares.AuthMiddleware())
	admin.Use(middlewares.RequireAdmin())
	{
		// MENU CATEGORIES
		admin.POST("/categories", categoryCtrl.CreateCategory)
		admin.PATCH("/categories/:cat_id", categoryCtrl.UpdateCategory)
		admin.DELETE("/categories/:cat_id", categoryCtrl.DeleteCategory)

		// MENUS
		admin.POST("/menus", menuCtrl.CreateMenu)
		admin.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
		admin.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)

		// BRANCHES
		admin.POST("/branches", branchCtrl.CreateBranch)
		admin.PATCH("/branches/:branch_id", branchCtrl.UpdateBranch)
		admin.DELETE("/branches/:branch_id", branchCtrl.DeleteBranch)

		// PROMOS
		admin.GET("/promos", promoCtrl.GetAllPromos)
		admin.POST("/promos", promoCtrl.CreatePromo)
		admin.PATCH("/promos/:promo_id", promoCtrl.UpdatePromo)
		admin.DELETE("/promos/:promo_id", promoCtrl.DeletePromo)

		// ORDERS
		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.GET("/orders/:order_ref", orderCtrl.GetOrderByRef)
		admin.PATCH("/orders/:order_ref", orderCtrl.UpdateOrderStatus)
	}

	// WebSocket untuk dashboard admin
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/events", controllers.EventsHandler)
	}

	return r
}
