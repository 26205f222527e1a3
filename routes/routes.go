package routes

import (
	"net/http"

	"agrotech/auth"
	"agrotech/bidlive"
	"agrotech/bids"
	"agrotech/campaigns"
	"agrotech/cart"
	"agrotech/complaints"
	"agrotech/middleware"
	"agrotech/models"
	"agrotech/orders"
	"agrotech/payments"
	"agrotech/products"
	"agrotech/ratelim"
	"agrotech/reports"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/productpic/*filepath", http.Dir("static/productpic"))
}

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", ratelim.RateLimit(auth.RefreshToken))

	router.POST("/api/auth/request-otp", ratelim.RateLimit(auth.RequestOTPHandler))
	router.POST("/api/auth/verify-otp", ratelim.RateLimit(auth.VerifyOTPHandler))

	router.GET("/api/profile", middleware.Authenticate(auth.GetProfile))
	router.PUT("/api/profile", middleware.Authenticate(auth.UpdateProfile))

	router.GET("/api/admin/users", middleware.Authenticate(middleware.RequireRole(auth.ListUsers, models.RoleAdmin)))
	router.DELETE("/api/admin/users/:userid", middleware.Authenticate(middleware.RequireRole(auth.DeleteUser, models.RoleAdmin)))
}

func AddProductRoutes(router *httprouter.Router) {
	router.GET("/api/products", ratelim.RateLimit(products.GetProducts))
	router.GET("/api/products/categories", products.GetCategories)
	router.GET("/api/product/:productid", products.GetProduct)

	router.POST("/api/products", middleware.Authenticate(middleware.RequireRole(products.CreateProduct, models.RoleFarmer, models.RoleSeller)))
	router.PUT("/api/product/:productid", middleware.Authenticate(middleware.RequireRole(products.UpdateProduct, models.RoleFarmer, models.RoleSeller)))
	router.DELETE("/api/product/:productid", middleware.Authenticate(middleware.RequireRole(products.DeleteProduct, models.RoleFarmer, models.RoleSeller)))
}

func AddBidRoutes(router *httprouter.Router, hub *bidlive.Hub) {
	router.POST("/api/bids/product/:productid", ratelim.RateLimit(middleware.Authenticate(bids.PlaceBid(hub))))
	router.GET("/api/bids/product/:productid", bids.GetProductBids)
	router.GET("/api/bids/mine", middleware.Authenticate(bids.GetBuyerBids))

	router.POST("/api/bid/:bidid/accept", middleware.Authenticate(middleware.RequireRole(bids.AcceptBid(hub), models.RoleFarmer, models.RoleSeller)))
	router.POST("/api/bid/:bidid/reject", middleware.Authenticate(middleware.RequireRole(bids.RejectBid(hub), models.RoleFarmer, models.RoleSeller)))

	router.GET("/ws/bids/:productid", bidlive.WebSocketHandler(hub))
}

func AddCartRoutes(router *httprouter.Router) {
	router.GET("/api/cart", middleware.Authenticate(cart.GetCart))
	router.POST("/api/cart/items", middleware.Authenticate(cart.AddToCart))
	router.PUT("/api/cart/items/:itemid", middleware.Authenticate(cart.UpdateCartItem))
	router.DELETE("/api/cart/items/:itemid", middleware.Authenticate(cart.RemoveFromCart))
	router.POST("/api/cart/checkout", ratelim.RateLimit(middleware.Authenticate(cart.CheckoutCart)))
}

func AddOrderRoutes(router *httprouter.Router) {
	router.POST("/api/orders", ratelim.RateLimit(middleware.Authenticate(orders.CreateOrder)))
	router.GET("/api/orders/mine", middleware.Authenticate(orders.GetBuyerOrders))
	router.GET("/api/orders/received", middleware.Authenticate(middleware.RequireRole(orders.GetFarmerOrders, models.RoleFarmer, models.RoleSeller)))
	router.GET("/api/order/:orderid", middleware.Authenticate(orders.GetOrder))
	router.PUT("/api/order/:orderid/status", middleware.Authenticate(orders.UpdateOrderStatus))
	router.GET("/api/order/:orderid/receipt", middleware.Authenticate(orders.OrderReceipt))
}

func AddPaymentRoutes(router *httprouter.Router, svc *payments.PaymentService) {
	router.POST("/api/payments/orders/:orderid/initiate",
		ratelim.RateLimit(middleware.Authenticate(payments.Idempotent(svc.InitiatePayment))))
	router.POST("/api/payments/confirm",
		ratelim.RateLimit(middleware.Authenticate(payments.Idempotent(svc.ConfirmPayment))))
	router.GET("/api/payments/transactions", middleware.Authenticate(svc.GetUserTransactions))
}

func AddComplaintRoutes(router *httprouter.Router) {
	router.POST("/api/complaints", ratelim.RateLimit(middleware.Authenticate(complaints.CreateComplaint)))
	router.GET("/api/complaints/mine", middleware.Authenticate(complaints.GetMyComplaints))

	router.GET("/api/admin/complaints", middleware.Authenticate(middleware.RequireRole(complaints.GetAllComplaints, models.RoleAdmin)))
	router.PUT("/api/admin/complaints/:complaintid/status", middleware.Authenticate(middleware.RequireRole(complaints.UpdateComplaintStatus, models.RoleAdmin)))
}

func AddCampaignRoutes(router *httprouter.Router) {
	router.GET("/api/campaigns", campaigns.GetCampaigns)
	router.GET("/api/campaigns/:campaignid", campaigns.GetCampaign)

	router.POST("/api/campaigns", middleware.Authenticate(middleware.RequireRole(campaigns.CreateCampaign, models.RoleFarmer, models.RoleSeller)))
	router.PUT("/api/campaigns/:campaignid", middleware.Authenticate(middleware.RequireRole(campaigns.UpdateCampaign, models.RoleFarmer, models.RoleSeller)))
	router.DELETE("/api/campaigns/:campaignid", middleware.Authenticate(middleware.RequireRole(campaigns.DeleteCampaign, models.RoleFarmer, models.RoleSeller)))
}

func AddReportRoutes(router *httprouter.Router) {
	router.GET("/api/admin/dashboard", middleware.Authenticate(middleware.RequireRole(reports.GetDashboard, models.RoleAdmin)))
	router.GET("/api/admin/reports/sales", middleware.Authenticate(middleware.RequireRole(reports.GetSalesReport, models.RoleAdmin)))
}
