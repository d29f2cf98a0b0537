package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sahelbuild/backend/internal/interfaces/http/router"
)

// RouteGuards are the authorization middlewares applied per route group.
// Token validation itself runs once on the engine. A nil guard is left out
// of the chain, which is how Idempotency and Login are switched off.
type RouteGuards struct {
	Operator    gin.HandlerFunc
	Admin       gin.HandlerFunc
	Partner     gin.HandlerFunc
	Idempotency gin.HandlerFunc
	Login       gin.HandlerFunc
}

// ProcurementRoutes creates the route group for shipments
func ProcurementRoutes(shipments *ShipmentHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("procurement", "/procurement")
	group.Use(guards.Operator)

	group.GET("/shipments", shipments.List)
	group.POST("/shipments", shipments.Create)
	group.GET("/shipments/:id", shipments.GetByID)
	group.POST("/shipments/:id/status", shipments.AdvanceStatus)
	group.GET("/shipments/:id/history", shipments.History)

	// Expenses
	group.POST("/shipments/:id/expenses", shipments.AddExpense)
	group.POST("/shipments/:id/expenses/preview", shipments.PreviewExpense)
	group.DELETE("/shipments/:id/expenses/:expense_id", guards.Admin, shipments.DeleteExpense)

	group.POST("/shipments/:id/reception", shipments.RecordReception)

	return group
}

// InventoryRoutes creates the route group for stock units
func InventoryRoutes(inventory *InventoryHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("inventory", "/inventory")
	group.Use(guards.Operator)

	group.GET("/stock-units", inventory.List)
	group.GET("/stock-units/:id", inventory.GetByID)

	return group
}

// SalesRoutes creates the route group for counter sales
func SalesRoutes(sales *SaleHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("sales", "/sales")
	group.Use(guards.Operator)

	group.GET("", sales.List)
	group.POST("", sales.Record)
	group.GET("/:id", sales.GetByID)
	group.DELETE("/:id", guards.Admin, sales.Delete)

	// Receipts
	group.GET("/:id/receipt", sales.Receipt)
	group.GET("/:id/receipt.pdf", sales.ReceiptPDF)
	group.GET("/:id/receipt/link", sales.ReceiptLink)

	return group
}

// FinanceRoutes creates the route group for customer payments
func FinanceRoutes(finance *FinanceHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("finance", "/finance")
	group.Use(guards.Operator)

	group.GET("/payments", finance.ListPayments)
	group.POST("/payments", guards.Idempotency, finance.ApplyPayment)
	group.GET("/payments/:id", finance.GetPayment)
	group.DELETE("/payments/:id", guards.Admin, finance.DeletePayment)

	return group
}

// PartnerRoutes creates the route group for customers and consignment vehicles
func PartnerRoutes(customers *CustomerHandler, vehicles *VehicleHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("partners", "/partners")
	group.Use(guards.Operator)

	// Customers
	group.GET("/customers", customers.List)
	group.POST("/customers", customers.Create)
	group.GET("/customers/:id", customers.GetByID)
	group.PUT("/customers/:id", customers.Update)
	group.PUT("/customers/:id/credit", guards.Admin, customers.SetCredit)
	group.POST("/customers/:id/activate", customers.Activate)
	group.POST("/customers/:id/deactivate", customers.Deactivate)

	// Vehicles
	group.GET("/vehicles", vehicles.List)
	group.GET("/vehicles/:id", vehicles.GetByID)
	group.POST("/vehicles", guards.Admin, vehicles.Create)
	group.POST("/vehicles/:id/pin", guards.Admin, vehicles.ResetPIN)
	group.POST("/vehicles/:id/close", guards.Admin, vehicles.Close)
	group.DELETE("/vehicles/:id", guards.Admin, vehicles.Delete)

	return group
}

// ReportRoutes creates the route group for shipment metrics
func ReportRoutes(reports *ReportHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("reports", "/reports")
	group.Use(guards.Operator)

	group.GET("/shipments/metrics", reports.Portfolio)
	group.GET("/shipments/metrics.xlsx", reports.ExportPortfolio)
	group.GET("/shipments/:id/metrics", reports.ShipmentMetrics)

	return group
}

// AuthRoutes creates the route group for operator authentication. Login and
// refresh are listed in the JWT middleware's skip paths.
func AuthRoutes(auth *AuthHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("auth", "/auth")

	group.POST("/login", guards.Login, auth.Login)
	group.POST("/refresh", auth.Refresh)
	group.POST("/logout", auth.Logout)
	group.GET("/me", auth.Me)

	return group
}

// PortalRoutes creates the route group for the partner portal
func PortalRoutes(portal *PortalHandler, guards RouteGuards) *router.DomainGroup {
	group := router.NewDomainGroup("portal", "/portal")

	group.POST("/login", guards.Login, portal.Login)
	group.GET("/vehicle", guards.Partner, portal.Vehicle)

	return group
}

// SystemRoutes creates the route group for service information
func SystemRoutes(system *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "/system")

	group.GET("/info", system.Info)
	group.GET("/ping", system.Ping)

	return group
}
