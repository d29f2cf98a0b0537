package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to register a customer.
// Country defaults to the deployment's market.
type CreateCustomerRequest struct {
	Name          string          `json:"name" binding:"required,min=2,max=200"`
	Phone         string          `json:"phone" binding:"required,max=30"`
	Country       string          `json:"country" binding:"omitempty,country"`
	Type          string          `json:"type" binding:"required,oneof=wholesale retail"`
	Address       string          `json:"address" binding:"max=500"`
	Notes         string          `json:"notes"`
	CreditAllowed bool            `json:"credit_allowed"`
	CreditLimit   decimal.Decimal `json:"credit_limit" binding:"decimal_gte0"`
}

// UpdateCustomerRequest represents a request to change customer details
type UpdateCustomerRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=200"`
	Phone   string `json:"phone" binding:"required,max=30"`
	Type    string `json:"type" binding:"required,oneof=wholesale retail"`
	Address string `json:"address" binding:"max=500"`
	Notes   string `json:"notes"`
}

// SetCreditRequest sets the credit terms of a customer. A zero limit
// leaves credit uncapped.
type SetCreditRequest struct {
	CreditAllowed bool            `json:"credit_allowed"`
	CreditLimit   decimal.Decimal `json:"credit_limit" binding:"decimal_gte0"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"type" binding:"omitempty,oneof=wholesale retail"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Country  string `form:"country" binding:"omitempty,country"`
	OwesOnly bool   `form:"owes_only"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Country        string          `json:"country"`
	Type           string          `json:"type"`
	Address        string          `json:"address,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	CreditAllowed  bool            `json:"credit_allowed"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to its response
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID,
		Code:           c.Code,
		Name:           c.Name,
		Phone:          c.Phone,
		Country:        string(c.Country),
		Type:           string(c.Type),
		Address:        c.Address,
		Notes:          c.Notes,
		Balance:        c.Balance,
		TotalPurchases: c.TotalPurchases,
		TotalPaid:      c.TotalPaid,
		CreditAllowed:  c.CreditAllowed,
		CreditLimit:    c.CreditLimit,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// =============================================================================
// Vehicle DTOs
// =============================================================================

// CreateVehicleRequest represents a consignment vehicle entered by an admin
type CreateVehicleRequest struct {
	PlateNumber string          `json:"plate_number" binding:"required,max=20"`
	PartnerName string          `json:"partner_name" binding:"required,max=200"`
	DriverName  string          `json:"driver_name" binding:"max=100"`
	DriverPhone string          `json:"driver_phone" binding:"max=30"`
	Country     string          `json:"country" binding:"omitempty,country"`
	ShipmentID  *uuid.UUID      `json:"shipment_id"`
	TotalBags   decimal.Decimal `json:"total_bags" binding:"decimal_gt0"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
	PIN         string          `json:"pin" binding:"required,numeric,min=4,max=6"`
}

// ResetPINRequest replaces a vehicle's portal PIN
type ResetPINRequest struct {
	PIN string `json:"pin" binding:"required,numeric,min=4,max=6"`
}

// VehicleListFilter represents filter options for the vehicle list
type VehicleListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active closed"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// VehicleResponse represents a partner vehicle in API responses
type VehicleResponse struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	PlateNumber   string          `json:"plate_number"`
	PartnerName   string          `json:"partner_name"`
	DriverName    string          `json:"driver_name,omitempty"`
	DriverPhone   string          `json:"driver_phone,omitempty"`
	ShipmentID    *uuid.UUID      `json:"shipment_id,omitempty"`
	TotalBags     decimal.Decimal `json:"total_bags"`
	SoldBags      decimal.Decimal `json:"sold_bags"`
	RemainingBags decimal.Decimal `json:"remaining_bags"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Revenue       decimal.Decimal `json:"revenue"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToVehicleResponse converts a domain PartnerVehicle to its response.
// The PIN hash never leaves the service.
func ToVehicleResponse(v *partner.PartnerVehicle) VehicleResponse {
	return VehicleResponse{
		ID:            v.ID,
		Code:          v.Code,
		PlateNumber:   v.PlateNumber,
		PartnerName:   v.PartnerName,
		DriverName:    v.DriverName,
		DriverPhone:   v.DriverPhone,
		ShipmentID:    v.ShipmentID,
		TotalBags:     v.TotalBags,
		SoldBags:      v.SoldBags,
		RemainingBags: v.RemainingBags(),
		UnitPrice:     v.UnitPrice,
		Revenue:       v.Revenue,
		Status:        string(v.Status),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

// =============================================================================
// Portal DTOs
// =============================================================================

// PortalLoginRequest is a partner signing in with vehicle code and PIN
type PortalLoginRequest struct {
	Code string `json:"code" binding:"required,max=20"`
	PIN  string `json:"pin" binding:"required,numeric,min=4,max=6"`
}

// PortalLoginResult carries the partner token
type PortalLoginResult struct {
	AccessToken          string          `json:"access_token"`
	AccessTokenExpiresAt time.Time       `json:"access_token_expires_at"`
	TokenType            string          `json:"token_type"`
	Vehicle              VehicleResponse `json:"vehicle"`
}

// PortalSale is a sale line drawn from the partner's vehicle
type PortalSale struct {
	SaleID   uuid.UUID       `json:"sale_id"`
	Number   string          `json:"number"`
	SaleDate time.Time       `json:"sale_date"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// PortalView is the read-only summary shown to a partner
type PortalView struct {
	Vehicle VehicleResponse `json:"vehicle"`
	Sales   []PortalSale    `json:"sales"`
	Total   int64           `json:"total"`
}
