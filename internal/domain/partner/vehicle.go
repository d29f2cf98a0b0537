package partner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const pinCost = bcrypt.DefaultCost

var pinPattern = regexp.MustCompile(`^[0-9]{4,6}$`)

// VehicleStatus represents the status of a partner vehicle
type VehicleStatus string

const (
	VehicleStatusActive VehicleStatus = "active"
	VehicleStatusClosed VehicleStatus = "closed"
)

// PartnerVehicle is a partner's truck selling bags on consignment. The
// partner logs in to the portal with the vehicle code and a PIN.
type PartnerVehicle struct {
	shared.BaseAggregateRoot
	Code        string
	PlateNumber string
	PartnerName string
	DriverName  string
	DriverPhone string
	ShipmentID  *uuid.UUID
	TotalBags   decimal.Decimal
	SoldBags    decimal.Decimal
	UnitPrice   decimal.Decimal
	Revenue     decimal.Decimal
	PINHash     string
	Status      VehicleStatus
}

// VehicleInput carries the admin-entered vehicle details
type VehicleInput struct {
	PlateNumber string
	PartnerName string
	DriverName  string
	DriverPhone string
	Country     valueobject.Country
	ShipmentID  *uuid.UUID
	TotalBags   decimal.Decimal
	UnitPrice   decimal.Decimal
	PIN         string
}

// FormatVehicleCode builds VEH-NNNNN
func FormatVehicleCode(seq int) string {
	return fmt.Sprintf("VEH-%05d", seq)
}

// NewPartnerVehicle creates an active vehicle and hashes its PIN
func NewPartnerVehicle(code string, in VehicleInput) (*PartnerVehicle, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Vehicle code cannot be empty")
	}
	if strings.TrimSpace(in.PlateNumber) == "" {
		return nil, shared.NewDomainError("INVALID_PLATE", "Plate number cannot be empty")
	}
	if strings.TrimSpace(in.PartnerName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Partner name cannot be empty")
	}
	if !in.TotalBags.IsPositive() || !in.TotalBags.IsInteger() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Total bags must be a positive whole number")
	}
	if in.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	phone := ""
	if strings.TrimSpace(in.DriverPhone) != "" {
		normalized, err := NormalizePhone(in.DriverPhone, in.Country)
		if err != nil {
			return nil, err
		}
		phone = normalized
	}
	hash, err := hashPIN(in.PIN)
	if err != nil {
		return nil, err
	}

	v := &PartnerVehicle{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(strings.TrimSpace(code)),
		PlateNumber:       strings.ToUpper(strings.TrimSpace(in.PlateNumber)),
		PartnerName:       strings.TrimSpace(in.PartnerName),
		DriverName:        strings.TrimSpace(in.DriverName),
		DriverPhone:       phone,
		ShipmentID:        in.ShipmentID,
		TotalBags:         in.TotalBags,
		SoldBags:          decimal.Zero,
		UnitPrice:         in.UnitPrice,
		Revenue:           decimal.Zero,
		PINHash:           hash,
		Status:            VehicleStatusActive,
	}
	v.Raise(NewVehicleCreatedEvent(v))
	return v, nil
}

// RemainingBags is total minus sold bags
func (v *PartnerVehicle) RemainingBags() decimal.Decimal {
	return v.TotalBags.Sub(v.SoldBags)
}

// VerifyPIN verifies if the provided PIN matches
func (v *PartnerVehicle) VerifyPIN(pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(v.PINHash), []byte(pin)) == nil
}

// ResetPIN replaces the portal PIN
func (v *PartnerVehicle) ResetPIN(pin string) error {
	hash, err := hashPIN(pin)
	if err != nil {
		return err
	}
	v.PINHash = hash
	v.IncrementVersion()
	return nil
}

// SellBags books bags sold off the vehicle
func (v *PartnerVehicle) SellBags(quantity, amount decimal.Decimal) error {
	if !v.IsActive() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Vehicle %s is closed", v.Code))
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Bag quantity must be positive")
	}
	if quantity.GreaterThan(v.RemainingBags()) {
		return shared.NewDomainError("STOCK_EXCEEDED",
			fmt.Sprintf("Vehicle %s has %s bags left", v.Code, v.RemainingBags().String()))
	}
	v.SoldBags = v.SoldBags.Add(quantity)
	v.Revenue = v.Revenue.Add(amount)
	v.IncrementVersion()
	return nil
}

// RestoreBags undoes the bags of a deleted sale
func (v *PartnerVehicle) RestoreBags(quantity, amount decimal.Decimal) error {
	if quantity.GreaterThan(v.SoldBags) {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot restore more bags than were sold")
	}
	v.SoldBags = v.SoldBags.Sub(quantity)
	v.Revenue = v.Revenue.Sub(amount)
	v.IncrementVersion()
	return nil
}

// Close ends the consignment
func (v *PartnerVehicle) Close() error {
	if v.Status == VehicleStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Vehicle is already closed")
	}
	v.Status = VehicleStatusClosed
	v.IncrementVersion()
	v.Raise(NewVehicleClosedEvent(v))
	return nil
}

// IsActive returns true while bags can be sold
func (v *PartnerVehicle) IsActive() bool {
	return v.Status == VehicleStatusActive
}

// Actor is the identity stamped on changes made through the portal
func (v *PartnerVehicle) Actor() string {
	return "vehicle:" + v.Code
}

func hashPIN(pin string) (string, error) {
	if !pinPattern.MatchString(pin) {
		return "", shared.NewDomainError("INVALID_PIN", "PIN must be 4 to 6 digits")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), pinCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
