package partner

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sahelbuild/backend/internal/domain/partner"
	"github.com/sahelbuild/backend/internal/domain/sales"
	"github.com/sahelbuild/backend/internal/domain/shared"
	"github.com/sahelbuild/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// PartnerTokenIssuer issues portal tokens
type PartnerTokenIssuer interface {
	GeneratePartnerToken(input auth.PartnerTokenInput) (*auth.TokenPair, error)
}

// AttemptLimiter throttles PIN attempts per vehicle code
type AttemptLimiter interface {
	Allow(code string) bool
	Reset(code string)
}

// PortalService is the partner-facing, read-only side of a consignment
type PortalService struct {
	vehicleRepo partner.VehicleRepository
	saleRepo    sales.SaleRepository
	tokens      PartnerTokenIssuer
	limiter     AttemptLimiter
	logger      *zap.Logger
}

// NewPortalService creates a new PortalService
func NewPortalService(
	vehicleRepo partner.VehicleRepository,
	saleRepo sales.SaleRepository,
	tokens PartnerTokenIssuer,
	limiter AttemptLimiter,
	logger *zap.Logger,
) *PortalService {
	return &PortalService{
		vehicleRepo: vehicleRepo,
		saleRepo:    saleRepo,
		tokens:      tokens,
		limiter:     limiter,
		logger:      logger,
	}
}

func partnerCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

var errInvalidPortalCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid vehicle code or PIN")

// Login checks a vehicle code and PIN and issues a partner token
func (s *PortalService) Login(ctx context.Context, req PortalLoginRequest) (*PortalLoginResult, error) {
	code := partnerCode(req.Code)
	if !s.limiter.Allow(code) {
		s.logger.Warn("Portal login throttled", zap.String("vehicle", code))
		return nil, shared.NewDomainError("TOO_MANY_ATTEMPTS", "Too many PIN attempts, try again later")
	}

	vehicle, err := s.vehicleRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Portal login for unknown vehicle", zap.String("vehicle", code))
			return nil, errInvalidPortalCredentials
		}
		return nil, err
	}
	if !vehicle.VerifyPIN(req.PIN) {
		s.logger.Warn("Invalid portal PIN", zap.String("vehicle", code))
		return nil, errInvalidPortalCredentials
	}
	if !vehicle.IsActive() {
		return nil, shared.NewDomainError("VEHICLE_CLOSED", "This consignment has been closed")
	}
	s.limiter.Reset(code)

	pair, err := s.tokens.GeneratePartnerToken(auth.PartnerTokenInput{
		VehicleID:   vehicle.ID,
		VehicleCode: vehicle.Code,
		PartnerName: vehicle.PartnerName,
	})
	if err != nil {
		s.logger.Error("Failed to generate portal token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	s.logger.Info("Partner logged in", zap.String("vehicle", vehicle.Code))
	return &PortalLoginResult{
		AccessToken:          pair.AccessToken,
		AccessTokenExpiresAt: pair.AccessTokenExpiresAt,
		TokenType:            pair.TokenType,
		Vehicle:              ToVehicleResponse(vehicle),
	}, nil
}

// View returns the vehicle summary and a page of the sales drawn from it
func (s *PortalService) View(ctx context.Context, vehicleID uuid.UUID, page, pageSize int) (*PortalView, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	list, total, err := s.saleRepo.FindAll(ctx, sales.SaleFilter{
		Filter: shared.Filter{
			Page:     page,
			PageSize: pageSize,
			OrderBy:  "sale_date",
			OrderDir: "desc",
		},
		VehicleID: &vehicle.ID,
	})
	if err != nil {
		return nil, err
	}

	view := &PortalView{
		Vehicle: ToVehicleResponse(vehicle),
		Sales:   make([]PortalSale, 0, len(list)),
		Total:   total,
	}
	for _, sale := range list {
		line := PortalSale{SaleID: sale.ID, Number: sale.Number, SaleDate: sale.SaleDate}
		for _, item := range sale.Items {
			if item.SourceType == sales.SourceVehicle && item.SourceID == vehicle.ID {
				line.Quantity = line.Quantity.Add(item.Quantity)
				line.Amount = line.Amount.Add(item.LineTotal)
			}
		}
		view.Sales = append(view.Sales, line)
	}
	return view, nil
}
