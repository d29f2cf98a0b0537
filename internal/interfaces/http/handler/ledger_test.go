package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/sahelbuild/backend/internal/application/finance"
	"github.com/sahelbuild/backend/internal/application/identity"
	inventoryapp "github.com/sahelbuild/backend/internal/application/inventory"
	partnerapp "github.com/sahelbuild/backend/internal/application/partner"
	procurementapp "github.com/sahelbuild/backend/internal/application/procurement"
	reportapp "github.com/sahelbuild/backend/internal/application/report"
	salesapp "github.com/sahelbuild/backend/internal/application/sales"
	"github.com/sahelbuild/backend/internal/domain/shared/valueobject"
	"github.com/sahelbuild/backend/internal/infrastructure/auth"
	"github.com/sahelbuild/backend/internal/infrastructure/config"
	"github.com/sahelbuild/backend/internal/infrastructure/event"
	"github.com/sahelbuild/backend/internal/infrastructure/export"
	"github.com/sahelbuild/backend/internal/infrastructure/persistence"
	"github.com/sahelbuild/backend/internal/interfaces/http/middleware"
	"github.com/sahelbuild/backend/internal/interfaces/http/router"
	"github.com/sahelbuild/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "kano-depot-2024"

func init() {
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

// ledgerAPI is the full HTTP surface over an in-memory ledger, with the
// same authentication and guards as the server.
type ledgerAPI struct {
	t           *testing.T
	engine      *gin.Engine
	db          *gorm.DB
	jwt         *auth.JWTService
	revocations *auth.MemoryRevocationList
}

func newLedgerAPI(t *testing.T) *ledgerAPI {
	t.Helper()
	db := testutil.NewLedgerDB(t)
	log := zap.NewNop()

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		PortalTokenExpiration:  12 * time.Hour,
		Issuer:                 "sahelbuild-test",
		MaxRefreshCount:        3,
	})
	revocations := auth.NewMemoryRevocationList()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	operators := []config.OperatorConfig{
		{Username: "amina", Name: "Amina Yusuf", PasswordHash: string(hash), Admin: true},
		{Username: "musa", Name: "Musa Bello", PasswordHash: string(hash)},
	}

	journal := event.NewJournalHandler(db, log)
	bus := event.NewBus(log)
	bus.Subscribe(journal)

	shipmentRepo := persistence.NewGormShipmentRepository(db)
	stockUnitRepo := persistence.NewGormStockUnitRepository(db)
	customerRepo := persistence.NewGormCustomerRepository(db)
	vehicleRepo := persistence.NewGormVehicleRepository(db)
	saleRepo := persistence.NewGormSaleRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	shipmentService := procurementapp.NewShipmentService(shipmentRepo)
	shipmentService.SetEventPublisher(bus)
	shipmentService.SetHistory(journal)
	receptionService := procurementapp.NewReceptionService(txScope)
	receptionService.SetEventPublisher(bus)
	stockUnitService := inventoryapp.NewStockUnitService(stockUnitRepo)
	saleService := salesapp.NewSaleService(txScope, saleRepo, customerRepo, vehicleRepo,
		salesapp.ReceiptSettings{Business: "Sahel Build Kano", Currency: "NGN"})
	saleService.SetEventPublisher(bus)
	paymentService := financeapp.NewPaymentService(txScope, paymentRepo)
	paymentService.SetEventPublisher(bus)
	customerService := partnerapp.NewCustomerService(customerRepo, valueobject.Nigeria)
	vehicleService := partnerapp.NewVehicleService(vehicleRepo, saleRepo, valueobject.Nigeria)
	vehicleService.SetRevoker(revocations, jwtService.PortalTTL())
	portalService := partnerapp.NewPortalService(vehicleRepo, saleRepo, jwtService, auth.NewPINLimiter(3, 3), log)
	metricsService := reportapp.NewMetricsService(shipmentRepo)
	metricsService.SetWorkbookWriter(export.NewPortfolioWorkbook("NGN"))
	authService := identity.NewAuthService(operators, jwtService, revocations, log)

	authCfg := middleware.DefaultAuthConfig(jwtService)
	authCfg.Revocations = revocations

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Authenticate(authCfg))

	guards := RouteGuards{
		Operator: middleware.RequireOperator(),
		Admin:    middleware.RequireAdmin(),
		Partner:  middleware.RequirePartner(),
	}
	system := NewSystemHandler("sahelbuild-ledger", "test")
	engine.GET("/health", system.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(ProcurementRoutes(NewShipmentHandler(shipmentService, receptionService), guards))
	r.Register(InventoryRoutes(NewInventoryHandler(stockUnitService), guards))
	r.Register(SalesRoutes(NewSaleHandler(saleService, nil), guards))
	r.Register(FinanceRoutes(NewFinanceHandler(paymentService), guards))
	r.Register(PartnerRoutes(NewCustomerHandler(customerService), NewVehicleHandler(vehicleService), guards))
	r.Register(ReportRoutes(NewReportHandler(metricsService), guards))
	r.Register(AuthRoutes(NewAuthHandler(authService), guards))
	r.Register(PortalRoutes(NewPortalHandler(portalService), guards))
	r.Register(SystemRoutes(system))
	r.Setup()

	return &ledgerAPI{t: t, engine: engine, db: db, jwt: jwtService, revocations: revocations}
}

// operatorToken issues an access token for a configured operator
func (a *ledgerAPI) operatorToken(username string, admin bool) string {
	a.t.Helper()
	pair, err := a.jwt.GenerateTokenPair(auth.OperatorTokenInput{Username: username, Name: username, Admin: admin})
	require.NoError(a.t, err)
	return pair.AccessToken
}

func (a *ledgerAPI) admin() string { return a.operatorToken("amina", true) }

func (a *ledgerAPI) clerk() string { return a.operatorToken("musa", false) }

func (a *ledgerAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope reads a success envelope, meta included
func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) APIResponse[T] {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	require.True(t, resp.Success, rec.Body.String())
	return resp
}

// decode reads the data of a success envelope
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	return decodeEnvelope[T](t, rec).Data
}

// errorCode reads the code of an error envelope
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp APIResponse[json.RawMessage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func cementShipment(bags, unitPrice string) procurementapp.CreateShipmentRequest {
	return procurementapp.CreateShipmentRequest{
		Category: "cement",
		Origin:   "NG",
		Supplier: "Dangote Obajana",
		Lines: []procurementapp.LineRequest{
			{Key: "bag", Quantity: dec(bags), UnitPrice: dec(unitPrice)},
		},
	}
}

// sellableCement creates a cement shipment and opens it for sale
func (a *ledgerAPI) sellableCement(bags, unitPrice string) procurementapp.ShipmentResponse {
	a.t.Helper()
	token := a.clerk()
	rec := a.do(http.MethodPost, "/procurement/shipments", token, cementShipment(bags, unitPrice))
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	shipment := decode[procurementapp.ShipmentResponse](a.t, rec)

	for _, status := range []string{"ordered", "paid", "in_transit", "arrived", "available_for_sale"} {
		if status == shipment.Status {
			continue
		}
		rec = a.do(http.MethodPost, "/procurement/shipments/"+shipment.ID.String()+"/status", token,
			procurementapp.AdvanceStatusRequest{Status: status})
		require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
		shipment = decode[procurementapp.ShipmentResponse](a.t, rec)
	}
	return shipment
}

func (a *ledgerAPI) createCustomer(name, phone string, credit bool) partnerapp.CustomerResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/partners/customers", a.clerk(), partnerapp.CreateCustomerRequest{
		Name:          name,
		Phone:         phone,
		Type:          "retail",
		CreditAllowed: credit,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[partnerapp.CustomerResponse](a.t, rec)
}

func shipmentSale(shipmentID uuid.UUID, qty, price string) salesapp.SaleItemRequest {
	p := dec(price)
	return salesapp.SaleItemRequest{
		SourceType: "shipment",
		SourceID:   shipmentID,
		Quantity:   dec(qty),
		UnitPrice:  &p,
	}
}
