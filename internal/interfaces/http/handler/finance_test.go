package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	financeapp "github.com/sahelbuild/backend/internal/application/finance"
	partnerapp "github.com/sahelbuild/backend/internal/application/partner"
	salesapp "github.com/sahelbuild/backend/internal/application/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// creditSale records an unpaid sale of qty cement bags at 7000 for customer
func (a *ledgerAPI) creditSale(customerID, shipmentID uuid.UUID, qty string) salesapp.SaleResponse {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/sales", a.clerk(), salesapp.RecordSaleRequest{
		CustomerID: &customerID,
		Items:      []salesapp.SaleItemRequest{shipmentSale(shipmentID, qty, "7000")},
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[salesapp.RecordSaleResult](a.t, rec).Sale
}

func TestFinanceHandler_ApplyPayment(t *testing.T) {
	api := newLedgerAPI(t)
	token := api.clerk()
	cement := api.sellableCement("100", "5000")
	customer := api.createCustomer("Chinedu Okafor", "0803 123 4567", true)

	first := api.creditSale(customer.ID, cement.ID, "2")  // 14000
	second := api.creditSale(customer.ID, cement.ID, "3") // 21000

	t.Run("oldest sale is settled first", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/finance/payments", token, financeapp.ApplyPaymentRequest{
			CustomerID: customer.ID,
			Amount:     dec("20000"),
			Method:     "bank_transfer",
			Reference:  "GTB-88812",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		result := decode[financeapp.ApplyPaymentResult](t, rec)

		assert.Equal(t, "musa", result.Payment.ReceivedBy)
		assert.Equal(t, "bank_transfer", result.Payment.Method)
		require.Len(t, result.Sales, 2)
		assert.Equal(t, first.ID, result.Sales[0].SaleID)
		assert.True(t, result.Sales[0].Amount.Equal(dec("14000")))
		assert.True(t, result.Sales[0].Settled)
		assert.Equal(t, second.ID, result.Sales[1].SaleID)
		assert.True(t, result.Sales[1].Amount.Equal(dec("6000")))
		assert.False(t, result.Sales[1].Settled)
		assert.True(t, result.CustomerBalance.Equal(dec("15000")))
	})

	t.Run("overpayment is refused", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/finance/payments", token, financeapp.ApplyPaymentRequest{
			CustomerID: customer.ID,
			Amount:     dec("15001"),
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "OVERPAYMENT", errorCode(t, rec))
	})

	t.Run("targeted payment beyond the sale", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/finance/payments", token, financeapp.ApplyPaymentRequest{
			CustomerID: customer.ID,
			SaleID:     &second.ID,
			Amount:     dec("16000"),
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "EXCEEDS_AMOUNT_DUE", errorCode(t, rec))
	})

	t.Run("zero amount", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/finance/payments", token, financeapp.ApplyPaymentRequest{
			CustomerID: customer.ID,
			Amount:     dec("0"),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("targeted payment settles the sale", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/finance/payments", token, financeapp.ApplyPaymentRequest{
			CustomerID: customer.ID,
			SaleID:     &second.ID,
			Amount:     dec("15000"),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		result := decode[financeapp.ApplyPaymentResult](t, rec)
		assert.True(t, result.CustomerBalance.IsZero())

		rec = api.do(http.MethodGet, "/sales/"+second.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "paid", decode[salesapp.SaleResponse](t, rec).PaymentStatus)
	})
}

func TestFinanceHandler_ListAndDelete(t *testing.T) {
	api := newLedgerAPI(t)
	token := api.clerk()
	cement := api.sellableCement("100", "5000")
	customer := api.createCustomer("Hadiza Garba", "08031234567", true)
	sale := api.creditSale(customer.ID, cement.ID, "5") // 35000

	rec := api.do(http.MethodPost, "/finance/payments", token, financeapp.ApplyPaymentRequest{
		CustomerID: customer.ID,
		Amount:     dec("30000"),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	payment := decode[financeapp.ApplyPaymentResult](t, rec).Payment

	rec = api.do(http.MethodGet, "/finance/payments?customer_id="+customer.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[[]financeapp.PaymentResponse](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, payment.ID, list[0].ID)

	rec = api.do(http.MethodGet, "/finance/payments?sale_id="+sale.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]financeapp.PaymentResponse](t, rec), 1)

	rec = api.do(http.MethodGet, "/finance/payments/"+payment.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decode[financeapp.PaymentResponse](t, rec)
	require.Len(t, fetched.Allocations, 1)
	assert.Equal(t, sale.ID, fetched.Allocations[0].SaleID)

	t.Run("delete needs an admin", func(t *testing.T) {
		rec := api.do(http.MethodDelete, "/finance/payments/"+payment.ID.String(), token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delete puts the amount back", func(t *testing.T) {
		rec := api.do(http.MethodDelete, "/finance/payments/"+payment.ID.String(), api.admin(), nil)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = api.do(http.MethodGet, "/partners/customers/"+customer.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[partnerapp.CustomerResponse](t, rec).Balance.Equal(dec("35000")))

		rec = api.do(http.MethodGet, "/sales/"+sale.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		restored := decode[salesapp.SaleResponse](t, rec)
		assert.Equal(t, "unpaid", restored.PaymentStatus)
		assert.True(t, restored.AmountDue.Equal(dec("35000")))

		rec = api.do(http.MethodGet, "/finance/payments/"+payment.ID.String(), token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
