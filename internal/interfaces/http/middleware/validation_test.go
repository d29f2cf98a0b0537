package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sahelbuild/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentInput struct {
	Amount   decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Discount decimal.Decimal `json:"discount" binding:"decimal_gte0"`
	Country  string          `json:"country" binding:"omitempty,country"`
	Method   string          `json:"method" binding:"required,oneof=cash transfer mobile_money"`
}

func validationRouter() *gin.Engine {
	if err := SetupValidator(); err != nil {
		panic(err)
	}
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req paymentInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"amount": req.Amount.String()})
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator_LedgerTags(t *testing.T) {
	router := validationRouter()

	t.Run("valid", func(t *testing.T) {
		w := postJSON(router, `{"amount":"15000.50","discount":"0","country":"cm","method":"cash"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"amount":"15000.5"}`, w.Body.String())
	})

	t.Run("invalid fields are reported by json name", func(t *testing.T) {
		w := postJSON(router, `{"amount":"0","discount":"-5","country":"GH","method":"cheque"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)

		messages := map[string]string{}
		for _, d := range resp.Error.Details {
			messages[d.Field] = d.Message
		}
		assert.Equal(t, map[string]string{
			"amount":   "Must be a positive amount",
			"discount": "Must be zero or a positive amount",
			"country":  "Must be one of: NG CM TD",
			"method":   "Must be one of: cash transfer mobile_money",
		}, messages)
	})

	t.Run("missing amount is zero and rejected", func(t *testing.T) {
		w := postJSON(router, `{"method":"cash"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"amount"`)
	})
}

func TestValidationMessage(t *testing.T) {
	type input struct {
		Name  string `binding:"required"`
		Plate string `binding:"min=5"`
		PIN   string `binding:"len=4"`
		Qty   int    `binding:"gt=0"`
	}

	v := validator.New()
	v.SetTagName("binding")
	err := v.Struct(input{Plate: "AB", PIN: "12"})
	require.Error(t, err)

	want := map[string]string{
		"Name":  "This field is required",
		"Plate": "Must be at least 5 characters",
		"PIN":   "Must be exactly 4 characters",
		"Qty":   "Must be greater than 0",
	}
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	require.Len(t, validationErrs, len(want))
	for _, e := range validationErrs {
		assert.Equal(t, want[e.Field()], validationMessage(e), e.Field())
	}
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	w := postJSON(validationRouter(), `{"amount":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
}

func TestFieldName(t *testing.T) {
	type row struct {
		Amount   string `json:"amount,omitempty"`
		Page     int    `form:"page"`
		Both     string `json:"both" form:"ignored"`
		Hidden   string `json:"-"`
		Untagged string
	}
	typ := reflect.TypeOf(row{})
	want := []string{"amount", "page", "both", "", ""}
	for i, w := range want {
		assert.Equal(t, w, fieldName(typ.Field(i)), typ.Field(i).Name)
	}
}
