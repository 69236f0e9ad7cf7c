package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tariff-backend/internal/middleware"
	"tariff-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-secret"

type mockCalculator struct {
	calculateFn func(ctx context.Context, req service.CalculationRequest) (*service.CalculationResult, error)
	validateFn  func(ctx context.Context, code string) (service.HTSValidation, error)
	breakdownFn func(ctx context.Context, req service.CalculationRequest) (*service.CostBreakdown, error)
	lastReq     service.CalculationRequest
}

func (m *mockCalculator) Calculate(ctx context.Context, req service.CalculationRequest) (*service.CalculationResult, error) {
	m.lastReq = req
	return m.calculateFn(ctx, req)
}

func (m *mockCalculator) ValidateHTSCode(ctx context.Context, code string) (service.HTSValidation, error) {
	return m.validateFn(ctx, code)
}

func (m *mockCalculator) CostBreakdown(ctx context.Context, req service.CalculationRequest) (*service.CostBreakdown, error) {
	m.lastReq = req
	return m.breakdownFn(ctx, req)
}

type mockRecords struct {
	createFn   func(ctx context.Context, userID string, req service.CalculationRequest) (service.SavedCalculationResponse, error)
	getFn      func(ctx context.Context, id string) (service.CalculationRecordResponse, error)
	listFn     func(ctx context.Context, filter service.CalculationFilter, page, limit int) ([]service.CalculationRecordResponse, int64, error)
	updateFn   func(ctx context.Context, userID, id string, req service.CalculationRequest) (service.SavedCalculationResponse, error)
	deleteFn   func(ctx context.Context, userID, id string) (bool, error)
	lastUserID string
}

func (m *mockRecords) Create(ctx context.Context, userID string, req service.CalculationRequest) (service.SavedCalculationResponse, error) {
	m.lastUserID = userID
	return m.createFn(ctx, userID, req)
}

func (m *mockRecords) Get(ctx context.Context, id string) (service.CalculationRecordResponse, error) {
	return m.getFn(ctx, id)
}

func (m *mockRecords) List(ctx context.Context, filter service.CalculationFilter, page, limit int) ([]service.CalculationRecordResponse, int64, error) {
	return m.listFn(ctx, filter, page, limit)
}

func (m *mockRecords) Update(ctx context.Context, userID, id string, req service.CalculationRequest) (service.SavedCalculationResponse, error) {
	m.lastUserID = userID
	return m.updateFn(ctx, userID, id, req)
}

func (m *mockRecords) Delete(ctx context.Context, userID, id string) (bool, error) {
	m.lastUserID = userID
	return m.deleteFn(ctx, userID, id)
}

type mockPrograms struct {
	programs []string
	gotArgs  [2]string
}

func (m *mockPrograms) ApplicablePrograms(_ context.Context, origin, destination string) []string {
	m.gotArgs = [2]string{origin, destination}
	return m.programs
}

type mockCurrency struct {
	rate      decimal.Decimal
	available bool
	onDate    *time.Time
}

func (m *mockCurrency) Convert(_ context.Context, amount decimal.Decimal, _, _ string) decimal.Decimal {
	if !m.available {
		return amount
	}
	return amount.Mul(m.rate)
}

func (m *mockCurrency) ConvertOn(ctx context.Context, amount decimal.Decimal, from, to string, date time.Time) decimal.Decimal {
	m.onDate = &date
	return m.Convert(ctx, amount, from, to)
}

func (m *mockCurrency) Rate(_ context.Context, _, _ string) (decimal.Decimal, bool) {
	return m.rate, m.available
}

type mockAuditService struct {
	logs       []service.AuditLogResponse
	total      int64
	err        error
	lastAction string
}

func (m *mockAuditService) GetAuditLogs(_ context.Context, action string, _, _ int) ([]service.AuditLogResponse, int64, error) {
	m.lastAction = action
	return m.logs, m.total, m.err
}

type envelope struct {
	Status     string                 `json:"status"`
	StatusCode int                    `json:"status_code"`
	Code       string                 `json:"code"`
	Data       json.RawMessage        `json:"data"`
	Error      string                 `json:"error"`
	Details    map[string]interface{} `json:"details"`
}

func newRouter(register func(*gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r.Group(""))
	return r
}

func testAuth() *middleware.Auth {
	return middleware.NewAuth(testSecret)
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID, "role": role}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func doRequest(t *testing.T, r http.Handler, method, path string, body interface{}, authHeader string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}
