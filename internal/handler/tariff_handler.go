package handler

import (
	"net/http"

	"tariff-backend/internal/middleware"
	"tariff-backend/internal/service"
	"tariff-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type TariffHandler struct {
	calculator service.TariffCalculationService
	records    service.CalculationRecordService
	programs   service.ProgramService
	auth       *middleware.Auth
}

func NewTariffHandler(
	calculator service.TariffCalculationService,
	records service.CalculationRecordService,
	programs service.ProgramService,
	auth *middleware.Auth,
) *TariffHandler {
	return &TariffHandler{calculator: calculator, records: records, programs: programs, auth: auth}
}

func (h *TariffHandler) RegisterRoutes(router *gin.RouterGroup) {
	tariff := router.Group("/api/tariff")
	{
		tariff.POST("/calculate", h.auth.RequireRole(middleware.RoleAdmin, middleware.RoleAnalyst), h.Calculate)
		tariff.POST("/preview", h.auth.OptionalAuth(), h.Preview)
		tariff.GET("/breakdown", h.auth.OptionalAuth(), h.Breakdown)
		tariff.GET("/hts/:code/validate", h.ValidateHTSCode)
		tariff.GET("/programs", h.GetPrograms)
	}
}

// Calculate computes the duty for a shipment and stores it in the calculation history
// @Summary      Calculate tariff
// @Description  Resolves the cheapest applicable MFN or preferential rate and saves the result
// @Tags         tariff
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CalculationRequest  true  "Calculation Payload"
// @Success      201      {object}  response.Response{data=service.SavedCalculationResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/tariff/calculate [post]
func (h *TariffHandler) Calculate(c *gin.Context) {
	var req service.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	saved, err := h.records.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err, "Failed to calculate tariff")
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, saved))
}

// Preview computes the duty without saving it
// @Summary      Preview tariff
// @Description  Same calculation as /calculate, nothing is persisted
// @Tags         tariff
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CalculationRequest  true  "Calculation Payload"
// @Success      200      {object}  response.Response{data=service.CalculationResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/tariff/preview [post]
func (h *TariffHandler) Preview(c *gin.Context) {
	var req service.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.calculator.Calculate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to calculate tariff")
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

type breakdownQuery struct {
	HTSCode     string `form:"hts_code"`
	Origin      string `form:"origin"`
	Destination string `form:"destination"`
	Value       string `form:"value"`
	Quantity    int    `form:"quantity"`
	Effective   string `form:"effective_date"`
	Expiration  string `form:"expiration_date"`
}

// Breakdown returns the landed cost summary in the working currency
// @Summary      Cost breakdown
// @Tags         tariff
// @Produce      json
// @Param        hts_code         query     string  true   "8-digit HTS code"
// @Param        destination      query     string  true   "Destination country code"
// @Param        origin           query     string  false  "Origin country code"
// @Param        value            query     string  true   "Unit value"
// @Param        quantity         query     int     true   "Quantity"
// @Param        effective_date   query     string  false  "Tariff effective date (YYYY-MM-DD)"
// @Param        expiration_date  query     string  false  "Tariff expiration date (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=service.CostBreakdown}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/tariff/breakdown [get]
func (h *TariffHandler) Breakdown(c *gin.Context) {
	var q breakdownQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	value, err := decimal.NewFromString(q.Value)
	if err != nil {
		badRequest(c, "value must be a decimal number")
		return
	}

	breakdown, err := h.calculator.CostBreakdown(c.Request.Context(), service.CalculationRequest{
		HTSCode:              q.HTSCode,
		OriginCountry:        q.Origin,
		DestinationCountry:   q.Destination,
		ProductValue:         value,
		Quantity:             q.Quantity,
		TariffEffectiveDate:  q.Effective,
		TariffExpirationDate: q.Expiration,
	})
	if err != nil {
		respondError(c, err, "Failed to build cost breakdown")
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, breakdown))
}

// ValidateHTSCode reports whether a code maps to a known product
// @Summary      Validate HTS code
// @Tags         tariff
// @Produce      json
// @Param        code  path      string  true  "HTS code"
// @Success      200   {object}  response.Response{data=service.HTSValidation}
// @Failure      500   {object}  response.Response
// @Router       /api/tariff/hts/{code}/validate [get]
func (h *TariffHandler) ValidateHTSCode(c *gin.Context) {
	validation, err := h.calculator.ValidateHTSCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "Failed to validate HTS code")
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, validation))
}

// GetPrograms lists trade agreements in force between two countries
// @Summary      Applicable programs
// @Tags         tariff
// @Produce      json
// @Param        origin       query     string  false  "Origin country code"
// @Param        destination  query     string  true   "Destination country code"
// @Success      200  {object}  response.Response{data=[]string}
// @Failure      400  {object}  response.Response
// @Router       /api/tariff/programs [get]
func (h *TariffHandler) GetPrograms(c *gin.Context) {
	destination := c.Query("destination")
	if destination == "" {
		badRequest(c, "destination is required")
		return
	}

	programs := h.programs.ApplicablePrograms(c.Request.Context(), c.Query("origin"), destination)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, programs))
}
