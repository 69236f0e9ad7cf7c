package handler

import (
	"net/http"
	"strings"
	"time"

	"tariff-backend/internal/service"
	"tariff-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CurrencyHandler struct {
	currency service.CurrencyService
}

func NewCurrencyHandler(currency service.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{currency: currency}
}

func (h *CurrencyHandler) RegisterRoutes(router *gin.RouterGroup) {
	currency := router.Group("/api/currency")
	{
		currency.GET("/convert", h.Convert)
		currency.GET("/rate", h.GetRate)
	}
}

// Convert converts an amount between currencies. Unknown pairs return the amount unchanged.
// @Summary      Convert amount
// @Tags         currency
// @Produce      json
// @Param        amount  query     string  true   "Amount"
// @Param        from    query     string  true   "Source currency"
// @Param        to      query     string  true   "Target currency"
// @Param        date    query     string  false  "Rate date (YYYY-MM-DD)"
// @Success      200     {object}  response.Response{data=service.ConversionResponse}
// @Failure      400     {object}  response.Response
// @Router       /api/currency/convert [get]
func (h *CurrencyHandler) Convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		badRequest(c, "amount must be a decimal number")
		return
	}
	from, to, ok := currencyPair(c)
	if !ok {
		return
	}

	var converted decimal.Decimal
	rawDate := c.Query("date")
	if rawDate != "" {
		date, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			badRequest(c, "date must use the YYYY-MM-DD format")
			return
		}
		converted = h.currency.ConvertOn(c.Request.Context(), amount, from, to, date)
	} else {
		converted = h.currency.Convert(c.Request.Context(), amount, from, to)
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, service.ConversionResponse{
		Amount:          amount.String(),
		From:            from,
		To:              to,
		ConvertedAmount: service.FormatConvertedAmount(converted, from, to),
		Date:            rawDate,
	}))
}

// GetRate returns the latest exchange rate for a pair
// @Summary      Exchange rate
// @Tags         currency
// @Produce      json
// @Param        from  query     string  true  "Source currency"
// @Param        to    query     string  true  "Target currency"
// @Success      200   {object}  response.Response{data=service.ExchangeRateResponse}
// @Failure      400   {object}  response.Response
// @Router       /api/currency/rate [get]
func (h *CurrencyHandler) GetRate(c *gin.Context) {
	from, to, ok := currencyPair(c)
	if !ok {
		return
	}

	rate, available := h.currency.Rate(c.Request.Context(), from, to)
	res := service.ExchangeRateResponse{From: from, To: to, Available: available}
	if available {
		res.Rate = rate.String()
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

func currencyPair(c *gin.Context) (from, to string, ok bool) {
	from = strings.ToUpper(strings.TrimSpace(c.Query("from")))
	to = strings.ToUpper(strings.TrimSpace(c.Query("to")))
	if len(from) != 3 || len(to) != 3 {
		badRequest(c, "from and to must be 3-letter currency codes")
		return "", "", false
	}
	return from, to, true
}
