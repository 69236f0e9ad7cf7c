package handler

import (
	"net/http"

	"tariff-backend/internal/middleware"
	"tariff-backend/internal/service"
	"tariff-backend/pkg/pagination"
	"tariff-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CalculationHandler struct {
	records service.CalculationRecordService
	auth    *middleware.Auth
}

func NewCalculationHandler(records service.CalculationRecordService, auth *middleware.Auth) *CalculationHandler {
	return &CalculationHandler{records: records, auth: auth}
}

func (h *CalculationHandler) RegisterRoutes(router *gin.RouterGroup) {
	calcs := router.Group("/api/tariff/calculations")
	{
		calcs.GET("", h.auth.RequireRole(middleware.RoleAdmin, middleware.RoleAnalyst, middleware.RoleViewer), h.ListCalculations)
		calcs.GET("/:id", h.auth.RequireRole(middleware.RoleAdmin, middleware.RoleAnalyst, middleware.RoleViewer), h.GetCalculation)
		calcs.PUT("/:id", h.auth.RequireRole(middleware.RoleAdmin, middleware.RoleAnalyst), h.UpdateCalculation)
		calcs.DELETE("/:id", h.auth.RequireRole(middleware.RoleAdmin), h.DeleteCalculation)
	}
}

// ListCalculations pages through saved calculations, newest first
// @Summary      List calculations
// @Tags         calculations
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Param        hts_code     query     string  false  "Filter by HTS code"
// @Param        destination  query     string  false  "Filter by destination country"
// @Success      200  {object}  response.Response{data=pagination.Page}
// @Failure      500  {object}  response.Response
// @Router       /api/tariff/calculations [get]
func (h *CalculationHandler) ListCalculations(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.CalculationFilter{
		HTSCode:     c.Query("hts_code"),
		Destination: c.Query("destination"),
	}

	calcs, total, err := h.records.List(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve calculations")
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Wrap(calcs, total)))
}

// GetCalculation returns one saved calculation
// @Summary      Get calculation
// @Tags         calculations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Calculation ID"
// @Success      200  {object}  response.Response{data=service.CalculationRecordResponse}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/tariff/calculations/{id} [get]
func (h *CalculationHandler) GetCalculation(c *gin.Context) {
	calc, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve calculation")
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, calc))
}

// UpdateCalculation recalculates a saved record from new inputs
// @Summary      Update calculation
// @Tags         calculations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Calculation ID"
// @Param        payload  body      service.CalculationRequest  true  "Calculation Payload"
// @Success      200      {object}  response.Response{data=service.SavedCalculationResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/tariff/calculations/{id} [put]
func (h *CalculationHandler) UpdateCalculation(c *gin.Context) {
	var req service.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	saved, err := h.records.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update calculation")
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, saved))
}

// DeleteCalculation removes a saved calculation
// @Summary      Delete calculation
// @Tags         calculations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Calculation ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/tariff/calculations/{id} [delete]
func (h *CalculationHandler) DeleteCalculation(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.records.Delete(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err, "Failed to delete calculation")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "tariff calculation not found: "+id))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true, "id": id}))
}
