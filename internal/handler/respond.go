package handler

import (
	"net/http"

	"tariff-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError attaches err to the context for the request logger and writes the error envelope.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	status, res := response.FromError(err, fallback)
	c.JSON(status, res)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, message))
}
