package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const correlationKey = "correlation_id"

// Router exposes POST /chat over plain HTTP.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		gin.Logger(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			h.logger.Error("handler_panic", "panic", recovered, correlationKey, c.GetString(correlationKey))
			msg := fmt.Sprint(recovered)
			if !h.exposeErrors {
				msg = "internal error"
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: msg})
		}),
		corsMiddleware(),
		correlationMiddleware(),
	)

	r.POST("/chat", h.postChat)
	r.OPTIONS("/chat", func(c *gin.Context) {
		for k, v := range preflightHeaders(c.GetHeader("Access-Control-Request-Headers")) {
			c.Header(k, v)
		}
		c.Status(http.StatusNoContent)
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
	return r
}

func (h *Handler) postChat(c *gin.Context) {
	correlationID := c.GetString(correlationKey)
	body, err := c.GetRawData()
	if err != nil {
		status, payload := h.failure(h.logger.With(correlationKey, correlationID), err)
		c.JSON(status, payload)
		return
	}
	status, payload := h.relay(c.Request.Context(), body, correlationID)
	c.JSON(status, payload)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(corsAllowOriginKey, corsAllowOriginAll)
		c.Header(corsExposeHeaderKey, correlationHeader)
		c.Next()
	}
}

func correlationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := resolveCorrelationID(c.GetHeader(correlationHeader))
		c.Set(correlationKey, id)
		c.Header(correlationHeader, id)
		c.Next()
	}
}
