package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) SubscriptionStatus(c *gin.Context) {
	accountID, ok := contextAccountID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	status, err := s.subscriptionSvc.GetStatus(c.Request.Context(), accountID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
