package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const contextAccountIDKey = "account_id"

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		accountID, err := s.accountSvc.Authenticate(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextAccountIDKey, accountID)
		c.Next()
	}
}

// SubscriptionRequired rechecks the ledger on every request so a
// subscription that lapsed mid-session is cut off immediately.
func (s *Server) SubscriptionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := contextAccountID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.subscriptionSvc.RequireActive(c.Request.Context(), accountID); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := s.loginLimiter.AllowLogin(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Redis being down must not lock everyone out.
			c.Next()
			return
		}
		if !allowed {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "login")
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func (s *Server) PaymentReturnRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := s.loginLimiter.AllowPaymentReturn(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "pagamento-sucesso")
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func contextAccountID(c *gin.Context) (snowflake.ID, bool) {
	value, exists := c.Get(contextAccountIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok
}
