package server

import (
	"net/http"
	"strings"

	accountdomain "github.com/carnefacil/carnefacil/internal/account/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) Register(c *gin.Context) {
	var req accountdomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		AbortWithError(c, newValidationError("email", "required", "email is required"))
		return
	}
	if req.Password == "" {
		AbortWithError(c, newValidationError("senha", "required", "senha is required"))
		return
	}

	account, err := s.accountSvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    account.ID.String(),
		"email": account.Email,
	})
}

func (s *Server) Login(c *gin.Context) {
	var req accountdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.accountSvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.obsMetrics.RecordLogin(c.Request.Context())
	c.JSON(http.StatusOK, result)
}
