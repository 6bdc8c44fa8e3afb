package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	bookletdomain "github.com/carnefacil/carnefacil/internal/booklet/domain"
	"github.com/carnefacil/carnefacil/internal/providers/pdf"
	"github.com/gin-gonic/gin"
)

func (s *Server) Dashboard(c *gin.Context) {
	accountID, ok := contextAccountID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	entries, err := s.bookletSvc.Dashboard(c.Request.Context(), accountID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"carnes": entries})
}

func (s *Server) CreateBooklet(c *gin.Context) {
	accountID, ok := contextAccountID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req bookletdomain.CreateBookletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	detail, err := s.bookletSvc.CreateBooklet(c.Request.Context(), accountID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, detail)
}

func (s *Server) ListInstallments(c *gin.Context) {
	accountID, ok := contextAccountID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	bookletID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, bookletdomain.ErrBookletNotFound)
		return
	}

	detail, err := s.bookletSvc.GetBooklet(c.Request.Context(), accountID, bookletID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (s *Server) ToggleInstallment(c *gin.Context) {
	accountID, ok := contextAccountID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	installmentID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, bookletdomain.ErrInstallmentNotFound)
		return
	}

	installment, err := s.bookletSvc.ToggleInstallment(c.Request.Context(), accountID, installmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, installment)
}

func (s *Server) BookletPDF(c *gin.Context) {
	accountID, ok := contextAccountID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	bookletID, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, bookletdomain.ErrBookletNotFound)
		return
	}

	detail, err := s.bookletSvc.GetBooklet(c.Request.Context(), accountID, bookletID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.pdfProvider.GenerateBooklet(c.Request.Context(), bookletPDFData(detail))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=carne-%s.pdf", detail.Booklet.Number))
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, doc)
}

func bookletPDFData(detail *bookletdomain.BookletDetail) pdf.BookletData {
	data := pdf.BookletData{
		MemberName:  detail.Member.Name,
		MemberPhone: detail.Member.Phone,
		Number:      detail.Booklet.Number,
		Year:        detail.Booklet.Year,
		Amount:      formatCents(detail.Booklet.Amount),
		Slips:       make([]pdf.SlipData, 0, len(detail.Installments)),
	}
	for _, installment := range detail.Installments {
		slip := pdf.SlipData{
			Number:  installment.Number,
			DueDate: installment.DueDate.Format("02/01/2006"),
			Amount:  formatCents(detail.Booklet.Amount),
			Status:  installment.Status,
		}
		if installment.PaidAt != nil {
			slip.PaidAt = installment.PaidAt.Format("02/01/2006")
		}
		data.Slips = append(data.Slips, slip)
	}
	return data
}

func formatCents(cents int64) string {
	return strings.Replace(fmt.Sprintf("R$ %.2f", float64(cents)/100), ".", ",", 1)
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
