package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetCards(c *gin.Context) {
	cards, err := s.dashboardSvc.Cards(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cards})
}

func (s *Server) ListLatestInvoices(c *gin.Context) {
	resp, err := s.dashboardSvc.LatestInvoices(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices})
}
