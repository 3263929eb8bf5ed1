package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

// RevalidateHeader lists the dashboard paths a mutation invalidated.
const RevalidateHeader = "X-Revalidated"

func (s *Server) ListInvoices(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		query = c.Query("search")
	}
	page, err := parsePageNumber(c.Query("page"))
	if err != nil {
		AbortWithError(c, newValidationError("page", "invalid_page", "invalid page"))
		return
	}

	resp, err := s.invoiceQuery.Search(c.Request.Context(), invoicedomain.SearchRequest{
		Query: query,
		Page:  page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceForEdit(c *gin.Context) {
	ctx := c.Request.Context()

	form, err := s.invoiceQuery.GetForEdit(ctx, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	customers, err := s.customerSvc.List(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"invoice":   form,
		"customers": customers.Customers,
	}})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	input, err := bindInvoiceForm(c)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.invoiceSvc.Create(c.Request.Context(), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	redirectAfterMutation(c, result)
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	input, err := bindInvoiceForm(c)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.invoiceSvc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	redirectAfterMutation(c, result)
}

// DeleteInvoice answers in place; the table that issued it stays on screen.
func (s *Server) DeleteInvoice(c *gin.Context) {
	result, err := s.invoiceSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header(RevalidateHeader, strings.Join(result.Revalidate, ","))
	c.JSON(http.StatusOK, result)
}

func redirectAfterMutation(c *gin.Context, result invoicedomain.MutationResult) {
	c.Header(RevalidateHeader, strings.Join(result.Revalidate, ","))
	target := result.RedirectTo
	if target == "" {
		target = invoicedomain.InvoicesPath
	}
	c.Redirect(http.StatusSeeOther, target)
}

// bindInvoiceForm reads the raw field bag. JSON bodies may carry amount as a
// number, so they are decoded loosely and every field is kept as text.
func bindInvoiceForm(c *gin.Context) (invoicedomain.FormInput, error) {
	if c.ContentType() == binding.MIMEJSON {
		fields, err := decodeLooseJSON(c.Request.Body, invoicedomain.FieldAmount)
		if err != nil {
			return invoicedomain.FormInput{}, err
		}
		return invoicedomain.FormInput{
			CustomerID: fields[invoicedomain.FieldCustomerID],
			Amount:     fields[invoicedomain.FieldAmount],
			Status:     fields[invoicedomain.FieldStatus],
		}, nil
	}

	var input invoicedomain.FormInput
	if err := c.ShouldBind(&input); err != nil {
		return invoicedomain.FormInput{}, err
	}
	return input, nil
}
