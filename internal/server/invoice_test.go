package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/invoicedesk/internal/customer/domain"
	dashboarddomain "github.com/smallbiznis/invoicedesk/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) Create(ctx context.Context, input invoicedomain.FormInput) (invoicedomain.MutationResult, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(invoicedomain.MutationResult), args.Error(1)
}

func (m *mockInvoiceService) Update(ctx context.Context, id string, input invoicedomain.FormInput) (invoicedomain.MutationResult, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(invoicedomain.MutationResult), args.Error(1)
}

func (m *mockInvoiceService) Delete(ctx context.Context, id string) (invoicedomain.MutationResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(invoicedomain.MutationResult), args.Error(1)
}

type fakeInvoiceQuery struct {
	lastSearch invoicedomain.SearchRequest
	form       invoicedomain.InvoiceForm
	err        error
}

func (f *fakeInvoiceQuery) Search(ctx context.Context, req invoicedomain.SearchRequest) (invoicedomain.SearchResponse, error) {
	f.lastSearch = req
	return invoicedomain.SearchResponse{}, f.err
}

func (f *fakeInvoiceQuery) TotalPages(ctx context.Context, query string) (int, error) {
	return 0, f.err
}

func (f *fakeInvoiceQuery) GetForEdit(ctx context.Context, id string) (invoicedomain.InvoiceForm, error) {
	return f.form, f.err
}

type fakeCustomerService struct {
	customers []customerdomain.Customer
}

func (f *fakeCustomerService) Create(ctx context.Context, req customerdomain.CreateCustomerRequest) (customerdomain.Customer, error) {
	return customerdomain.Customer{ID: "c-new", Name: req.Name, Email: req.Email}, nil
}

func (f *fakeCustomerService) List(ctx context.Context) (customerdomain.ListCustomerResponse, error) {
	return customerdomain.ListCustomerResponse{Customers: f.customers}, nil
}

func (f *fakeCustomerService) GetByID(ctx context.Context, id string) (customerdomain.Customer, error) {
	for _, c := range f.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return customerdomain.Customer{}, customerdomain.ErrNotFound
}

type fakeDashboardService struct{}

func (fakeDashboardService) Cards(ctx context.Context) (dashboarddomain.CardData, error) {
	return dashboarddomain.CardData{NumberOfInvoices: 3}, nil
}

func (fakeDashboardService) LatestInvoices(ctx context.Context) (dashboarddomain.LatestInvoicesResponse, error) {
	return dashboarddomain.LatestInvoicesResponse{}, nil
}

type testServer struct {
	router  *gin.Engine
	invoice *mockInvoiceService
	query   *fakeInvoiceQuery
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())

	ts := &testServer{
		router:  router,
		invoice: &mockInvoiceService{},
		query:   &fakeInvoiceQuery{},
	}
	NewServer(ServerParams{
		Gin:          router,
		InvoiceSvc:   ts.invoice,
		InvoiceQuery: ts.query,
		CustomerSvc: &fakeCustomerService{customers: []customerdomain.Customer{
			{ID: "c-1", Name: "Delba de Oliveira", Email: "delba@oliveira.com"},
		}},
		DashboardSvc: fakeDashboardService{},
	})
	t.Cleanup(func() { ts.invoice.AssertExpectations(t) })
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	ts.router.ServeHTTP(resp, req)
	return resp
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCreateInvoiceRedirectsToInvoices(t *testing.T) {
	ts := newTestServer(t)
	input := invoicedomain.FormInput{CustomerID: "c-1", Amount: "15.50", Status: "pending"}
	ts.invoice.On("Create", mock.Anything, input).Return(invoicedomain.MutationResult{
		InvoiceID:    42,
		RowsAffected: 1,
		Revalidate:   []string{invoicedomain.InvoicesPath},
		RedirectTo:   invoicedomain.InvoicesPath,
	}, nil)

	resp := ts.do(formRequest(http.MethodPost, "/dashboard/invoices", url.Values{
		"customerId": {"c-1"},
		"amount":     {"15.50"},
		"status":     {"pending"},
	}))

	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, invoicedomain.InvoicesPath, resp.Header().Get("Location"))
	assert.Equal(t, invoicedomain.InvoicesPath, resp.Header().Get(RevalidateHeader))
}

func TestCreateInvoiceAcceptsNumericJSONAmount(t *testing.T) {
	ts := newTestServer(t)
	input := invoicedomain.FormInput{CustomerID: "c-1", Amount: "15.5", Status: "paid"}
	ts.invoice.On("Create", mock.Anything, input).Return(invoicedomain.MutationResult{
		RedirectTo: invoicedomain.InvoicesPath,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/dashboard/invoices", strings.NewReader(`{"customerId":"c-1","amount":15.5,"status":"paid"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := ts.do(req)

	assert.Equal(t, http.StatusSeeOther, resp.Code)
}

func TestCreateInvoiceTreatsNonStringCustomerIDAsMissing(t *testing.T) {
	bodies := map[string]string{
		"object": `{"customerId":{"a":1},"amount":10,"status":"paid"}`,
		"bool":   `{"customerId":true,"amount":10,"status":"paid"}`,
		"number": `{"customerId":123,"amount":10,"status":"paid"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t)
			input := invoicedomain.FormInput{CustomerID: "", Amount: "10", Status: "paid"}
			ts.invoice.On("Create", mock.Anything, input).Return(invoicedomain.MutationResult{}, &invoicedomain.FormError{
				State: invoicedomain.FormState{
					Errors: invoicedomain.FieldErrors{invoicedomain.FieldCustomerID: {"Please select a customer"}},
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/dashboard/invoices", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp := ts.do(req)

			assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
			ts.invoice.AssertExpectations(t)
		})
	}
}

func TestCreateInvoiceIgnoresNumericStatus(t *testing.T) {
	ts := newTestServer(t)
	input := invoicedomain.FormInput{CustomerID: "c-1", Amount: "10", Status: ""}
	ts.invoice.On("Create", mock.Anything, input).Return(invoicedomain.MutationResult{
		RedirectTo: invoicedomain.InvoicesPath,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/dashboard/invoices", strings.NewReader(`{"customerId":"c-1","amount":"10","status":1}`))
	req.Header.Set("Content-Type", "application/json")
	ts.do(req)

	ts.invoice.AssertExpectations(t)
}

func TestCreateInvoiceRendersFormState(t *testing.T) {
	ts := newTestServer(t)
	state := invoicedomain.FormState{
		Errors:  invoicedomain.FieldErrors{invoicedomain.FieldCustomerID: {"Please select a customer."}},
		Message: invoicedomain.MissingFieldsMessage(invoicedomain.OperationCreate),
	}
	ts.invoice.On("Create", mock.Anything, mock.Anything).
		Return(invoicedomain.MutationResult{}, &invoicedomain.FormError{State: state})

	resp := ts.do(formRequest(http.MethodPost, "/dashboard/invoices", url.Values{"amount": {"1"}}))

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Empty(t, resp.Header().Get("Location"))

	var body invoicedomain.FormState
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, state, body)
}

func TestCreateInvoiceHidesPersistenceCause(t *testing.T) {
	ts := newTestServer(t)
	cause := errors.New(`pq: insert or update on table "invoices" violates foreign key constraint`)
	ts.invoice.On("Create", mock.Anything, mock.Anything).Return(invoicedomain.MutationResult{}, &invoicedomain.PersistenceError{
		Op:      invoicedomain.OperationCreate,
		Kind:    "foreign_key_violation",
		Message: invoicedomain.DatabaseErrorMessage(invoicedomain.OperationCreate),
		Err:     cause,
	})

	resp := ts.do(formRequest(http.MethodPost, "/dashboard/invoices", url.Values{
		"customerId": {"missing"},
		"amount":     {"1"},
		"status":     {"paid"},
	}))

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.JSONEq(t, `{"message":"Database Error: Failed to Create Invoice."}`, resp.Body.String())
	assert.NotContains(t, resp.Body.String(), "foreign key")
}

func TestUpdateInvoiceRoutes(t *testing.T) {
	cases := []struct {
		name   string
		method string
		target string
	}{
		{name: "post", method: http.MethodPost, target: "/dashboard/invoices/7"},
		{name: "put", method: http.MethodPut, target: "/dashboard/invoices/7"},
		{name: "edit form", method: http.MethodPost, target: "/dashboard/invoices/7/edit"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			input := invoicedomain.FormInput{CustomerID: "c-1", Amount: "2", Status: "paid"}
			ts.invoice.On("Update", mock.Anything, "7", input).Return(invoicedomain.MutationResult{
				RowsAffected: 1,
				Revalidate:   []string{invoicedomain.InvoicesPath},
				RedirectTo:   invoicedomain.InvoicesPath,
			}, nil)

			resp := ts.do(formRequest(tc.method, tc.target, url.Values{
				"customerId": {"c-1"},
				"amount":     {"2"},
				"status":     {"paid"},
			}))

			assert.Equal(t, http.StatusSeeOther, resp.Code)
			assert.Equal(t, invoicedomain.InvoicesPath, resp.Header().Get("Location"))
		})
	}
}

func TestDeleteInvoiceDoesNotRedirect(t *testing.T) {
	for _, route := range []struct {
		method string
		target string
	}{
		{http.MethodDelete, "/dashboard/invoices/9"},
		{http.MethodPost, "/dashboard/invoices/9/delete"},
	} {
		ts := newTestServer(t)
		ts.invoice.On("Delete", mock.Anything, "9").Return(invoicedomain.MutationResult{
			RowsAffected: 1,
			Revalidate:   []string{invoicedomain.InvoicesPath},
		}, nil)

		resp := ts.do(httptest.NewRequest(route.method, route.target, nil))

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, resp.Header().Get("Location"))
		assert.JSONEq(t, `{"rows_affected":1,"revalidated":["/dashboard/invoices"]}`, resp.Body.String())
	}
}

func TestDeleteInvoiceRejectsMalformedID(t *testing.T) {
	ts := newTestServer(t)
	ts.invoice.On("Delete", mock.Anything, "abc").Return(invoicedomain.MutationResult{}, invoicedomain.ErrInvalidID)

	resp := ts.do(httptest.NewRequest(http.MethodDelete, "/dashboard/invoices/abc", nil))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Error.Errors, 1)
	assert.Equal(t, "invalid_id", body.Error.Errors[0].Code)
	assert.Equal(t, "id", body.Error.Errors[0].Field)
}

func TestListInvoicesAcceptsSearchAlias(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard/invoices?search=delba&page=2", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, invoicedomain.SearchRequest{Query: "delba", Page: 2}, ts.query.lastSearch)
}

func TestListInvoicesRejectsBadPage(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard/invoices?page=zero", nil))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetInvoiceForEditNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.query.err = invoicedomain.ErrNotFound

	resp := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard/invoices/123", nil))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetInvoiceForEditIncludesCustomers(t *testing.T) {
	ts := newTestServer(t)
	ts.query.form = invoicedomain.InvoiceForm{ID: 123, CustomerID: "c-1", Status: invoicedomain.StatusPaid}

	resp := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard/invoices/123", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"customers":[{"id":"c-1"`)
}

func TestUnknownCustomerIsNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(httptest.NewRequest(http.MethodGet, "/dashboard/customers/nope", nil))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
