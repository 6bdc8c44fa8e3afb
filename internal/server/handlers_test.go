package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/carnefacil/carnefacil/internal/account/domain"
	bookletdomain "github.com/carnefacil/carnefacil/internal/booklet/domain"
	paymentdomain "github.com/carnefacil/carnefacil/internal/payment/domain"
	"github.com/carnefacil/carnefacil/internal/providers/pdf"
	subscriptiondomain "github.com/carnefacil/carnefacil/internal/subscription/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeAccountService struct {
	registerCalls int
	registerErr   error
	loginErr      error
	authErr       error
	accountID     snowflake.ID
}

func (f *fakeAccountService) Register(ctx context.Context, req accountdomain.RegisterRequest) (*accountdomain.Account, error) {
	f.registerCalls++
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &accountdomain.Account{ID: f.accountID, Email: req.Email}, nil
}

func (f *fakeAccountService) Login(ctx context.Context, req accountdomain.LoginRequest) (accountdomain.LoginResult, error) {
	if f.loginErr != nil {
		return accountdomain.LoginResult{}, f.loginErr
	}
	return accountdomain.LoginResult{Token: "token-abc", ExpiresAt: time.Now().Add(24 * time.Hour)}, nil
}

func (f *fakeAccountService) Authenticate(ctx context.Context, rawToken string) (snowflake.ID, error) {
	if f.authErr != nil {
		return 0, f.authErr
	}
	return f.accountID, nil
}

type fakeSubscriptionService struct {
	status     subscriptiondomain.Status
	requireErr error
	renewCalls int
}

func (f *fakeSubscriptionService) GetStatus(ctx context.Context, accountID snowflake.ID) (subscriptiondomain.Status, error) {
	return f.status, nil
}

func (f *fakeSubscriptionService) Renew(ctx context.Context, accountID snowflake.ID) error {
	f.renewCalls++
	return nil
}

func (f *fakeSubscriptionService) RenewIn(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) error {
	f.renewCalls++
	return nil
}

func (f *fakeSubscriptionService) CreateInitial(ctx context.Context, accountID snowflake.ID, graceDays int) error {
	return nil
}

func (f *fakeSubscriptionService) RequireActive(ctx context.Context, accountID snowflake.ID) error {
	return f.requireErr
}

type fakeBookletService struct {
	entries   []bookletdomain.DashboardEntry
	detail    *bookletdomain.BookletDetail
	createErr error
	toggleErr error
}

func (f *fakeBookletService) CreateBooklet(ctx context.Context, accountID snowflake.ID, req bookletdomain.CreateBookletRequest) (*bookletdomain.BookletDetail, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.detail, nil
}

func (f *fakeBookletService) Dashboard(ctx context.Context, accountID snowflake.ID) ([]bookletdomain.DashboardEntry, error) {
	return f.entries, nil
}

func (f *fakeBookletService) GetBooklet(ctx context.Context, accountID, bookletID snowflake.ID) (*bookletdomain.BookletDetail, error) {
	if f.detail == nil {
		return nil, bookletdomain.ErrBookletNotFound
	}
	return f.detail, nil
}

func (f *fakeBookletService) ToggleInstallment(ctx context.Context, accountID, installmentID snowflake.ID) (*bookletdomain.Installment, error) {
	if f.toggleErr != nil {
		return nil, f.toggleErr
	}
	return &bookletdomain.Installment{ID: installmentID, Status: bookletdomain.InstallmentPaid}, nil
}

type fakePaymentService struct {
	confirmErr   error
	confirmCalls int
	lastToken    string
}

func (f *fakePaymentService) CreateCheckout(ctx context.Context, accountID snowflake.ID) (*paymentdomain.CheckoutResult, error) {
	return &paymentdomain.CheckoutResult{IntentID: snowflake.ID(1), CheckoutURL: "https://pay.example.com/init"}, nil
}

func (f *fakePaymentService) ConfirmReturn(ctx context.Context, rawToken string) error {
	f.confirmCalls++
	f.lastToken = rawToken
	return f.confirmErr
}

type testServer struct {
	srv      *Server
	accounts *fakeAccountService
	subs     *fakeSubscriptionService
	booklets *fakeBookletService
	payments *fakePaymentService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := &fakeAccountService{accountID: snowflake.ID(42)}
	subs := &fakeSubscriptionService{
		status: subscriptiondomain.Status{Active: true, Status: subscriptiondomain.StatusActive, DaysRemaining: 30},
	}
	booklets := &fakeBookletService{}
	payments := &fakePaymentService{}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:          router,
		accountSvc:      accounts,
		subscriptionSvc: subs,
		bookletSvc:      booklets,
		paymentSvc:      payments,
		pdfProvider:     &pdf.NoOpProvider{},
	}
	srv.registerAuthRoutes()
	srv.registerAPIRoutes()

	return &testServer{srv: srv, accounts: accounts, subs: subs, booklets: booklets, payments: payments}
}

func (ts *testServer) do(t *testing.T, method, path, body string, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer token-abc")
	}
	resp := httptest.NewRecorder()
	ts.srv.engine.ServeHTTP(resp, req)
	return resp
}

func errorType(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Type   string `json:"type"`
			Errors []struct {
				Code string `json:"code"`
			} `json:"errors"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body.Error.Type
}

func TestRegisterReturnsCreated(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/auth/register", `{"email":"dona@example.com","senha":"segredo123"}`, false)
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Equal(t, 1, ts.accounts.registerCalls)
}

func TestRegisterMissingFields(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/auth/register", `{"email":"","senha":""}`, false)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, 0, ts.accounts.registerCalls)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.accounts.loginErr = accountdomain.ErrInvalidCredentials

	resp := ts.do(t, http.MethodPost, "/auth/login", `{"email":"dona@example.com","senha":"errada"}`, false)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Equal(t, "unauthorized", errorType(t, resp))
}

func TestGatedRouteWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/dashboard", "", false)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGatedRouteInvalidToken(t *testing.T) {
	ts := newTestServer(t)
	ts.accounts.authErr = accountdomain.ErrInvalidToken

	resp := ts.do(t, http.MethodGet, "/api/dashboard", "", true)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGatedRouteExpiredSubscription(t *testing.T) {
	ts := newTestServer(t)
	ts.subs.requireErr = subscriptiondomain.ErrSubscriptionExpired

	resp := ts.do(t, http.MethodGet, "/api/dashboard", "", true)
	require.Equal(t, http.StatusForbidden, resp.Code)
	require.Equal(t, "assinatura_expirada", errorType(t, resp))
}

func TestSubscriptionStatusSkipsSubscriptionGate(t *testing.T) {
	ts := newTestServer(t)
	ts.subs.requireErr = subscriptiondomain.ErrSubscriptionExpired
	ts.subs.status = subscriptiondomain.Status{Status: subscriptiondomain.StatusExpired}

	resp := ts.do(t, http.MethodGet, "/api/status-assinatura", "", true)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestCreatePaymentSkipsSubscriptionGate(t *testing.T) {
	ts := newTestServer(t)
	ts.subs.requireErr = subscriptiondomain.ErrSubscriptionExpired

	resp := ts.do(t, http.MethodPost, "/api/criar-pagamento", "", true)
	require.Equal(t, http.StatusCreated, resp.Code)
}

func TestDashboardReturnsEntries(t *testing.T) {
	ts := newTestServer(t)
	ts.booklets.entries = []bookletdomain.DashboardEntry{
		{Number: "C-001", MemberName: "Maria", PaidCount: 2, TotalCount: 12},
	}

	resp := ts.do(t, http.MethodGet, "/api/dashboard", "", true)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "C-001")
}

func TestCreateBookletDuplicateNumber(t *testing.T) {
	ts := newTestServer(t)
	ts.booklets.createErr = bookletdomain.ErrDuplicateNumber

	resp := ts.do(t, http.MethodPost, "/api/cadastrar", `{"nome":"Maria","numero":"C-001","valor":5000,"ano":2025}`, true)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "numero_carne_duplicado")
}

func TestListInstallmentsUnknownBooklet(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/carne/12345/parcelas", "", true)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestToggleInstallmentNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.booklets.toggleErr = bookletdomain.ErrInstallmentNotFound

	resp := ts.do(t, http.MethodPut, "/api/parcela/12345", "", true)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestToggleInstallmentReturnsNewStatus(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPut, "/api/parcela/12345", "", true)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), bookletdomain.InstallmentPaid)
}

func TestBookletPDFSetsAttachmentHeaders(t *testing.T) {
	ts := newTestServer(t)
	ts.booklets.detail = &bookletdomain.BookletDetail{
		Booklet: bookletdomain.Booklet{Number: "C-001", Amount: 5000, Year: 2025},
		Member:  bookletdomain.Member{Name: "Maria"},
	}

	resp := ts.do(t, http.MethodGet, "/api/carne/12345/pdf", "", true)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	require.Contains(t, resp.Header().Get("Content-Disposition"), "carne-C-001.pdf")
}

func TestPaymentSuccessRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/pagamento-sucesso", "", false)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, 0, ts.payments.confirmCalls)
}

func TestPaymentSuccessUnknownToken(t *testing.T) {
	ts := newTestServer(t)
	ts.payments.confirmErr = paymentdomain.ErrIntentNotFound

	resp := ts.do(t, http.MethodGet, "/api/pagamento-sucesso?token=forged", "", false)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPaymentSuccessConfirms(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/pagamento-sucesso?token=tok-1", "", false)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 1, ts.payments.confirmCalls)
	require.Equal(t, "tok-1", ts.payments.lastToken)
}
