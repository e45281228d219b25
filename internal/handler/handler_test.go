package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/family-ledger/internal/config"
	"github.com/Dan9191/family-ledger/internal/handler"
	"github.com/Dan9191/family-ledger/internal/middleware"
	"github.com/Dan9191/family-ledger/internal/repository"
	"github.com/Dan9191/family-ledger/internal/service"
	"github.com/Dan9191/family-ledger/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const secret = "test-secret"

type server struct {
	t      *testing.T
	router *mux.Router
	token  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: secret, Location: time.UTC}

	svc := service.NewService(repository.NewRepository(store.NewMemoryStore()), log, cfg)
	h := handler.NewHandler(svc, log)
	router := handler.NewRouter(h, middleware.AuthMiddleware(cfg), middleware.RequestLogger(log))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return &server{t: t, router: router, token: token}
}

func (s *server) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %q: %v", rr.Body.String(), err)
	}
}

func (s *server) createAccount(name, opening string) string {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/accounts", `{"name":"`+name+`","type":"cash","openingBalance":"`+opening+`"}`)
	if rr.Code != http.StatusCreated {
		s.t.Fatalf("create account status = %d: %s", rr.Code, rr.Body.String())
	}
	var acc struct {
		ID string `json:"id"`
	}
	decodeBody(s.t, rr, &acc)
	return acc.ID
}

func TestHealthIsPublic(t *testing.T) {
	s := newServer(t)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("health status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/accounts", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated /accounts status = %d, want 401", rr.Code)
	}
}

func TestTransactionErrorsMapToStatuses(t *testing.T) {
	s := newServer(t)
	id := s.createAccount("Wallet", "500")

	rr := s.do(http.MethodPost, "/transactions", `{"accountId":"`+id+`","type":"expense","amount":"600","description":"TV","category":"Shopping"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("overspend status = %d, want 409: %s", rr.Code, rr.Body.String())
	}
	var conflict struct {
		Details struct {
			AccountName string `json:"accountName"`
			Balance     string `json:"balance"`
		} `json:"details"`
	}
	decodeBody(t, rr, &conflict)
	if conflict.Details.AccountName != "Wallet" || conflict.Details.Balance != "500.00" {
		t.Errorf("details = %+v", conflict.Details)
	}

	rr = s.do(http.MethodPost, "/transactions", `{"accountId":"`+id+`","type":"expense","amount":"10","description":"","category":"Food"}`)
	var bad struct {
		Field string `json:"field"`
	}
	decodeBody(t, rr, &bad)
	if rr.Code != http.StatusBadRequest || bad.Field != "description" {
		t.Errorf("validation status = %d field = %q", rr.Code, bad.Field)
	}

	if rr := s.do(http.MethodPost, "/transactions", `{"amount":`); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rr.Code)
	}
	if rr := s.do(http.MethodGet, "/transactions/missing", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing transaction status = %d, want 404", rr.Code)
	}

	rr = s.do(http.MethodPost, "/transactions", `{"accountId":"`+id+`","type":"expense","amount":"120.50","description":"Groceries","category":"groceries"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body.String())
	}
	rr = s.do(http.MethodGet, "/accounts/"+id, "")
	var acc struct {
		Balance string `json:"balance"`
	}
	decodeBody(t, rr, &acc)
	if acc.Balance != "379.5" {
		t.Errorf("balance = %s, want 379.5", acc.Balance)
	}
}

func TestDebtSettlementFlow(t *testing.T) {
	s := newServer(t)
	id := s.createAccount("Bank", "1500")

	rr := s.do(http.MethodPost, "/debts", `{"type":"owe","name":"Loan","counterpartyName":"Juan","totalAmount":"1000","paymentType":"multiple","numberOfPayments":4}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create debt status = %d: %s", rr.Code, rr.Body.String())
	}
	var debt struct {
		ID string `json:"id"`
	}
	decodeBody(t, rr, &debt)

	rr = s.do(http.MethodPost, "/debts/"+debt.ID+"/settle", `{"entries":[0,1,2,3],"mode":"affectAccount","accountId":"`+id+`"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("settle status = %d: %s", rr.Code, rr.Body.String())
	}
	var view struct {
		Summary struct {
			Status   string `json:"status"`
			Progress int    `json:"progress"`
		} `json:"summary"`
	}
	decodeBody(t, rr, &view)
	if view.Summary.Status != "paid_off" || view.Summary.Progress != 100 {
		t.Errorf("summary = %+v", view.Summary)
	}

	rr = s.do(http.MethodGet, "/accounts/"+id, "")
	var acc struct {
		Balance string `json:"balance"`
	}
	decodeBody(t, rr, &acc)
	if acc.Balance != "500" {
		t.Errorf("balance = %s, want 500", acc.Balance)
	}

	rr = s.do(http.MethodGet, "/transactions?accountId="+id+"&type=expense", "")
	var txs []map[string]interface{}
	decodeBody(t, rr, &txs)
	if len(txs) != 4 {
		t.Fatalf("got %d debt transactions, want 4", len(txs))
	}
	txID, _ := txs[0]["id"].(string)
	if rr := s.do(http.MethodDelete, "/transactions/"+txID, ""); rr.Code != http.StatusBadRequest {
		t.Errorf("deleting a debt transaction status = %d, want 400", rr.Code)
	}
}

func TestPayoutNotYetAvailable(t *testing.T) {
	s := newServer(t)
	start := time.Now().UTC().AddDate(0, 0, 30).Format("2006-01-02")

	rr := s.do(http.MethodPost, "/paluwagans", `{"name":"Pool","amountPerNumber":"500","totalNumbers":4,"startDate":"`+start+`","organizer":"Nena","slots":[{"number":1,"isOwner":true}]}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create paluwagan status = %d: %s", rr.Code, rr.Body.String())
	}
	var p struct {
		ID              string `json:"id"`
		PayoutPerNumber string `json:"payoutPerNumber"`
	}
	decodeBody(t, rr, &p)
	if p.PayoutPerNumber != "2000" {
		t.Errorf("payoutPerNumber = %s, want 2000", p.PayoutPerNumber)
	}

	rr = s.do(http.MethodPost, "/paluwagans/"+p.ID+"/payouts/settle", `{"entries":[1],"mode":"markOnly"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("early payout status = %d, want 422: %s", rr.Code, rr.Body.String())
	}
	rr = s.do(http.MethodPost, "/paluwagans/"+p.ID+"/weeks/settle", `{"entries":[1],"mode":"markOnly"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("contribution status = %d: %s", rr.Code, rr.Body.String())
	}
}

func TestStatementDownloads(t *testing.T) {
	s := newServer(t)
	id := s.createAccount("Cash", "100")

	rr := s.do(http.MethodGet, "/accounts/"+id+"/statement.xml", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "<closingBalance>100.00</closingBalance>") {
		t.Errorf("xml status = %d body = %s", rr.Code, rr.Body.String())
	}

	rr = s.do(http.MethodGet, "/accounts/"+id+"/statement.xlsx", "")
	if rr.Code != http.StatusOK || rr.Body.Len() == 0 {
		t.Errorf("xlsx status = %d, %d bytes", rr.Code, rr.Body.Len())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("xlsx content type = %s", ct)
	}

	if rr := s.do(http.MethodGet, "/accounts/missing/statement.xml", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing account statement status = %d, want 404", rr.Code)
	}
}
