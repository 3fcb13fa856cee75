package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/nurpe/freelance-ledger/internal/auth"
	"github.com/nurpe/freelance-ledger/internal/config"
	"github.com/nurpe/freelance-ledger/internal/excel"
	"github.com/nurpe/freelance-ledger/internal/http/middleware"
	"github.com/nurpe/freelance-ledger/internal/model"
	"github.com/nurpe/freelance-ledger/internal/pdf"
	"github.com/nurpe/freelance-ledger/internal/repository"
	"github.com/nurpe/freelance-ledger/internal/repository/testutil"
	"github.com/nurpe/freelance-ledger/internal/service"
)

const testSecret = "handler-test-secret"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := testutil.DB(t)
	repo := repository.NewLedgerRepository(database)
	cfg := &config.Config{
		Ledger: config.LedgerConfig{DepositCapRatio: 0.25, BestClientsLimit: 2},
	}
	handler := NewHandler(
		service.NewLedgerService(repo),
		service.NewPaymentService(repo, pdf.NewGenerator()),
		service.NewDepositService(repo, cfg),
		service.NewAnalyticsService(repository.NewAnalyticsRepository(database), excel.NewGenerator(), cfg),
		zerolog.Nop(),
	)

	router := gin.New()
	handler.Register(router, middleware.Auth(auth.NewParser(testSecret)))
	return router
}

func token(t *testing.T, profileID int64, role model.ProfileRole) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"profile_id": profileID,
		"role":       string(role),
		"exp":        time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func do(t *testing.T, router *gin.Engine, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), into); err != nil {
		t.Fatalf("decode %q: %v", recorder.Body.String(), err)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	router := newTestRouter(t)
	recorder := do(t, router, http.MethodGet, "/healthz", "", nil)
	if recorder.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", recorder.Code)
	}
}

func TestRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)
	recorder := do(t, router, http.MethodGet, "/profiles", "", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", recorder.Code)
	}
	recorder = do(t, router, http.MethodGet, "/profiles", "bogus-token", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d, want 401", recorder.Code)
	}
}

// End to end over the HTTP surface: create the ledger, pay a job,
// deposit within the cap and read the analytics back.
func TestLedgerFlow(t *testing.T) {
	router := newTestRouter(t)
	bootstrap := token(t, 1, model.RoleClient)

	var created struct {
		ProfileID int64 `json:"profile_id"`
	}
	recorder := do(t, router, http.MethodPost, "/profiles", bootstrap, gin.H{"name": "John", "role": "client"})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create client = %d: %s", recorder.Code, recorder.Body.String())
	}
	decode(t, recorder, &created)
	clientID := created.ProfileID
	clientToken := token(t, clientID, model.RoleClient)

	recorder = do(t, router, http.MethodPost, "/profiles", bootstrap, gin.H{"name": "Joe", "role": "contractor"})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create contractor = %d", recorder.Code)
	}
	decode(t, recorder, &created)
	contractorID := created.ProfileID

	var contract struct {
		ContractID int64 `json:"contract_id"`
	}
	recorder = do(t, router, http.MethodPost, "/contracts", clientToken, gin.H{"owner_profile_id": clientID})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create contract = %d: %s", recorder.Code, recorder.Body.String())
	}
	decode(t, recorder, &contract)

	var job struct {
		JobID int64 `json:"job_id"`
	}
	recorder = do(t, router, http.MethodPost, fmt.Sprintf("/contracts/%d/jobs", contract.ContractID), clientToken,
		gin.H{"description": "Design logo", "price": 200.0})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("add job = %d: %s", recorder.Code, recorder.Body.String())
	}
	decode(t, recorder, &job)

	// Unfunded payment is rejected.
	recorder = do(t, router, http.MethodPost, fmt.Sprintf("/jobs/%d/pay", job.JobID), clientToken, nil)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("broke pay = %d, want 400: %s", recorder.Code, recorder.Body.String())
	}

	// Deposit at the cap (25% of 200) funds part of it; top the balance
	// up directly for the rest of the flow.
	var deposit struct {
		NewBalance float64 `json:"new_balance"`
	}
	recorder = do(t, router, http.MethodPost, fmt.Sprintf("/balances/deposit/%d", clientID), clientToken, gin.H{"amount": 50.0})
	if recorder.Code != http.StatusOK {
		t.Fatalf("deposit = %d: %s", recorder.Code, recorder.Body.String())
	}
	decode(t, recorder, &deposit)
	if deposit.NewBalance != 50 {
		t.Errorf("balance after deposit = %v, want 50", deposit.NewBalance)
	}
	recorder = do(t, router, http.MethodPost, fmt.Sprintf("/balances/deposit/%d", clientID), clientToken, gin.H{"amount": 60.0})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("over-cap deposit = %d, want 400", recorder.Code)
	}

	// A contract the caller does not own stays hidden.
	recorder = do(t, router, http.MethodGet, fmt.Sprintf("/contracts/%d", contract.ContractID), token(t, contractorID, model.RoleContractor), nil)
	if recorder.Code != http.StatusForbidden {
		t.Errorf("foreign contract = %d, want 403", recorder.Code)
	}

	var unpaid []struct {
		ID int64 `json:"id"`
	}
	recorder = do(t, router, http.MethodGet, "/jobs/unpaid", clientToken, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("unpaid jobs = %d", recorder.Code)
	}
	decode(t, recorder, &unpaid)
	if len(unpaid) != 1 || unpaid[0].ID != job.JobID {
		t.Errorf("unpaid = %+v, want job %d", unpaid, job.JobID)
	}
}

func TestPayAndAnalyticsFlow(t *testing.T) {
	router := newTestRouter(t)
	bootstrap := token(t, 1, model.RoleClient)

	var created struct {
		ProfileID int64 `json:"profile_id"`
	}
	recorder := do(t, router, http.MethodPost, "/profiles", bootstrap, gin.H{"name": "John", "role": "client"})
	decode(t, recorder, &created)
	clientID := created.ProfileID
	clientToken := token(t, clientID, model.RoleClient)

	do(t, router, http.MethodPost, "/profiles", bootstrap, gin.H{"name": "Joe", "role": "contractor"})

	var contract struct {
		ContractID int64 `json:"contract_id"`
	}
	recorder = do(t, router, http.MethodPost, "/contracts", clientToken, gin.H{"owner_profile_id": clientID})
	decode(t, recorder, &contract)

	var job struct {
		JobID int64 `json:"job_id"`
	}
	recorder = do(t, router, http.MethodPost, fmt.Sprintf("/contracts/%d/jobs", contract.ContractID), clientToken,
		gin.H{"description": "Design logo", "price": 200.0})
	decode(t, recorder, &job)

	// Fund the client well past the cap through more unpaid work, then
	// deposit enough to cover the job.
	recorder = do(t, router, http.MethodPost, fmt.Sprintf("/contracts/%d/jobs", contract.ContractID), clientToken,
		gin.H{"description": "Develop website", "price": 800.0})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("add second job = %d", recorder.Code)
	}
	recorder = do(t, router, http.MethodPost, fmt.Sprintf("/balances/deposit/%d", clientID), clientToken, gin.H{"amount": 250.0})
	if recorder.Code != http.StatusOK {
		t.Fatalf("deposit = %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = do(t, router, http.MethodPost, fmt.Sprintf("/jobs/%d/pay", job.JobID), clientToken, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("pay = %d: %s", recorder.Code, recorder.Body.String())
	}
	var payResult struct {
		PayerBalance float64 `json:"payer_balance"`
	}
	decode(t, recorder, &payResult)
	if payResult.PayerBalance != 50 {
		t.Errorf("payer balance = %v, want 50", payResult.PayerBalance)
	}

	// Paying again conflicts.
	recorder = do(t, router, http.MethodPost, fmt.Sprintf("/jobs/%d/pay", job.JobID), clientToken, nil)
	if recorder.Code != http.StatusConflict {
		t.Errorf("double pay = %d, want 409", recorder.Code)
	}

	recorder = do(t, router, http.MethodGet, "/admin/best-profession?start=2025-01-01&end=2025-12-31", clientToken, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("best profession = %d: %s", recorder.Code, recorder.Body.String())
	}
	var best struct {
		Profession  string  `json:"profession"`
		TotalEarned float64 `json:"total_earned"`
	}
	decode(t, recorder, &best)
	if best.Profession != "client" || best.TotalEarned != 200 {
		t.Errorf("best profession = %+v", best)
	}

	recorder = do(t, router, http.MethodGet, "/admin/best-clients?start=2025-01-01&end=2025-12-31", clientToken, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("best clients = %d", recorder.Code)
	}
	var clients []struct {
		ID   int64   `json:"id"`
		Paid float64 `json:"paid"`
	}
	decode(t, recorder, &clients)
	if len(clients) != 1 || clients[0].ID != clientID || clients[0].Paid != 200 {
		t.Errorf("best clients = %+v", clients)
	}

	// Dates are mandatory on the admin endpoints.
	recorder = do(t, router, http.MethodGet, "/admin/best-clients", clientToken, nil)
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("best clients without dates = %d, want 400", recorder.Code)
	}

	recorder = do(t, router, http.MethodGet, fmt.Sprintf("/jobs/%d/receipt", job.JobID), clientToken, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("receipt = %d: %s", recorder.Code, recorder.Body.String())
	}
	if !bytes.HasPrefix(recorder.Body.Bytes(), []byte("%PDF")) {
		t.Error("receipt body is not a PDF")
	}

	recorder = do(t, router, http.MethodGet, "/admin/earnings-report?start=2025-01-01&end=2025-12-31", clientToken, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("earnings report = %d: %s", recorder.Code, recorder.Body.String())
	}
	if recorder.Header().Get("Content-Disposition") == "" {
		t.Error("earnings report missing attachment header")
	}
}
