package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/FilipeTerra/MyFinance/internal/domain"
	"github.com/FilipeTerra/MyFinance/internal/repository"
	"github.com/FilipeTerra/MyFinance/internal/service/account"
	"github.com/FilipeTerra/MyFinance/internal/service/auth"
	"github.com/FilipeTerra/MyFinance/internal/service/category"
	"github.com/FilipeTerra/MyFinance/internal/service/transaction"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	auth        auth.Service
	account     account.Service
	category    category.Service
	transaction transaction.Service
	limiter     RateLimiter
	dbHealth    func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateLimitRegister  = 5
	rateLimitLogin     = 12
	rateLimitUserWrite = 60
	rateLimitUserRead  = 120
	healthCheckTimeout = 2 * time.Second
)

const dateLayout = "2006-01-02"

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, accountSvc account.Service, categorySvc category.Service, transactionSvc transaction.Service, limiter RateLimiter, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:         http.NewServeMux(),
		logger:      logger,
		auth:        authSvc,
		account:     accountSvc,
		category:    categorySvc,
		transaction: transactionSvc,
		limiter:     limiter,
		dbHealth:    dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.audit(r.handleHealthz))
	r.mux.Handle("/metrics", promhttp.Handler())
	r.mux.HandleFunc("/auth/register", r.audit(r.withRateLimit("/auth/register", rateLimitRegister, rateWindowDefault, rateLimitKeyIP, r.handleRegister)))
	r.mux.HandleFunc("/auth/login", r.audit(r.withRateLimit("/auth/login", rateLimitLogin, rateWindowDefault, rateLimitKeyIP, r.handleLogin)))
	r.mux.HandleFunc("/accounts", r.audit(r.handlerAuthRate("/accounts", rateLimitUserWrite, rateWindowDefault, r.handleAccounts)))
	r.mux.HandleFunc("/accounts/", r.audit(r.handlerAuthRate("/accounts/{id}", rateLimitUserWrite, rateWindowDefault, r.handleAccountByID)))
	r.mux.HandleFunc("/categories", r.audit(r.handlerAuthRate("/categories", rateLimitUserWrite, rateWindowDefault, r.handleCategories)))
	r.mux.HandleFunc("/categories/", r.audit(r.handlerAuthRate("/categories/{id}", rateLimitUserWrite, rateWindowDefault, r.handleCategoryByID)))
	r.mux.HandleFunc("/transactions", r.audit(r.handlerAuthRate("/transactions", rateLimitUserWrite, rateWindowDefault, r.handleTransactions)))
	r.mux.HandleFunc("/transactions/", r.audit(r.handlerAuthRate("/transactions/{id}", rateLimitUserRead, rateWindowDefault, r.handleTransactionSubroutes)))
}

// statusForError maps service failures to HTTP statuses: 404 for
// absent-or-foreign resources, 401 for credential failures, 400 for
// validation and business-rule violations. Anything unrecognized is an
// unexpected failure and surfaces as 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, account.ErrHasTransactions),
		errors.Is(err, category.ErrInUse),
		errors.Is(err, transaction.ErrAccountNotFound),
		errors.Is(err, transaction.ErrCategoryNotFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) writeServiceError(w http.ResponseWriter, err error) {
	switch status := statusForError(err); status {
	case http.StatusNotFound:
		writeError(w, status, "resource not found")
	case http.StatusInternalServerError:
		// The cause is logged server-side only; clients get a generic
		// message so storage internals never leak.
		r.logger.Error("request failed unexpectedly", "error", err)
		writeError(w, status, "unexpected error, try again later")
	default:
		writeError(w, status, err.Error())
	}
}

func (r *Router) callerInfo(w http.ResponseWriter, req *http.Request) (authInfo, bool) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "authorization context missing")
	}
	return info, ok
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.ConfirmPassword != "" && payload.ConfirmPassword != payload.Password {
		writeError(w, http.StatusBadRequest, "password confirmation does not match")
		return
	}
	user, err := r.auth.Register(req.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrRegistrationFailed) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		r.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	credential, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
			return
		}
		r.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, credential)
}

func (r *Router) handleAccounts(w http.ResponseWriter, req *http.Request) {
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		accounts, err := r.account.ListAll(req.Context(), info.UserID)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, accounts)
	case http.MethodPost:
		var payload account.CreateInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := r.account.Create(req.Context(), info.UserID, payload)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleAccountByID(w http.ResponseWriter, req *http.Request) {
	accountID := strings.TrimPrefix(req.URL.Path, "/accounts/")
	if accountID == "" || strings.Contains(accountID, "/") {
		r.notFound(w)
		return
	}
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		found, err := r.account.Get(req.Context(), info.UserID, accountID)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, found)
	case http.MethodPut:
		var payload account.UpdateInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updated, err := r.account.Update(req.Context(), info.UserID, accountID, payload)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := r.account.Delete(req.Context(), info.UserID, accountID); err != nil {
			r.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCategories(w http.ResponseWriter, req *http.Request) {
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		categories, err := r.category.ListAll(req.Context(), info.UserID)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	case http.MethodPost:
		var payload struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := r.category.Create(req.Context(), info.UserID, payload.Name)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCategoryByID(w http.ResponseWriter, req *http.Request) {
	categoryID := strings.TrimPrefix(req.URL.Path, "/categories/")
	if categoryID == "" || strings.Contains(categoryID, "/") {
		r.notFound(w)
		return
	}
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		found, err := r.category.Get(req.Context(), info.UserID, categoryID)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, found)
	case http.MethodPut:
		var payload struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updated, err := r.category.Update(req.Context(), info.UserID, categoryID, payload.Name)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := r.category.Delete(req.Context(), info.UserID, categoryID); err != nil {
			r.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleTransactions(w http.ResponseWriter, req *http.Request) {
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		accountID := strings.TrimSpace(req.URL.Query().Get("accountId"))
		if accountID == "" {
			writeError(w, http.StatusBadRequest, "accountId query parameter required")
			return
		}
		transactions, err := r.transaction.GetByAccount(req.Context(), info.UserID, accountID)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, transactions)
	case http.MethodPost:
		var payload transaction.Input
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created, err := r.transaction.Create(req.Context(), info.UserID, payload)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleTransactionSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/transactions/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 1 && parts[0] == "search" {
		r.handleTransactionSearch(w, req)
		return
	}
	if len(parts) == 2 && parts[0] == "account" && parts[1] != "" {
		r.handleTransactionsByAccount(w, req, parts[1])
		return
	}
	if len(parts) == 1 && parts[0] != "" {
		r.handleTransactionByID(w, req, parts[0])
		return
	}
	r.notFound(w)
}

func (r *Router) handleTransactionsByAccount(w http.ResponseWriter, req *http.Request, accountID string) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	transactions, err := r.transaction.GetByAccount(req.Context(), info.UserID, accountID)
	if err != nil {
		r.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (r *Router) handleTransactionByID(w http.ResponseWriter, req *http.Request, transactionID string) {
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	switch req.Method {
	case http.MethodGet:
		found, err := r.transaction.GetByID(req.Context(), info.UserID, transactionID)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, found)
	case http.MethodPut:
		var payload transaction.Input
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updated, err := r.transaction.Update(req.Context(), info.UserID, transactionID, payload)
		if err != nil {
			r.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := r.transaction.Delete(req.Context(), info.UserID, transactionID); err != nil {
			r.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleTransactionSearch(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	info, ok := r.callerInfo(w, req)
	if !ok {
		return
	}
	query := req.URL.Query()
	input := transaction.SearchInput{
		AccountID:  strings.TrimSpace(query.Get("accountId")),
		SearchText: query.Get("searchText"),
	}
	if input.AccountID == "" {
		writeError(w, http.StatusBadRequest, "accountId query parameter required")
		return
	}
	if raw := strings.TrimSpace(query.Get("date")); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must use YYYY-MM-DD format")
			return
		}
		input.Date = &parsed
	}
	if raw := strings.TrimSpace(query.Get("amount")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || !parsed.IsPositive() {
			writeError(w, http.StatusBadRequest, "amount must be a positive decimal")
			return
		}
		input.Amount = &parsed
	}
	input.Page, _ = strconv.Atoi(query.Get("page"))
	input.PageSize, _ = strconv.Atoi(query.Get("pageSize"))

	transactions, err := r.transaction.Search(req.Context(), info.UserID, input)
	if err != nil {
		r.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "resource not found")
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
