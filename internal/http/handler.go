package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/freelance-ledger/internal/http/middleware"
	"github.com/nurpe/freelance-ledger/internal/model"
	"github.com/nurpe/freelance-ledger/internal/service"
)

type Handler struct {
	ledger    *service.LedgerService
	payments  *service.PaymentService
	deposits  *service.DepositService
	analytics *service.AnalyticsService
	log       zerolog.Logger
}

func NewHandler(
	ledger *service.LedgerService,
	payments *service.PaymentService,
	deposits *service.DepositService,
	analytics *service.AnalyticsService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		ledger:    ledger,
		payments:  payments,
		deposits:  deposits,
		analytics: analytics,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)

	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/profiles", h.createProfile)
	protected.GET("/profiles", h.listProfiles)
	protected.POST("/contracts", h.createContract)
	protected.GET("/profiles/:id/contracts", h.listContracts)
	protected.GET("/contracts", h.listActiveContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.POST("/contracts/:id/jobs", h.addJob)
	protected.GET("/jobs/unpaid", h.listUnpaidJobs)
	protected.POST("/jobs/:id/pay", h.payJob)
	protected.GET("/jobs/:id/receipt", h.jobReceipt)
	protected.POST("/balances/deposit/:id", h.deposit)
	protected.GET("/admin/best-profession", h.bestProfession)
	protected.GET("/admin/best-clients", h.bestClients)
	protected.GET("/admin/earnings-report", h.earningsReport)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createProfileRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role" binding:"required"`
}

func (h *Handler) createProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.ledger.CreateProfile(c.Request.Context(), service.CreateProfileInput{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"profile_id": id})
}

func (h *Handler) listProfiles(c *gin.Context) {
	profiles, err := h.ledger.ListProfiles(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]gin.H, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, gin.H{
			"id":      p.ID,
			"name":    p.Name,
			"role":    p.Role,
			"balance": p.Balance,
		})
	}
	c.JSON(http.StatusOK, out)
}

type createContractRequest struct {
	OwnerProfileID int64 `json:"owner_profile_id" binding:"required"`
}

func (h *Handler) createContract(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.ledger.CreateContract(c.Request.Context(), req.OwnerProfileID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contract_id": id})
}

func (h *Handler) listContracts(c *gin.Context) {
	profileID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}
	contracts, err := h.ledger.ListContracts(c.Request.Context(), profileID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]gin.H, 0, len(contracts))
	for _, contract := range contracts {
		out = append(out, gin.H{"id": contract.ID, "status": contract.Status})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) listActiveContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	contracts, err := h.ledger.ListActiveContracts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]gin.H, 0, len(contracts))
	for _, contract := range contracts {
		out = append(out, contractResponse(contract))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	contract, err := h.ledger.GetContract(c.Request.Context(), contractID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contractResponse(*contract))
}

type addJobRequest struct {
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
}

func (h *Handler) addJob(c *gin.Context) {
	contractID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	var req addJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.ledger.AddJob(c.Request.Context(), service.AddJobInput{
		ContractID:  contractID,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job_id": id})
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	jobs, err := h.ledger.ListUnpaidJobs(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]gin.H, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, gin.H{
			"id":          job.ID,
			"description": job.Description,
			"price":       job.Price,
			"contract_id": job.ContractID,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) payJob(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	jobID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}
	result, err := h.payments.PayJob(c.Request.Context(), service.PayJobInput{
		JobID:     jobID,
		Principal: principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"job_id":        result.JobID,
		"amount":        result.Amount,
		"payer_balance": result.PayerBalance,
		"contractor_id": result.ContractorID,
	})
}

func (h *Handler) jobReceipt(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	jobID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}
	result, err := h.payments.JobReceipt(c.Request.Context(), jobID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

type depositRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

func (h *Handler) deposit(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	profileID, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.deposits.Deposit(c.Request.Context(), service.DepositInput{
		ProfileID: profileID,
		Amount:    req.Amount,
		Principal: principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_balance": result.NewBalance})
}

func (h *Handler) bestProfession(c *gin.Context) {
	input, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	best, err := h.analytics.BestProfession(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profession":   best.Role,
		"total_earned": best.Total,
	})
}

func (h *Handler) bestClients(c *gin.Context) {
	input, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	clients, err := h.analytics.BestClients(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]gin.H, 0, len(clients))
	for _, client := range clients {
		out = append(out, gin.H{
			"id":        client.ProfileID,
			"full_name": client.Name,
			"paid":      client.TotalPaid,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) earningsReport(c *gin.Context) {
	input, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.analytics.EarningsReport(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrDepositExceedsCap):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyPaid), errors.Is(err, service.ErrNoContractorAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func contractResponse(contract model.Contract) gin.H {
	jobs := make([]gin.H, 0, len(contract.Jobs))
	for _, job := range contract.Jobs {
		jobs = append(jobs, gin.H{
			"id":          job.ID,
			"description": job.Description,
			"price":       job.Price,
			"paid_amount": job.PaidAmount,
		})
	}
	return gin.H{
		"id":     contract.ID,
		"status": contract.Status,
		"jobs":   jobs,
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.ErrInvalidInput
	}
	return id, nil
}

func parsePeriod(c *gin.Context) (service.PeriodInput, error) {
	start, err := parseDate(c.Query("start"))
	if err != nil {
		return service.PeriodInput{}, errors.New("invalid start date")
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		return service.PeriodInput{}, errors.New("invalid end date")
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return service.PeriodInput{}, errors.New("invalid limit")
		}
	}
	return service.PeriodInput{Start: start, End: end, Limit: limit}, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
