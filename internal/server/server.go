// Package server exposes the schedule engine and budget optimizer over a
// JSON HTTP API. All currency and date formatting beyond plain numbers is
// left to the consumer.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/loan-planner/internal/cache"
	"github.com/iwvelando/loan-planner/internal/config"
	"github.com/iwvelando/loan-planner/pkg/budget"
	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/datetime"
	"github.com/iwvelando/loan-planner/pkg/output"
	"github.com/iwvelando/loan-planner/pkg/schedule"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	engine        *schedule.Engine
	optimizer     *budget.Optimizer
	store         cache.Store
}

// NewHandler constructs the HTTP handler that serves the schedule and
// optimization API. A nil store disables caching.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, store cache.Store) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		engine:        schedule.NewEngine(logger),
		optimizer:     budget.NewOptimizer(logger),
		store:         store,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/schedule", h.handleSchedule)
	mux.HandleFunc("/api/optimize", h.handleOptimize)
	mux.HandleFunc("/api/version", h.handleVersion)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

type paymentSummaryResponse struct {
	Amount *float64 `json:"amount,omitempty"`
	First  *float64 `json:"first,omitempty"`
	Last   *float64 `json:"last,omitempty"`
}

type scheduleEntryResponse struct {
	Month             int      `json:"month"`
	Date              string   `json:"date"`
	Payment           float64  `json:"payment"`
	PrincipalPortion  float64  `json:"principalPortion"`
	InterestPortion   float64  `json:"interestPortion"`
	RemainingBalance  float64  `json:"remainingBalance"`
	AdjustedPayment   *float64 `json:"inflationAdjustedPayment,omitempty"`
	AdjustedBalance   *float64 `json:"inflationAdjustedBalance,omitempty"`
	IsGracePeriod     bool     `json:"isGracePeriod,omitempty"`
	PrepaymentApplied *float64 `json:"prepaymentApplied,omitempty"`
}

type inflationTotalsResponse struct {
	TotalPayments  float64 `json:"totalPayments"`
	Overpayment    float64 `json:"overpayment"`
	OverpaymentPct float64 `json:"overpaymentPct"`
}

type scheduleResponse struct {
	Loan            string                   `json:"loan"`
	MonthlyPayment  paymentSummaryResponse   `json:"monthlyPayment"`
	TotalPayments   float64                  `json:"totalPayments"`
	TotalInterest   float64                  `json:"totalInterest"`
	TotalCommission float64                  `json:"totalCommission"`
	Overpayment     float64                  `json:"overpayment"`
	OverpaymentPct  float64                  `json:"overpaymentPct"`
	TotalCostPct    float64                  `json:"totalCostPct"`
	Inflation       *inflationTotalsResponse `json:"inflation,omitempty"`
	Schedule        []scheduleEntryResponse  `json:"schedule"`
	CSV             string                   `json:"csv"`
	Duration        string                   `json:"duration"`
}

type optimizationResponse struct {
	Budget               string                 `json:"budget"`
	TermMonths           int                    `json:"termMonths"`
	MonthlyPayment       paymentSummaryResponse `json:"monthlyPayment"`
	TotalPayments        float64                `json:"totalPayments"`
	Overpayment          float64                `json:"overpayment"`
	BudgetUtilizationPct float64                `json:"budgetUtilizationPct"`
	Warning              string                 `json:"warning,omitempty"`
	Duration             string                 `json:"duration"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		observeRequest("schedule", http.StatusMethodNotAllowed, start)
		return
	}

	var loan config.Loan
	if status, err := h.decodePayload(w, r, &loan); err != nil {
		h.respondError(w, status, err.Error(), "server.handleSchedule")
		observeRequest("schedule", status, start)
		return
	}

	req, err := loan.ToLoanRequest()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleSchedule")
		observeRequest("schedule", http.StatusBadRequest, start)
		return
	}

	var key string
	if h.store != nil {
		key, err = cache.Key("schedule", req)
		if err == nil {
			if cached, ok := h.store.Get(r.Context(), key); ok {
				cacheHits.Inc()
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, cached)
				observeRequest("schedule", http.StatusOK, start)
				return
			}
		}
	}

	result, err := h.engine.Compute(req)
	if err != nil {
		var invalid *schedule.InvalidRequestError
		status := http.StatusInternalServerError
		if errors.As(err, &invalid) {
			status = http.StatusBadRequest
		}
		h.respondError(w, status, err.Error(), "server.handleSchedule")
		observeRequest("schedule", status, start)
		return
	}

	response := buildScheduleResponse(loan.Name, result, time.Since(start))

	if h.store != nil && key != "" {
		if encoded, err := json.Marshal(response); err == nil {
			if err := h.store.Set(r.Context(), key, string(encoded)); err != nil {
				h.logger.Warn("failed to cache schedule result",
					zap.String("op", "server.handleSchedule"),
					zap.Error(err),
				)
			}
		}
	}

	h.logger.Info("schedule computed",
		zap.String("op", "server.handleSchedule"),
		zap.String("loan", loan.Name),
		zap.Int("months", len(response.Schedule)),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, response)
	observeRequest("schedule", http.StatusOK, start)
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		observeRequest("optimize", http.StatusMethodNotAllowed, start)
		return
	}

	var budgetConfig config.Budget
	if status, err := h.decodePayload(w, r, &budgetConfig); err != nil {
		h.respondError(w, status, err.Error(), "server.handleOptimize")
		observeRequest("optimize", status, start)
		return
	}

	req, err := budgetConfig.ToOptimizationRequest()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.handleOptimize")
		observeRequest("optimize", http.StatusBadRequest, start)
		return
	}

	result := h.optimizer.Optimize(req)

	h.logger.Info("budget optimized",
		zap.String("op", "server.handleOptimize"),
		zap.String("budget", budgetConfig.Name),
		zap.Int("termMonths", result.TermMonths),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, optimizationResponse{
		Budget:               budgetConfig.Name,
		TermMonths:           result.TermMonths,
		MonthlyPayment:       buildPaymentSummary(result.MonthlyPayment),
		TotalPayments:        result.TotalPayments,
		Overpayment:          result.Overpayment,
		BudgetUtilizationPct: result.BudgetUtilizationPct,
		Warning:              result.Warning,
		Duration:             time.Since(start).String(),
	})
	observeRequest("optimize", http.StatusOK, start)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decodePayload reads the request body as YAML (a superset of the JSON
// clients typically send) into target, enforcing the upload size limit.
func (h *handler) decodePayload(w http.ResponseWriter, r *http.Request, target interface{}) (int, error) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return http.StatusRequestEntityTooLarge,
				fmt.Errorf("request exceeds limit of %d bytes", h.maxUploadSize)
		}
		return http.StatusBadRequest, fmt.Errorf("failed to read request: %v", err)
	}
	if err := yaml.Unmarshal(body, target); err != nil {
		return http.StatusBadRequest, fmt.Errorf("failed to decode request: %v", err)
	}
	return http.StatusOK, nil
}

func buildScheduleResponse(name string, result *schedule.LoanResult, elapsed time.Duration) scheduleResponse {
	entries := make([]scheduleEntryResponse, 0, len(result.Schedule))
	for _, entry := range result.Schedule {
		entries = append(entries, scheduleEntryResponse{
			Month:             entry.Month,
			Date:              entry.Date.Format(datetime.DateTimeLayout),
			Payment:           entry.Payment,
			PrincipalPortion:  entry.PrincipalPortion,
			InterestPortion:   entry.InterestPortion,
			RemainingBalance:  entry.RemainingBalance,
			AdjustedPayment:   entry.InflationAdjustedPayment,
			AdjustedBalance:   entry.InflationAdjustedBalance,
			IsGracePeriod:     entry.IsGracePeriod,
			PrepaymentApplied: entry.PrepaymentApplied,
		})
	}

	response := scheduleResponse{
		Loan:            name,
		MonthlyPayment:  buildPaymentSummary(result.MonthlyPayment),
		TotalPayments:   result.TotalPayments,
		TotalInterest:   result.TotalInterest,
		TotalCommission: result.TotalCommission,
		Overpayment:     result.Overpayment,
		OverpaymentPct:  result.OverpaymentPct,
		TotalCostPct:    result.TotalCostPct,
		Schedule:        entries,
		CSV:             output.CsvString(name, result),
		Duration:        elapsed.String(),
	}
	if result.InflationTotals != nil {
		response.Inflation = &inflationTotalsResponse{
			TotalPayments:  result.InflationTotals.TotalPayments,
			Overpayment:    result.InflationTotals.Overpayment,
			OverpaymentPct: result.InflationTotals.OverpaymentPct,
		}
	}
	return response
}

func buildPaymentSummary(p schedule.PaymentSummary) paymentSummaryResponse {
	if p.Kind == schedule.PaymentRange {
		first := p.First
		last := p.Last
		return paymentSummaryResponse{First: &first, Last: &last}
	}
	amount := p.Amount
	return paymentSummaryResponse{Amount: &amount}
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
