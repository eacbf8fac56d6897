// Package server serves the calculator web form and its JSON API.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/emi-calculator/internal/calculator"
	"github.com/iwvelando/emi-calculator/internal/config"
	"github.com/iwvelando/emi-calculator/pkg/amortization"
	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/iwvelando/emi-calculator/pkg/format"
	"github.com/iwvelando/emi-calculator/pkg/irr"
	"github.com/iwvelando/emi-calculator/pkg/output"
	"github.com/iwvelando/emi-calculator/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed templates/index.html
var templateFiles embed.FS

// Options configures NewHandler.
type Options struct {
	MaxBodySize int64
	Version     string
	Solver      irr.Solver
	RateLimit   RateLimitConfig
	// Registry receives the calculator and HTTP metrics and is served on
	// /metrics. Nil disables both.
	Registry *prometheus.Registry
}

// Handler is the root http.Handler of the service.
type Handler struct {
	logger      *zap.Logger
	calc        *calculator.Calculator
	maxBodySize int64
	version     string
	page        *template.Template
	limiter     *RateLimiter
	root        http.Handler
}

// NewHandler constructs the HTTP handler that serves the web form and calculation API.
func NewHandler(logger *zap.Logger, opts Options) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	var metrics *calculator.Metrics
	if opts.Registry != nil {
		metrics = calculator.NewMetrics(opts.Registry)
	}
	calc, err := calculator.New(logger, opts.Solver, metrics)
	if err != nil {
		return nil, err
	}

	page, err := template.New("index.html").Funcs(template.FuncMap{
		"currency": format.Currency,
	}).ParseFS(templateFiles, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded templates: %w", err)
	}

	h := &Handler{
		logger:      logger,
		calc:        calc,
		maxBodySize: opts.MaxBodySize,
		version:     trimmedVersion,
		page:        page,
	}

	routes := map[string]http.HandlerFunc{
		"/":             h.handleIndex,
		"/api/schedule": h.handleSchedule,
		"/api/export":   h.handleConfigExport,
		"/api/version":  h.handleVersion,
	}

	var requests *prometheus.CounterVec
	var latency *prometheus.HistogramVec
	if opts.Registry != nil {
		requests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emi_calculator",
			Name:      "http_requests_total",
			Help:      "HTTP requests by handler, method and status code.",
		}, []string{"handler", "code", "method"})
		latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "emi_calculator",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by handler.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler", "method"})
		opts.Registry.MustRegister(requests, latency)
	}

	mux := http.NewServeMux()
	for path, fn := range routes {
		var route http.Handler = fn
		if requests != nil {
			labels := prometheus.Labels{"handler": path}
			route = promhttp.InstrumentHandlerDuration(latency.MustCurryWith(labels),
				promhttp.InstrumentHandlerCounter(requests.MustCurryWith(labels), route))
		}
		mux.Handle(path, route)
	}
	if opts.Registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	var root http.Handler = mux
	if opts.RateLimit.RequestsPerMinute > 0 {
		burst := opts.RateLimit.Burst
		if burst <= 0 {
			burst = constants.DefaultRateLimitBurst
		}
		h.limiter = NewRateLimiter(opts.RateLimit.RequestsPerMinute, burst)
		root = h.limiter.Middleware(logger, root)
	}
	h.root = withRequestID(root)

	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

// Close releases the rate limiter's background goroutine.
func (h *Handler) Close() {
	if h.limiter != nil {
		h.limiter.Stop()
	}
}

type scheduleResponse struct {
	Summary         string             `json:"summary"`
	Variant         string             `json:"variant"`
	Frequency       string             `json:"frequency"`
	Installment     float64            `json:"installment"`
	FinancedAmount  float64            `json:"financedAmount"`
	Residual        float64            `json:"residual"`
	TotalPayment    float64            `json:"totalPayment"`
	TotalInterest   float64            `json:"totalInterest"`
	Schedule        []amortization.Row `json:"schedule"`
	Cashflows       []float64          `json:"cashflows"`
	PeriodicRatePct *float64           `json:"periodicRatePct"`
	AnnualRatePct   *float64           `json:"annualRatePct"`
	IRR             []string           `json:"irr"`
	CSV             string             `json:"csv"`
	Warnings        []string           `json:"warnings,omitempty"`
	Duration        string             `json:"duration"`
}

type pageData struct {
	Version  string
	Inputs   formInputs
	Error    string
	Result   *calculator.Result
	Warnings []string
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.renderPage(w, r, http.StatusOK, pageData{Inputs: defaultInputs()})
	case http.MethodPost:
		h.handleFormSubmit(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(h.logger, r)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseForm(); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, fmt.Sprintf("form exceeds limit of %d bytes", h.maxBodySize), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("failed to parse form: %v", err), http.StatusBadRequest)
		return
	}

	data := pageData{Inputs: readInputs(r.PostForm)}
	params, err := data.Inputs.parameters()
	if err != nil {
		data.Error = err.Error()
		h.renderPage(w, r, http.StatusBadRequest, data)
		return
	}

	result, err := h.calc.Calculate(params)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, calculator.ErrNumeric) {
			status = http.StatusUnprocessableEntity
		}
		data.Error = err.Error()
		h.renderPage(w, r, status, data)
		return
	}

	validator := validation.ScheduleValidator{Parameters: params}
	data.Result = result
	data.Warnings = validator.ValidateAll()

	logger.Info("form calculation computed",
		zap.String("op", "server.handleFormSubmit"),
		zap.String("variant", string(params.Variant)),
		zap.Bool("irr", result.HasIRR()),
	)
	h.renderPage(w, r, http.StatusOK, data)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	data.Version = h.version
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.page.Execute(w, data); err != nil {
		requestLogger(h.logger, r).Error("failed to render page",
			zap.String("op", "server.renderPage"),
			zap.Error(err),
		)
	}
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decodeLoan reads a JSON loan body into schedule parameters.
func (h *Handler) decodeLoan(w http.ResponseWriter, r *http.Request, op string) (amortization.Parameters, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var loan config.Loan
	if err := json.NewDecoder(r.Body).Decode(&loan); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				errorResponse{Error: fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize)}, op)
			return amortization.Parameters{}, false
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest,
			errorResponse{Error: fmt.Sprintf("failed to decode request: %v", err)}, op)
		return amortization.Parameters{}, false
	}

	conf := config.Configuration{Loan: loan}
	params, err := conf.ToParameters()
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, validationResponse(err), op)
		return amortization.Parameters{}, false
	}
	return params, true
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	params, ok := h.decodeLoan(w, r, op)
	if !ok {
		return
	}

	result, err := h.calc.Calculate(params)
	if err != nil {
		if errors.Is(err, calculator.ErrNumeric) {
			h.respondErrorWithOp(w, r, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}, op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, validationResponse(err), op)
		return
	}

	validator := validation.ScheduleValidator{Parameters: params}
	s := result.Schedule
	elapsed := time.Since(start)
	response := scheduleResponse{
		Summary:         result.Summary,
		Variant:         string(s.Variant),
		Frequency:       string(s.Frequency),
		Installment:     s.Installment,
		FinancedAmount:  s.FinancedAmount,
		Residual:        s.Residual,
		TotalPayment:    s.TotalPayment,
		TotalInterest:   s.TotalInterest,
		Schedule:        s.Rows,
		Cashflows:       s.Cashflows,
		PeriodicRatePct: result.PeriodicRatePct,
		AnnualRatePct:   result.AnnualRatePct,
		IRR:             result.IRRLines(),
		CSV:             output.CsvString(result),
		Warnings:        validator.ValidateAll(),
		Duration:        elapsed.String(),
	}

	requestLogger(h.logger, r).Info("schedule computed",
		zap.String("op", op),
		zap.String("variant", response.Variant),
		zap.Int("rows", len(response.Schedule)),
		zap.Duration("duration", elapsed),
	)

	writeJSON(h.logger, w, http.StatusOK, response)
}

func (h *Handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	params, ok := h.decodeLoan(w, r, op)
	if !ok {
		return
	}

	yamlBytes, err := yaml.Marshal(config.FromParameters(params, h.calc.Solver()))
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError,
			errorResponse{Error: fmt.Sprintf("failed to encode configuration: %v", err)}, op)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func validationResponse(err error) errorResponse {
	var validationErr *amortization.ValidationError
	if errors.As(err, &validationErr) {
		return errorResponse{Error: validationErr.Reason, Field: validationErr.Field}
	}
	return errorResponse{Error: err.Error()}
}

func (h *Handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, payload errorResponse, op string) {
	requestLogger(h.logger, r).Error("calculation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", payload.Error),
		zap.String("field", payload.Field),
	)

	writeJSON(h.logger, w, status, payload)
}
