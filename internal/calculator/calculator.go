// Package calculator runs the schedule builder and the IRR solver for one
// request and combines their output into a display result.
package calculator

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/emi-calculator/pkg/amortization"
	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/iwvelando/emi-calculator/pkg/format"
	"github.com/iwvelando/emi-calculator/pkg/irr"
	"go.uber.org/zap"
)

// ErrNumeric is returned when the schedule arithmetic overflows. The cause is
// logged; callers only see the generic message.
var ErrNumeric = errors.New("calculation failed")

// IRRUnavailable is displayed when the solver produced no rate.
const IRRUnavailable = "IRR could not be calculated."

// Outcome labels used for metrics.
const (
	outcomeOK         = "ok"
	outcomeNoIRR      = "no_irr"
	outcomeValidation = "validation_error"
	outcomeNumeric    = "numeric_error"
)

// Result is what a rendering layer needs to present one calculation. The
// rate fields are nil when no IRR exists for the cash flows.
type Result struct {
	Summary         string                 `json:"summary"`
	Schedule        *amortization.Schedule `json:"schedule"`
	PeriodicRatePct *float64               `json:"periodicRatePct"`
	AnnualRatePct   *float64               `json:"annualRatePct"`
	IRRError        string                 `json:"irrError,omitempty"`
}

// HasIRR reports whether both rates are present.
func (r *Result) HasIRR() bool {
	return r.PeriodicRatePct != nil && r.AnnualRatePct != nil
}

// IRRLines renders the rates for display, or IRRUnavailable.
func (r *Result) IRRLines() []string {
	if !r.HasIRR() {
		return []string{IRRUnavailable}
	}
	return []string{
		"Periodic IRR: " + format.Percent(*r.PeriodicRatePct),
		"Annualized IRR: " + format.Percent(*r.AnnualRatePct),
	}
}

// Calculator holds the collaborators shared by every calculation.
type Calculator struct {
	logger  *zap.Logger
	builder *amortization.Builder
	solver  irr.Solver
	metrics *Metrics
}

// New creates a calculator. The solver is normalized here so a bad method
// is reported at startup rather than per request.
func New(logger *zap.Logger, solver irr.Solver, metrics *Metrics) (*Calculator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := solver.Normalize(); err != nil {
		return nil, fmt.Errorf("invalid IRR solver: %w", err)
	}

	return &Calculator{
		logger:  logger,
		builder: amortization.NewBuilder(logger),
		solver:  solver,
		metrics: metrics,
	}, nil
}

// Solver returns the normalized solver settings.
func (c *Calculator) Solver() irr.Solver {
	return c.solver
}

// Calculate builds the schedule for p and solves its IRR. A validation
// failure is returned as *amortization.ValidationError. An IRR failure is not
// an error: the result carries the schedule with the rate fields left nil.
func (c *Calculator) Calculate(p amortization.Parameters) (*Result, error) {
	start := time.Now()
	variant := string(p.Variant)

	schedule, err := c.builder.Build(p)
	if err != nil {
		var validationErr *amortization.ValidationError
		if errors.As(err, &validationErr) {
			c.metrics.observe(variant, outcomeValidation, time.Since(start).Seconds())
			c.logger.Info("rejected schedule parameters",
				zap.String("op", "calculator.Calculate"),
				zap.String("field", validationErr.Field),
				zap.String("reason", validationErr.Reason),
			)
			return nil, err
		}

		c.metrics.observe(variant, outcomeNumeric, time.Since(start).Seconds())
		c.logger.Error("schedule calculation failed",
			zap.String("op", "calculator.Calculate"),
			zap.Error(err),
		)
		return nil, ErrNumeric
	}

	result := &Result{
		Summary:  Summary(schedule),
		Schedule: schedule,
	}

	outcome := outcomeOK
	periodic, err := c.solver.Solve(schedule.Cashflows)
	if err != nil {
		outcome = outcomeNoIRR
		result.IRRError = err.Error()
		c.metrics.irrFailure(c.solver.Method, irrFailureReason(err))
		c.logger.Debug("IRR not available",
			zap.String("op", "calculator.Calculate"),
			zap.String("method", c.solver.Method),
			zap.Error(err),
		)
	} else {
		periodicPct := periodic * constants.PercentageMultiplier
		annualPct := irr.Annualize(periodic, schedule.Frequency.PeriodsPerYear()) * constants.PercentageMultiplier
		result.PeriodicRatePct = &periodicPct
		result.AnnualRatePct = &annualPct
	}

	elapsed := time.Since(start)
	c.metrics.observe(variant, outcome, elapsed.Seconds())
	c.logger.Debug("calculation complete",
		zap.String("op", "calculator.Calculate"),
		zap.String("variant", variant),
		zap.String("outcome", outcome),
		zap.Duration("duration", elapsed),
	)
	return result, nil
}

// Summary is the one-line description of a schedule's installment.
func Summary(s *amortization.Schedule) string {
	switch s.Variant {
	case amortization.VariantLease:
		return "Lease EMI: " + format.Currency(s.Installment)
	case amortization.VariantBullet:
		return fmt.Sprintf("Bullet payment: %s interest per period, principal %s at end",
			format.Currency(s.Installment), format.Currency(s.CapitalizedPrincipal))
	case amortization.VariantEqualPrincipal:
		return "Equal principal: first payment " + format.Currency(s.Installment)
	default:
		return "Loan EMI: " + format.Currency(s.Installment)
	}
}

func irrFailureReason(err error) string {
	switch {
	case errors.Is(err, irr.ErrNoSignChange):
		return "no_sign_change"
	case errors.Is(err, irr.ErrNoConvergence):
		return "no_convergence"
	case errors.Is(err, irr.ErrZeroDerivative):
		return "zero_derivative"
	case errors.Is(err, irr.ErrEmptySeries):
		return "empty_series"
	default:
		return "numeric"
	}
}
