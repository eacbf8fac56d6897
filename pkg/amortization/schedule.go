package amortization

import (
	"fmt"
	"math"

	"github.com/iwvelando/emi-calculator/pkg/mathutil"
	"go.uber.org/zap"
)

// RowKind tells regular installments apart from moratorium and advance rows.
type RowKind string

// Row kinds.
const (
	RowMoratorium RowKind = "moratorium"
	RowAdvance    RowKind = "advance"
	RowRegular    RowKind = "regular"
)

// Row holds the values for a given payment period.
type Row struct {
	Period    int     `json:"period"`
	Kind      RowKind `json:"kind"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// Schedule is the result of building a payment plan.
//
// Cashflows is ordered in time from the lender's perspective: index 0 is the
// negative disbursed amount, followed by one entry per moratorium period
// (zero), advance rental and regular installment.
type Schedule struct {
	Variant              Variant   `json:"variant"`
	Frequency            Frequency `json:"frequency"`
	FinancedAmount       float64   `json:"financedAmount"`
	CapitalizedPrincipal float64   `json:"capitalizedPrincipal"`
	Residual             float64   `json:"residual"`
	PeriodicRate         float64   `json:"periodicRate"`
	Installment          float64   `json:"installment"`
	Periods              int       `json:"periods"`
	AmortizingPeriods    int       `json:"amortizingPeriods"`
	TotalPayment         float64   `json:"totalPayment"`
	TotalInterest        float64   `json:"totalInterest"`
	Rows                 []Row     `json:"rows"`
	Cashflows            []float64 `json:"cashflows"`
}

// Builder provides utilities for generating payment schedules.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a new builder instance.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build validates the parameters and walks the schedule period by period.
// Every derived amount is rounded to two decimals, and the rounding error
// carries forward in the balance the same way a ledger does.
func (b *Builder) Build(p Parameters) (*Schedule, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	rate := p.PeriodicRate()
	factor := p.Frequency.Factor()
	financed := NetFinancedAmount(p)
	residual := ResidualAmount(p)
	principal := CapitalizeMoratorium(financed, rate, p.MoratoriumPeriods)
	periods := p.Periods()
	amortizing := periods - p.AdvanceRentals

	s := &Schedule{
		Variant:              p.Variant,
		Frequency:            p.Frequency,
		FinancedAmount:       financed,
		CapitalizedPrincipal: principal,
		Residual:             residual,
		PeriodicRate:         rate,
		Periods:              periods,
		AmortizingPeriods:    amortizing,
		Rows:                 make([]Row, 0, p.MoratoriumPeriods+periods),
		Cashflows:            make([]float64, 0, 1+p.MoratoriumPeriods+periods),
	}
	s.Cashflows = append(s.Cashflows, -financed)

	period := 0
	appendRow := func(row Row, cashflow float64) {
		period++
		row.Period = period * factor
		row.Balance = mathutil.ClampNonNegative(row.Balance)
		s.Rows = append(s.Rows, row)
		s.Cashflows = append(s.Cashflows, cashflow)
	}

	// Interest capitalizes during the moratorium; nothing is collected.
	balance := financed
	for i := 1; i <= p.MoratoriumPeriods; i++ {
		next := CapitalizeMoratorium(financed, rate, i)
		appendRow(Row{Kind: RowMoratorium, Interest: mathutil.Round(next - balance), Balance: next}, 0)
		balance = next
	}

	s.Installment = installment(p.Variant, principal, rate, amortizing, residual)
	if p.MoratoriumPeriods > 0 {
		b.logger.Debug(fmt.Sprintf("capitalized %.2f into %.2f over %d moratorium periods",
			financed, principal, p.MoratoriumPeriods),
			zap.String("op", "amortization.Build"),
		)
	}

	for i := 0; i < p.AdvanceRentals; i++ {
		appendRow(Row{Kind: RowAdvance, Payment: s.Installment, Balance: principal}, s.Installment)
	}

	balance = principal
	switch p.Variant {
	case VariantBullet:
		for k := 1; k <= amortizing; k++ {
			interest := mathutil.Round(balance * rate)
			row := Row{Kind: RowRegular, Payment: interest, Interest: interest, Balance: balance}
			if k == amortizing {
				row.Principal = balance
				row.Payment = mathutil.Round(interest + balance + residual)
				row.Balance = 0
			}
			appendRow(row, row.Payment)
		}
	case VariantEqualPrincipal:
		principalPart := mathutil.Round(principal / float64(amortizing))
		for k := 1; k <= amortizing; k++ {
			interest := mathutil.Round(balance * rate)
			payment := mathutil.Round(principalPart + interest)
			if k == amortizing && residual > 0 {
				payment = mathutil.Round(payment + residual)
			}
			balance = mathutil.Round(balance - principalPart)
			appendRow(Row{Kind: RowRegular, Payment: payment, Principal: principalPart, Interest: interest, Balance: balance}, payment)
		}
	default:
		emi := s.Installment
		for k := 1; k <= amortizing; k++ {
			interest := mathutil.Round(balance * rate)
			principalPart := mathutil.Round(emi - interest)
			balance = mathutil.Round(balance - principalPart)
			payment := emi
			if k == amortizing && residual > 0 {
				payment = mathutil.Round(payment + residual)
			}
			appendRow(Row{Kind: RowRegular, Payment: payment, Principal: principalPart, Interest: interest, Balance: balance}, payment)
		}
	}

	var totalPayment, totalInterest float64
	for _, row := range s.Rows {
		totalPayment += row.Payment
		totalInterest += row.Interest
	}
	s.TotalPayment = mathutil.Round(totalPayment)
	s.TotalInterest = mathutil.Round(totalInterest)

	if !s.finite() {
		b.logger.Warn("schedule arithmetic overflowed",
			zap.String("op", "amortization.Build"),
			zap.Float64("principal", p.Principal),
			zap.Float64("annual_rate", p.AnnualRate),
			zap.Int("periods", periods),
		)
		return nil, ErrNonFinite
	}

	b.logger.Debug("schedule built",
		zap.String("op", "amortization.Build"),
		zap.String("variant", string(p.Variant)),
		zap.String("frequency", string(p.Frequency)),
		zap.Float64("financed", financed),
		zap.Float64("installment", s.Installment),
		zap.Int("rows", len(s.Rows)),
	)
	return s, nil
}

// installment is the recurring amount advance rentals are charged at: the
// EMI for annuity products, the interest-only payment for bullet loans and
// the first payment for equal-principal loans.
func installment(variant Variant, principal, rate float64, periods int, residual float64) float64 {
	switch variant {
	case VariantBullet:
		return mathutil.Round(principal * rate)
	case VariantEqualPrincipal:
		return mathutil.Round(mathutil.Round(principal/float64(periods)) + mathutil.Round(principal*rate))
	default:
		return mathutil.Round(CalculateEMI(principal, rate, periods, residual))
	}
}

func (s *Schedule) finite() bool {
	values := []float64{s.FinancedAmount, s.CapitalizedPrincipal, s.Installment, s.TotalPayment, s.TotalInterest}
	values = append(values, s.Cashflows...)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// FinalBalance returns the outstanding balance after the last row.
func (s *Schedule) FinalBalance() float64 {
	if len(s.Rows) == 0 {
		return 0
	}
	return s.Rows[len(s.Rows)-1].Balance
}

// PrincipalRepaid sums the principal component of every row.
func (s *Schedule) PrincipalRepaid() float64 {
	var total float64
	for _, row := range s.Rows {
		total += row.Principal
	}
	return mathutil.Round(total)
}
