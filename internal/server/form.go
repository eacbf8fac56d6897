package server

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/iwvelando/emi-calculator/pkg/amortization"
)

// formInputs echoes the submitted form back into the page.
type formInputs struct {
	LoanAmount          string
	InterestRate        string
	TenureMonths        string
	PaymentFrequency    string
	LoanOrLease         string
	LoanType            string
	GSTRate             string
	ResidualValue       string
	ResidualPct         string
	UpfrontFeePct       string
	SupplierDiscountPct string
	SecurityDepositPct  string
	Moratorium          string
	AdvanceRentals      string
}

func defaultInputs() formInputs {
	return formInputs{
		PaymentFrequency: string(amortization.FrequencyMonthly),
		LoanOrLease:      "loan",
		LoanType:         string(amortization.VariantStandard),
	}
}

// readInputs collects the raw field values. asset_cost and loan_tenure are
// accepted as older names for loan_amount and tenure_months.
func readInputs(form url.Values) formInputs {
	get := func(names ...string) string {
		for _, name := range names {
			if value := strings.TrimSpace(form.Get(name)); value != "" {
				return value
			}
		}
		return ""
	}

	inputs := formInputs{
		LoanAmount:          get("loan_amount", "asset_cost"),
		InterestRate:        get("interest_rate"),
		TenureMonths:        get("tenure_months", "loan_tenure"),
		PaymentFrequency:    get("payment_frequency"),
		LoanOrLease:         get("loan_or_lease"),
		LoanType:            get("loan_type"),
		GSTRate:             get("gst_rate"),
		ResidualValue:       get("residual_value"),
		ResidualPct:         get("residual_pct"),
		UpfrontFeePct:       get("upfront_fee_pct"),
		SupplierDiscountPct: get("supplier_discount_pct"),
		SecurityDepositPct:  get("security_deposit_pct"),
		Moratorium:          get("moratorium"),
		AdvanceRentals:      get("advance_rentals"),
	}

	defaults := defaultInputs()
	if inputs.PaymentFrequency == "" {
		inputs.PaymentFrequency = defaults.PaymentFrequency
	}
	if inputs.LoanOrLease == "" {
		inputs.LoanOrLease = defaults.LoanOrLease
	}
	if inputs.LoanType == "" {
		inputs.LoanType = defaults.LoanType
	}
	return inputs
}

// parameters coerces the inputs. Empty numeric fields are zero; anything
// else that does not parse is a *amortization.ValidationError naming the
// form field.
func (in formInputs) parameters() (amortization.Parameters, error) {
	var p amortization.Parameters
	var err error

	floats := []struct {
		field string
		raw   string
		dst   *float64
	}{
		{"loan_amount", in.LoanAmount, &p.Principal},
		{"interest_rate", in.InterestRate, &p.AnnualRate},
		{"gst_rate", in.GSTRate, &p.GSTPercent},
		{"residual_value", in.ResidualValue, &p.ResidualValue},
		{"residual_pct", in.ResidualPct, &p.ResidualPercent},
		{"upfront_fee_pct", in.UpfrontFeePct, &p.UpfrontFeePercent},
		{"supplier_discount_pct", in.SupplierDiscountPct, &p.SupplierDiscountPercent},
		{"security_deposit_pct", in.SecurityDepositPct, &p.SecurityDepositPercent},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloatField(f.field, f.raw); err != nil {
			return amortization.Parameters{}, err
		}
	}

	ints := []struct {
		field string
		raw   string
		dst   *int
	}{
		{"tenure_months", in.TenureMonths, &p.TenureMonths},
		{"moratorium", in.Moratorium, &p.MoratoriumPeriods},
		{"advance_rentals", in.AdvanceRentals, &p.AdvanceRentals},
	}
	for _, f := range ints {
		if *f.dst, err = parseIntField(f.field, f.raw); err != nil {
			return amortization.Parameters{}, err
		}
	}

	if p.Frequency, err = amortization.ParseFrequency(in.PaymentFrequency); err != nil {
		return amortization.Parameters{}, err
	}

	if strings.EqualFold(in.LoanOrLease, "lease") {
		p.Variant = amortization.VariantLease
	} else if p.Variant, err = amortization.ParseVariant(in.LoanType); err != nil {
		return amortization.Parameters{}, err
	}

	return p, nil
}

func parseFloatField(field, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &amortization.ValidationError{Field: field, Reason: fmt.Sprintf("%s must be a number, got %q", fieldLabel(field), raw)}
	}
	return value, nil
}

func parseIntField(field, raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &amortization.ValidationError{Field: field, Reason: fmt.Sprintf("%s must be a whole number, got %q", fieldLabel(field), raw)}
	}
	return value, nil
}

func fieldLabel(field string) string {
	label := strings.ReplaceAll(field, "_", " ")
	label = strings.Replace(label, " pct", " percentage", 1)
	return strings.ToUpper(label[:1]) + label[1:]
}
