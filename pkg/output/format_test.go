package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iwvelando/emi-calculator/internal/calculator"
	"github.com/iwvelando/emi-calculator/pkg/amortization"
	"github.com/iwvelando/emi-calculator/pkg/irr"
	"github.com/iwvelando/emi-calculator/pkg/testutil"
)

func calculate(t *testing.T, params amortization.Parameters) *calculator.Result {
	t.Helper()
	calc, err := calculator.New(nil, irr.DefaultSolver(), nil)
	if err != nil {
		t.Fatalf("calculator.New() error = %v", err)
	}
	result, err := calc.Calculate(params)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	return result
}

func TestPrettyFormat(t *testing.T) {
	result := calculate(t, amortization.Parameters{
		Principal:    100000,
		AnnualRate:   12,
		TenureMonths: 12,
		Frequency:    amortization.FrequencyMonthly,
		Variant:      amortization.VariantStandard,
	})

	output := testutil.CaptureStdout(t, func() { PrettyFormat(result) })

	expected := []string{
		"--- Loan EMI: ₹8,884.88 ---",
		"Financed amount: ₹100,000.00",
		"Periodic IRR: 1.00%",
		"Annualized IRR: 12.68%",
		"Period | Payment       | Principal     | Interest      | Balance       | Notes",
		"______ | _____________ | _____________ | _____________ | _____________ | _____",
		"8,884.88",
		"7,884.88",
		"92,115.12",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat missing %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Residual") {
		t.Errorf("PrettyFormat should not print a residual line without a residual")
	}
}

func TestPrettyFormatWithoutIRR(t *testing.T) {
	result := calculate(t, amortization.Parameters{
		Principal:    100000,
		AnnualRate:   0,
		TenureMonths: 10,
		Frequency:    amortization.FrequencyMonthly,
		Variant:      amortization.VariantStandard,
	})

	var buf bytes.Buffer
	WritePretty(&buf, result)
	output := buf.String()

	if !strings.Contains(output, calculator.IRRUnavailable) {
		t.Errorf("WritePretty missing IRR failure line:\n%s", output)
	}
	if strings.Contains(output, "Periodic IRR") {
		t.Errorf("WritePretty printed a rate without an IRR")
	}
}

func TestPrettyFormatNotes(t *testing.T) {
	result := calculate(t, amortization.Parameters{
		Principal:         100000,
		AnnualRate:        12,
		TenureMonths:      12,
		Frequency:         amortization.FrequencyMonthly,
		Variant:           amortization.VariantLease,
		ResidualValue:     10000,
		MoratoriumPeriods: 1,
		AdvanceRentals:    1,
	})

	var buf bytes.Buffer
	WritePretty(&buf, result)
	output := buf.String()

	if rows := testutil.RowsOfKind(result.Schedule, amortization.RowAdvance); len(rows) != 1 {
		t.Fatalf("expected one advance row, got %d", len(rows))
	}

	for _, want := range []string{
		"--- Lease EMI:",
		"Principal after moratorium: ₹101,000.00",
		"Residual: ₹10,000.00",
		"moratorium, interest capitalized",
		"advance rental",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("WritePretty missing %q in output:\n%s", want, output)
		}
	}
}

func TestCsvFormat(t *testing.T) {
	result := calculate(t, amortization.Parameters{
		Principal:    100000,
		AnnualRate:   12,
		TenureMonths: 12,
		Frequency:    amortization.FrequencyMonthly,
		Variant:      amortization.VariantStandard,
	})

	output := testutil.CaptureStdout(t, func() { CsvFormat(result) })
	lines := strings.Split(strings.TrimSpace(output), "\n")

	if len(lines) != 13 {
		t.Fatalf("CsvFormat produced %d lines, expected 13", len(lines))
	}
	if lines[0] != `"period","kind","payment","principal","interest","balance"` {
		t.Errorf("CsvFormat header = %s", lines[0])
	}
	if lines[1] != `"1","regular","8884.88","7884.88","1000.00","92115.12"` {
		t.Errorf("CsvFormat first row = %s", lines[1])
	}
	if output != CsvString(result) {
		t.Errorf("CsvFormat and CsvString disagree")
	}
}
