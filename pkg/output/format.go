// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/emi-calculator/internal/calculator"
	"github.com/iwvelando/emi-calculator/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(result *calculator.Result) {
	WritePretty(os.Stdout, result)
}

// WritePretty writes the summary, the IRR lines and the schedule table to w.
func WritePretty(w io.Writer, result *calculator.Result) {
	p := message.NewPrinter(language.English)
	s := result.Schedule

	_, _ = fmt.Fprintf(w, "--- %s ---\n", result.Summary)
	_, _ = p.Fprintf(w, "Financed amount: ₹%.2f\n", s.FinancedAmount)
	if s.CapitalizedPrincipal != s.FinancedAmount {
		_, _ = p.Fprintf(w, "Principal after moratorium: ₹%.2f\n", s.CapitalizedPrincipal)
	}
	if !mathutil.IsZero(s.Residual) {
		_, _ = p.Fprintf(w, "Residual: ₹%.2f\n", s.Residual)
	}
	_, _ = p.Fprintf(w, "Total payment: ₹%.2f\n", s.TotalPayment)
	_, _ = p.Fprintf(w, "Total interest: ₹%.2f\n", s.TotalInterest)
	for _, line := range result.IRRLines() {
		_, _ = fmt.Fprintln(w, line)
	}

	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Period | Payment       | Principal     | Interest      | Balance       | Notes\n")
	_, _ = fmt.Fprintf(w, "______ | _____________ | _____________ | _____________ | _____________ | _____\n")
	for _, row := range s.Rows {
		_, _ = p.Fprintf(w, "%6d | ₹%12.2f | ₹%12.2f | ₹%12.2f | ₹%12.2f | %s\n",
			row.Period, row.Payment, row.Principal, row.Interest, row.Balance, rowNote(string(row.Kind)))
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result *calculator.Result) {
	fmt.Print(CsvString(result))
}

// CsvString renders the schedule as CSV, one row per period.
func CsvString(result *calculator.Result) string {
	var b strings.Builder
	b.WriteString(`"period","kind","payment","principal","interest","balance"`)
	b.WriteString("\n")
	for _, row := range result.Schedule.Rows {
		fmt.Fprintf(&b, `"%d","%s","%.2f","%.2f","%.2f","%.2f"`,
			row.Period, row.Kind, row.Payment, row.Principal, row.Interest, row.Balance)
		b.WriteString("\n")
	}
	return b.String()
}

func rowNote(kind string) string {
	switch kind {
	case "moratorium":
		return "moratorium, interest capitalized"
	case "advance":
		return "advance rental"
	default:
		return ""
	}
}
