// Package testutil provides common utility functions for testing.
package testutil

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/iwvelando/emi-calculator/pkg/amortization"
)

// RowsOfKind returns the schedule rows of the given kind in order.
func RowsOfKind(schedule *amortization.Schedule, kind amortization.RowKind) []amortization.Row {
	var rows []amortization.Row
	for _, row := range schedule.Rows {
		if row.Kind == kind {
			rows = append(rows, row)
		}
	}
	return rows
}

// CaptureStdout runs fn and returns everything it wrote to os.Stdout.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	return <-done
}
