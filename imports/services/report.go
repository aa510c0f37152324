package services

import "fmt"

// Outcome summarizes a finished batch.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
)

// BatchReport accumulates the per-row results of one import call.
type BatchReport struct {
	TotalRows     int        `json:"totalRows"`
	InsertedCount int        `json:"insertedCount"`
	ErrorCount    int        `json:"errorsCount"`
	Errors        []RowError `json:"errors"`
}

func newBatchReport() *BatchReport {
	return &BatchReport{Errors: []RowError{}}
}

func (b *BatchReport) recordWritten() {
	b.TotalRows++
	b.InsertedCount++
}

// recordFailed counts the row once, however many errors it carries.
func (b *BatchReport) recordFailed(errs ...RowError) {
	b.TotalRows++
	b.ErrorCount++
	b.Errors = append(b.Errors, errs...)
}

func (b *BatchReport) Outcome() Outcome {
	switch {
	case b.InsertedCount == 0:
		return OutcomeFailure
	case b.ErrorCount == 0:
		return OutcomeSuccess
	default:
		return OutcomePartial
	}
}

func (b *BatchReport) Message() string {
	switch b.Outcome() {
	case OutcomeSuccess:
		return fmt.Sprintf("%d items imported successfully", b.InsertedCount)
	case OutcomePartial:
		return fmt.Sprintf("%d items imported, %d rows failed", b.InsertedCount, b.ErrorCount)
	default:
		return "No items were imported"
	}
}
