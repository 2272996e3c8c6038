package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"alfredoptarigan/resume-ranker/internal/models"
)

const (
	ColumnCandidateName = "Candidate Name"
	ColumnTotalScore    = "Total Score"

	ReportFileName = "resume_scores.csv"
	ReportMIMEType = "text/csv"
)

// ReportBuilder renders a scored Report as a spreadsheet.
type ReportBuilder interface {
	WriteCSV(w io.Writer, report *models.Report) error
}

type reportBuilder struct{}

func NewReportBuilder() ReportBuilder {
	return &reportBuilder{}
}

// WriteCSV writes the header "Candidate Name, <criteria...>, Total Score"
// followed by one row per record, scores in criteria order.
func (b *reportBuilder) WriteCSV(w io.Writer, report *models.Report) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(report.Criteria)+2)
	header = append(header, ColumnCandidateName)
	header = append(header, report.Criteria...)
	header = append(header, ColumnTotalScore)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range report.Records {
		row := make([]string, 0, len(header))
		row = append(row, record.CandidateName)
		for _, c := range report.Criteria {
			row = append(row, strconv.Itoa(record.ScoreFor(c)))
		}
		row = append(row, strconv.Itoa(record.TotalScore))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", record.FileName, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
