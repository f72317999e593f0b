// Package export serializes the last-known result set to downloadable
// artifacts with deterministic, date-derived names.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"marklens/internal/domain"
	"marklens/internal/presenter"
)

const filenamePrefix = "marksheet-extraction-"

// Artifact is one downloadable export: a name safe for Content-Disposition
// (date truncated to the day, no colons or periods beyond the extension),
// a content type, and the payload bytes.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// JSON serializes the stored result to a pretty-printed JSON artifact,
// exactly as received from the service. Returns domain.ErrNoResult when
// there is nothing to export.
func JSON(result *domain.Result, now time.Time) (*Artifact, error) {
	payload, err := result.Payload()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return nil, fmt.Errorf("formatting export payload: %w", err)
	}
	return &Artifact{
		Filename:    filenamePrefix + now.Format("2006-01-02") + ".json",
		ContentType: "application/json",
		Data:        buf.Bytes(),
	}, nil
}

// Workbook serializes the stored result to an XLSX artifact with a summary
// sheet and a subjects sheet. Batch results get one summary row and one
// subjects block per item, in original order.
func Workbook(result *domain.Result, now time.Time) (*Artifact, error) {
	if result == nil || (result.Single == nil && result.Batch == nil) {
		return nil, domain.ErrNoResult
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const summarySheet = "Summary"
	const subjectsSheet = "Subjects"

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(subjectsSheet); err != nil {
		return nil, err
	}

	if result.IsBatch() {
		if err := writeBatch(f, summarySheet, subjectsSheet, result.Batch); err != nil {
			return nil, err
		}
	} else {
		if err := writeSingle(f, summarySheet, subjectsSheet, result.Single); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return &Artifact{
		Filename:    filenamePrefix + now.Format("2006-01-02") + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

var subjectHeaders = []string{"File", "Subject", "Obtained Marks", "Max Marks", "Grade", "Confidence"}

func writeSingle(f *excelize.File, summarySheet, subjectsSheet string, res *domain.ExtractionResult) error {
	view := presenter.Single(res)

	rows := [][]any{
		{"Overall Confidence", formatPercent(view.Summary.OverallConfidence)},
		{"Confidence Band", string(view.Summary.OverallBand)},
		{"Subjects", view.Summary.SubjectCount},
		{"Total Marks", view.Summary.TotalMarks},
		{"Result", view.Summary.Headline},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(summarySheet, cell(1, i+1), &row); err != nil {
			return err
		}
	}

	header := toAnyRow(subjectHeaders)
	if err := f.SetSheetRow(subjectsSheet, cell(1, 1), &header); err != nil {
		return err
	}
	return writeSubjectRows(f, subjectsSheet, 2, "", view.Subjects)
}

func writeBatch(f *excelize.File, summarySheet, subjectsSheet string, br domain.BatchResult) error {
	view := presenter.Batch(br)

	summaryHeader := []any{"File", "Status", "Overall Confidence", "Subjects", "Result"}
	if err := f.SetSheetRow(summarySheet, cell(1, 1), &summaryHeader); err != nil {
		return err
	}
	for i, item := range view.Items {
		row := []any{item.Filename}
		if item.Success {
			row = append(row, "succeeded",
				formatPercent(item.View.Summary.OverallConfidence),
				item.View.Summary.SubjectCount,
				item.View.Summary.Headline)
		} else {
			row = append(row, "failed", "", "", item.Error)
		}
		if err := f.SetSheetRow(summarySheet, cell(1, i+2), &row); err != nil {
			return err
		}
	}

	header := toAnyRow(subjectHeaders)
	if err := f.SetSheetRow(subjectsSheet, cell(1, 1), &header); err != nil {
		return err
	}
	rowNum := 2
	for _, item := range view.Items {
		if !item.Success {
			continue
		}
		if err := writeSubjectRows(f, subjectsSheet, rowNum, item.Filename, item.View.Subjects); err != nil {
			return err
		}
		rowNum += len(item.View.Subjects)
	}
	return nil
}

func writeSubjectRows(f *excelize.File, sheet string, startRow int, filename string, subjects []presenter.SubjectRow) error {
	for i, s := range subjects {
		row := []any{filename, s.Subject, s.ObtainedMarks, s.MaxMarks, s.Grade, formatPercent(s.Confidence)}
		if err := f.SetSheetRow(sheet, cell(1, startRow+i), &row); err != nil {
			return err
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func toAnyRow(values []string) []any {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

func formatPercent(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}
