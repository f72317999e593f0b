// Package presenter builds rendering-agnostic view models from extraction
// results. The presentation layer owns markup, styling, and input; it only
// consumes these structs.
package presenter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"marklens/internal/confidence"
	"marklens/internal/domain"
)

// NotAvailable is the display placeholder for absent values.
const NotAvailable = "Not Available"

// Summary holds the headline metrics for one extraction result.
type Summary struct {
	OverallConfidence float64
	OverallBand       domain.ConfidenceBand
	SubjectCount      int
	TotalMarks        string
	Headline          string
}

// LabeledValue is one formatted key/value pair within a section.
type LabeledValue struct {
	Key        string
	Label      string
	Value      string
	Confidence *float64
	Band       domain.ConfidenceBand
}

// Section is one titled group of labeled values; omitted when its source
// data is absent.
type Section struct {
	Title  string
	Fields []LabeledValue
}

// SubjectRow is one row of the subjects table.
type SubjectRow struct {
	Subject       string
	ObtainedMarks string
	MaxMarks      string
	Grade         string
	Confidence    float64
	Band          domain.ConfidenceBand
}

// SingleView is the formatted view of one extraction result. Nil sections
// are absent from the source; NoData marks a result with no sections at all.
type SingleView struct {
	Summary        Summary
	CandidateInfo  *Section
	Subjects       []SubjectRow
	OverallResult  *Section
	AdditionalInfo *Section
	NoData         bool
}

// BatchSummary holds the batch summary card values. SuccessRate is a whole
// percentage, 0 for an empty batch.
type BatchSummary struct {
	Total       int
	Successful  int
	Failed      int
	SuccessRate int
}

// BatchItemView is one batch item: either a labeled single-result view or a
// failure notice. Per-item failures do not affect sibling items.
type BatchItemView struct {
	Filename string
	Success  bool
	View     *SingleView
	Error    string
}

// BatchView is the formatted view of a batch result, items in original order.
type BatchView struct {
	Summary BatchSummary
	Items   []BatchItemView
}

// Preferred key orderings per section; keys not listed render after these,
// sorted, so unordered JSON maps produce deterministic views.
var (
	candidateKeyOrder = []string{
		"name", "father_name", "mother_name", "roll_number",
		"registration_number", "date_of_birth", "exam_year",
		"board_university", "institution",
	}
	overallKeyOrder = []string{
		"total_marks", "max_marks", "percentage", "cgpa",
		"grade", "division", "result_status",
	}
)

// Single builds the formatted view of one extraction result.
func Single(res *domain.ExtractionResult) SingleView {
	view := SingleView{}
	if res == nil || res.IsEmpty() {
		view.NoData = true
		return view
	}

	view.Summary = buildSummary(res)
	view.CandidateInfo = buildSection("Candidate Information", res.CandidateInfo, candidateKeyOrder)
	view.OverallResult = buildSection("Overall Result", res.OverallResult, overallKeyOrder)
	view.AdditionalInfo = buildSection("Additional Information", res.AdditionalInfo, nil)

	for _, s := range res.Subjects {
		score := confidence.SubjectMean(s)
		view.Subjects = append(view.Subjects, SubjectRow{
			Subject:       displayValue(confidence.Unwrap(s.Subject)),
			ObtainedMarks: displayValue(confidence.Unwrap(s.ObtainedMarks)),
			MaxMarks:      displayValue(confidence.Unwrap(s.MaxMarks)),
			Grade:         displayValue(confidence.Unwrap(s.Grade)),
			Confidence:    score,
			Band:          confidence.BandFor(score),
		})
	}
	return view
}

// Batch builds the formatted view of a batch result with its summary card
// values: total, successful, failed, and whole-percentage success rate.
func Batch(br domain.BatchResult) BatchView {
	view := BatchView{}
	view.Summary.Total = len(br)
	for _, item := range br {
		if item.Success {
			view.Summary.Successful++
		}
	}
	view.Summary.Failed = view.Summary.Total - view.Summary.Successful
	if view.Summary.Total > 0 {
		rate := float64(view.Summary.Successful) / float64(view.Summary.Total) * 100
		view.Summary.SuccessRate = int(math.Round(rate))
	}

	for _, item := range br {
		iv := BatchItemView{Filename: item.Filename, Success: item.Success}
		if item.Success {
			single := Single(item.Data)
			iv.View = &single
		} else {
			iv.Error = item.Error
		}
		view.Items = append(view.Items, iv)
	}
	return view
}

// Raw renders the stored result's payload verbatim as pretty-printed JSON.
func Raw(result *domain.Result) (string, error) {
	payload, err := result.Payload()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return "", fmt.Errorf("formatting raw result: %w", err)
	}
	return buf.String(), nil
}

// FormatLabel renders an underscore-delimited key with each segment
// capitalized and joined by spaces: father_name becomes Father Name.
func FormatLabel(key string) string {
	segments := strings.Split(key, "_")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		segments[i] = strings.ToUpper(seg[:1]) + seg[1:]
	}
	return strings.Join(segments, " ")
}

func buildSummary(res *domain.ExtractionResult) Summary {
	score := confidence.Mean(res.Generic())
	s := Summary{
		OverallConfidence: score,
		OverallBand:       confidence.BandFor(score),
		SubjectCount:      len(res.Subjects),
		TotalMarks:        NotAvailable,
		Headline:          NotAvailable,
	}

	if tm, ok := res.OverallResult["total_marks"]; ok {
		s.TotalMarks = displayValue(confidence.Unwrap(tm))
	}
	if pct, ok := res.OverallResult["percentage"]; ok {
		s.Headline = displayValue(confidence.Unwrap(pct))
	} else if grade, ok := res.OverallResult["grade"]; ok {
		s.Headline = displayValue(confidence.Unwrap(grade))
	}
	return s
}

func buildSection(title string, data map[string]any, keyOrder []string) *Section {
	if len(data) == 0 {
		return nil
	}
	section := &Section{Title: title}
	for _, key := range orderedKeys(data, keyOrder) {
		f := confidence.Unwrap(data[key])
		lv := LabeledValue{
			Key:        key,
			Label:      FormatLabel(key),
			Value:      displayValue(f),
			Confidence: f.Confidence,
		}
		if f.HasConfidence() {
			lv.Band = confidence.BandFor(*f.Confidence)
		}
		section.Fields = append(section.Fields, lv)
	}
	return section
}

// orderedKeys returns preferred keys first in their canonical order, then
// any remaining keys sorted.
func orderedKeys(data map[string]any, preferred []string) []string {
	keys := make([]string, 0, len(data))
	seen := make(map[string]bool, len(preferred))
	for _, key := range preferred {
		if _, ok := data[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	rest := make([]string, 0, len(data))
	for key := range data {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func displayValue(f domain.Field) string {
	if f.Value == nil {
		return NotAvailable
	}
	switch v := f.Value.(type) {
	case string:
		if v == "" {
			return NotAvailable
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprintf("%v", v)
	}
}

