package presenter_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marklens/internal/domain"
	"marklens/internal/presenter"
)

func decodeResult(t *testing.T, payload string) *domain.ExtractionResult {
	t.Helper()
	var res domain.ExtractionResult
	require.NoError(t, json.Unmarshal([]byte(payload), &res))
	return &res
}

func TestSingle_FormattedMarksheet(t *testing.T) {
	res := decodeResult(t, `{
		"candidate_info": {
			"name": {"value": "Priya Sharma", "confidence": 0.95},
			"roll_number": {"value": "A-1042", "confidence": 0.85}
		},
		"subjects": [{
			"subject": {"value": "Math", "confidence": 0.9},
			"obtained_marks": {"value": 88, "confidence": 0.9},
			"max_marks": {"value": 100, "confidence": 0.9},
			"grade": {"value": "A", "confidence": 0.9}
		}],
		"overall_result": {
			"total_marks": {"value": 88, "confidence": 0.9},
			"percentage": {"value": 88, "confidence": 0.9}
		}
	}`)

	view := presenter.Single(res)
	assert.False(t, view.NoData)

	require.Len(t, view.Subjects, 1)
	row := view.Subjects[0]
	assert.Equal(t, "Math", row.Subject)
	assert.Equal(t, "88", row.ObtainedMarks)
	assert.Equal(t, "100", row.MaxMarks)
	assert.Equal(t, "A", row.Grade)
	assert.InDelta(t, 0.9, row.Confidence, 1e-9)
	assert.Equal(t, domain.BandHigh, row.Band)

	require.NotNil(t, view.CandidateInfo)
	assert.Equal(t, "Candidate Information", view.CandidateInfo.Title)
	require.Len(t, view.CandidateInfo.Fields, 2)
	// Canonical order: name before roll_number.
	assert.Equal(t, "Name", view.CandidateInfo.Fields[0].Label)
	assert.Equal(t, "Priya Sharma", view.CandidateInfo.Fields[0].Value)
	assert.Equal(t, "Roll Number", view.CandidateInfo.Fields[1].Label)

	assert.Equal(t, 1, view.Summary.SubjectCount)
	assert.Equal(t, "88", view.Summary.TotalMarks)
	assert.Equal(t, "88", view.Summary.Headline)
	assert.Equal(t, domain.BandHigh, view.Summary.OverallBand)
	assert.Nil(t, view.AdditionalInfo)
}

func TestSingle_NoData(t *testing.T) {
	assert.True(t, presenter.Single(nil).NoData)
	assert.True(t, presenter.Single(&domain.ExtractionResult{}).NoData)
}

func TestSingle_HeadlineFallsBackToGrade(t *testing.T) {
	res := decodeResult(t, `{"overall_result": {"grade": {"value": "A+", "confidence": 0.8}}}`)
	view := presenter.Single(res)
	assert.Equal(t, "A+", view.Summary.Headline)
	assert.Equal(t, presenter.NotAvailable, view.Summary.TotalMarks)
}

func TestSingle_MissingValuesRenderPlaceholder(t *testing.T) {
	res := decodeResult(t, `{
		"subjects": [{"subject": {"value": "Physics", "confidence": 0.7}}],
		"candidate_info": {"name": {"value": null, "confidence": 0.3}}
	}`)
	view := presenter.Single(res)

	require.Len(t, view.Subjects, 1)
	assert.Equal(t, presenter.NotAvailable, view.Subjects[0].ObtainedMarks)
	assert.Equal(t, presenter.NotAvailable, view.Subjects[0].Grade)
	assert.Equal(t, presenter.NotAvailable, view.CandidateInfo.Fields[0].Value)
}

func TestSingle_UnlistedKeysSortAfterCanonical(t *testing.T) {
	res := decodeResult(t, `{"candidate_info": {
		"zone": "North",
		"roll_number": "17",
		"center_code": "C9",
		"name": "Ravi"
	}}`)
	view := presenter.Single(res)

	var keys []string
	for _, f := range view.CandidateInfo.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"name", "roll_number", "center_code", "zone"}, keys)
}

func TestBatch_SummaryCounts(t *testing.T) {
	br := domain.BatchResult{
		{Filename: "a.jpg", Success: true, Data: decodeResult(t, `{"subjects":[{"subject":"Math"}]}`)},
		{Filename: "b.jpg", Success: true, Data: decodeResult(t, `{"subjects":[{"subject":"Physics"}]}`)},
		{Filename: "c.jpg", Success: false, Error: "unreadable image"},
	}
	view := presenter.Batch(br)

	assert.Equal(t, 3, view.Summary.Total)
	assert.Equal(t, 2, view.Summary.Successful)
	assert.Equal(t, 1, view.Summary.Failed)
	assert.Equal(t, 67, view.Summary.SuccessRate)

	require.Len(t, view.Items, 3)
	assert.Equal(t, "a.jpg", view.Items[0].Filename)
	require.NotNil(t, view.Items[0].View)
	assert.Nil(t, view.Items[2].View)
	assert.Equal(t, "unreadable image", view.Items[2].Error)
}

func TestBatch_Empty(t *testing.T) {
	view := presenter.Batch(nil)
	assert.Equal(t, 0, view.Summary.Total)
	assert.Equal(t, 0, view.Summary.SuccessRate)
	assert.Empty(t, view.Items)
}

func TestRaw_PrettyPrintsVerbatimPayload(t *testing.T) {
	payload := `{"candidate_info":{"name":{"value":"Priya","confidence":0.95}},"vendor_debug":{"pass":1}}`
	res := decodeResult(t, payload)
	out, err := presenter.Raw(&domain.Result{Single: res, Raw: res.Raw()})
	require.NoError(t, err)

	// Unknown keys survive because the payload is kept verbatim.
	assert.Contains(t, out, `"vendor_debug"`)
	assert.Contains(t, out, "\n  \"candidate_info\"")
}

func TestRaw_BatchKeepsItemBodiesVerbatim(t *testing.T) {
	var br domain.BatchResult
	require.NoError(t, json.Unmarshal([]byte(`[
		{"filename": "a.jpg", "success": true, "duration_ms": 412,
		 "data": {"subjects": [{"subject": "Math"}], "vendor_debug": {"pass": 1}}},
		{"filename": "b.jpg", "success": false, "error": "unreadable image"}
	]`), &br))

	out, err := presenter.Raw(&domain.Result{Batch: br})
	require.NoError(t, err)

	// Per-item keys outside the known schema survive re-serialization.
	assert.Contains(t, out, `"duration_ms"`)
	assert.Contains(t, out, `"vendor_debug"`)
	assert.Contains(t, out, `"unreadable image"`)
}

func TestRaw_NoResult(t *testing.T) {
	_, err := presenter.Raw(&domain.Result{})
	assert.ErrorIs(t, err, domain.ErrNoResult)
}

func TestFormatLabel(t *testing.T) {
	assert.Equal(t, "Father Name", presenter.FormatLabel("father_name"))
	assert.Equal(t, "Name", presenter.FormatLabel("name"))
	assert.Equal(t, "Board University", presenter.FormatLabel("board_university"))
}
