package domain

import "encoding/json"

// Field is a single extracted datum, optionally paired with a confidence
// score. Confidence is nil for raw (unwrapped) values.
type Field struct {
	Value      any
	Confidence *float64
}

// HasConfidence reports whether the field carries a confidence score.
func (f Field) HasConfidence() bool {
	return f.Confidence != nil
}

// Subject is one academic subject row. The extraction service returns each
// field either as a plain value or as a {value, confidence} object, so the
// fields stay schema-free and are interpreted through confidence.Unwrap.
type Subject struct {
	Subject       any `json:"subject,omitempty"`
	ObtainedMarks any `json:"obtained_marks,omitempty"`
	MaxMarks      any `json:"max_marks,omitempty"`
	Grade         any `json:"grade,omitempty"`
}

// ExtractionResult is one document's extraction, with every section optional.
// The raw body is retained verbatim for the raw view and export.
type ExtractionResult struct {
	CandidateInfo  map[string]any `json:"candidate_info,omitempty"`
	Subjects       []Subject      `json:"subjects,omitempty"`
	OverallResult  map[string]any `json:"overall_result,omitempty"`
	AdditionalInfo map[string]any `json:"additional_info,omitempty"`

	raw json.RawMessage
}

// plainResult avoids recursing into the custom JSON methods.
type plainResult ExtractionResult

func (r *ExtractionResult) UnmarshalJSON(b []byte) error {
	var p plainResult
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = ExtractionResult(p)
	r.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (r *ExtractionResult) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	return json.Marshal(plainResult(*r))
}

// Raw returns the result exactly as received, or nil if the result was built
// in memory rather than decoded.
func (r *ExtractionResult) Raw() json.RawMessage {
	return r.raw
}

// Generic decodes the result into a schema-free tree of maps, slices, and
// primitives for the confidence walker.
func (r *ExtractionResult) Generic() any {
	b := r.raw
	if len(b) == 0 {
		var err error
		b, err = json.Marshal(plainResult(*r))
		if err != nil {
			return nil
		}
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	return v
}

// IsEmpty reports whether every section is absent. An empty result is not an
// error; it renders as an explicit no-data notice.
func (r *ExtractionResult) IsEmpty() bool {
	return len(r.CandidateInfo) == 0 &&
		len(r.Subjects) == 0 &&
		len(r.OverallResult) == 0 &&
		len(r.AdditionalInfo) == 0
}

// BatchItem is one file's outcome within a batch extraction. Exactly one of
// Data/Error is meaningful, gated by Success. The item body is retained
// verbatim so re-serialization reproduces it exactly.
type BatchItem struct {
	Filename string            `json:"filename"`
	Success  bool              `json:"success"`
	Data     *ExtractionResult `json:"data,omitempty"`
	Error    string            `json:"error,omitempty"`

	raw json.RawMessage
}

type plainItem BatchItem

func (b *BatchItem) UnmarshalJSON(data []byte) error {
	var p plainItem
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = BatchItem(p)
	b.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (b *BatchItem) MarshalJSON() ([]byte, error) {
	if len(b.raw) > 0 {
		return b.raw, nil
	}
	return json.Marshal(plainItem(*b))
}

// BatchResult is the ordered per-file outcome sequence of a batch extraction.
type BatchResult []BatchItem

// Result is the session's last-received extraction result: a single result or
// a batch, never both. Raw holds the response payload exactly as received.
type Result struct {
	Single *ExtractionResult
	Batch  BatchResult
	Raw    json.RawMessage
}

// IsBatch reports whether the result came from a batch submission.
func (r *Result) IsBatch() bool {
	return r != nil && r.Single == nil
}

// Payload returns the result payload for raw rendering and export: the bytes
// exactly as received when available, otherwise a re-serialization (batch
// items reproduce their bodies verbatim). An empty batch is a valid payload.
func (r *Result) Payload() (json.RawMessage, error) {
	if r == nil || (r.Single == nil && r.Batch == nil) {
		return nil, ErrNoResult
	}
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	if r.Single != nil {
		return json.Marshal(r.Single)
	}
	return json.Marshal(r.Batch)
}

// File is one user-selected upload: declared metadata plus content bytes.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}
