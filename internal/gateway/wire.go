package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/homeplay/internal/activity"
)

// wireSubmission is a submission as it appears in API responses.
type wireSubmission struct {
	ID             flexID          `json:"id"`
	HomeworkID     flexID          `json:"homework_id"`
	ChildID        flexID          `json:"child_id"`
	Score          flexNumber      `json:"score"`
	Percentage     flexNumber      `json:"percentage"`
	TotalQuestions flexNumber      `json:"total_questions"`
	AnswersData    json.RawMessage `json:"answers_data"`
	SubmittedAt    string          `json:"submitted_at"`
}

// answers decodes answers_data, which the backend sends either as a
// JSON-encoded string or as an object.
func (s wireSubmission) answers() (activity.AnswerRecord, error) {
	raw := bytes.TrimSpace(s.AnswersData)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return activity.AnswerRecord{}, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("decode answers_data string: %w", err)
		}
		return activity.ParseAnswerRecord([]byte(inner))
	}
	return activity.ParseAnswerRecord(raw)
}

// flexID accepts identifiers encoded as either JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// flexNumber accepts a JSON number, a numeric string or null. Valid is
// false when no usable number was sent.
type flexNumber struct {
	Value float64
	Valid bool
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	*f = flexNumber{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			// Ungraded entries carry text here.
			return nil
		}
		*f = flexNumber{Value: v, Valid: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("value must be a number, numeric string or null: %w", err)
	}
	*f = flexNumber{Value: v, Valid: true}
	return nil
}

// Int rounds the value to the nearest integer, or returns 0 when absent.
func (f flexNumber) Int() int {
	if !f.Valid {
		return 0
	}
	return int(math.Round(f.Value))
}
