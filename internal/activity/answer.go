package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type answerKind uint8

const (
	answerNone answerKind = iota
	answerNumber
	answerText
)

// Answer is a numeric or textual answer value. Answers are comparable:
// two answers are equal only if they hold the same kind and the same
// value, so Number(5) != Text("5").
type Answer struct {
	kind answerKind
	num  int
	text string
}

// Number returns a numeric answer.
func Number(n int) Answer { return Answer{kind: answerNumber, num: n} }

// Text returns a textual answer.
func Text(s string) Answer { return Answer{kind: answerText, text: s} }

// IsZero reports whether the answer holds no value.
func (a Answer) IsZero() bool { return a.kind == answerNone }

// IsNumber reports whether the answer is numeric.
func (a Answer) IsNumber() bool { return a.kind == answerNumber }

// Int returns the numeric value and whether the answer is numeric.
func (a Answer) Int() (int, bool) { return a.num, a.kind == answerNumber }

// String renders the answer for display.
func (a Answer) String() string {
	switch a.kind {
	case answerNumber:
		return strconv.Itoa(a.num)
	case answerText:
		return a.text
	}
	return ""
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case answerNumber:
		return []byte(strconv.Itoa(a.num)), nil
	case answerText:
		return json.Marshal(a.text)
	}
	return []byte("null"), nil
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Answer{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Text(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("answer must be a number or a string: %w", err)
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		return fmt.Errorf("answer %s is not an integer", n)
	}
	*a = Number(i)
	return nil
}

// AnswerRecord maps an activity ID to the learner's answer.
type AnswerRecord map[int]Answer

// Copy returns an independent copy of the record.
func (r AnswerRecord) Copy() AnswerRecord {
	out := make(AnswerRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ParseAnswerRecord decodes a JSON object such as {"1":5,"2":"Circle"}.
// An empty input yields an empty record.
func ParseAnswerRecord(data []byte) (AnswerRecord, error) {
	rec := AnswerRecord{}
	if len(bytes.TrimSpace(data)) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	if rec == nil {
		rec = AnswerRecord{}
	}
	return rec, nil
}

// ParseResponse converts typed learner input into the answer domain of a.
// Activities with a numeric answer accept an integer. Others accept the choice
// number (1-based) or the choice text, case-insensitively, and return the
// canonical choice. Returns false if the input cannot be interpreted.
func ParseResponse(input string, a Activity) (Answer, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Answer{}, false
	}

	if a.CorrectAnswer.IsNumber() {
		n, err := strconv.Atoi(input)
		if err != nil {
			return Answer{}, false
		}
		return Number(n), true
	}

	choices := a.Payload.Choices
	if idx, err := strconv.Atoi(input); err == nil && idx >= 1 && idx <= len(choices) {
		return choices[idx-1], true
	}
	for _, c := range choices {
		if strings.EqualFold(c.String(), input) {
			return c, true
		}
	}
	if len(choices) == 0 {
		return Text(input), true
	}
	return Answer{}, false
}
