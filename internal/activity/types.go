package activity

// Kind identifies what an activity asks the learner to do.
type Kind string

const (
	KindCounting          Kind = "counting"
	KindAddition          Kind = "addition"
	KindSubtraction       Kind = "subtraction"
	KindShapeRecognition  Kind = "shape_recognition"
	KindColorRecognition  Kind = "color_recognition"
	KindLetterRecognition Kind = "letter_recognition"
	KindAnimalRecognition Kind = "animal_recognition"
	KindNumberRecognition Kind = "number_recognition"
	KindGeneric           Kind = "generic"
)

// Homework describes the assignment an activity list is generated for.
type Homework struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Subject string `json:"subject,omitempty"`
}

// Activity is a single practice question.
type Activity struct {
	// ID is 1..N in generation order and unique within a session.
	ID int `json:"id"`

	Kind Kind `json:"kind"`

	// Prompt and Instruction are display strings, e.g. "3 + 2 = ?" and
	// "Add the numbers together".
	Prompt      string `json:"prompt"`
	Instruction string `json:"instruction"`

	Payload Payload `json:"payload"`

	// CorrectAnswer is the single canonical answer. Compared with ==.
	CorrectAnswer Answer `json:"correct_answer"`
}

// Payload carries the kind-specific data needed to render and validate
// an activity. Only the fields relevant to the kind are set.
type Payload struct {
	// Operands holds the two numbers for addition and subtraction.
	Operands []int `json:"operands,omitempty"`

	// Count is the number of items shown for counting.
	Count int `json:"count,omitempty"`

	// Target is the member to pick for recognition kinds ("Circle", "B", ...).
	Target string `json:"target,omitempty"`

	// Choices are the options offered to the learner. Always contains
	// the correct answer.
	Choices []Answer `json:"choices,omitempty"`
}

// clone returns a deep copy so callers cannot mutate a generated list.
func (a Activity) clone() Activity {
	c := a
	if a.Payload.Operands != nil {
		c.Payload.Operands = append([]int(nil), a.Payload.Operands...)
	}
	if a.Payload.Choices != nil {
		c.Payload.Choices = append([]Answer(nil), a.Payload.Choices...)
	}
	return c
}

// Clone returns a deep copy of the list.
func Clone(list []Activity) []Activity {
	if list == nil {
		return nil
	}
	out := make([]Activity, len(list))
	for i, a := range list {
		out[i] = a.clone()
	}
	return out
}
