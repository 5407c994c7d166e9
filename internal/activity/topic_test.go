package activity

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		hw   Homework
		want Topic
	}{
		{Homework{Title: "Basic Addition Practice", Subject: "Mathematics"}, TopicAddition},
		{Homework{Title: "PLUS signs"}, TopicAddition},
		{Homework{Title: "Subtraction Stars"}, TopicSubtraction},
		{Homework{Title: "take away with apples"}, TopicSubtraction},
		{Homework{Title: "Counting Fun"}, TopicCounting},
		{Homework{Title: "Number Hunt"}, TopicCounting},
		{Homework{Title: "Learn Shapes"}, TopicShapes},
		{Homework{Title: "Geometry Basics"}, TopicShapes},
		{Homework{Title: "Colour Mixing"}, TopicColors},
		{Homework{Title: "Alphabet Song"}, TopicLetters},
		{Homework{Title: "My Pet"}, TopicAnimals},
		{Homework{Title: "Weekly Worksheet", Subject: "Mathematics"}, TopicAddition},
		{Homework{Title: "Weekly Worksheet", Subject: "mathematics"}, TopicGeneric},
		{Homework{Title: "Weekly Worksheet", Subject: "Art"}, TopicGeneric},
		{Homework{}, TopicGeneric},
	}

	for _, tc := range tests {
		if got := Classify(tc.hw); got != tc.want {
			t.Errorf("Classify(%q, %q) = %s, want %s", tc.hw.Title, tc.hw.Subject, got, tc.want)
		}
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	titles := []string{
		"Addition and Counting",
		"Counting with Addition",
		"count then add",
		"Number sums",
	}
	for _, title := range titles {
		if got := Classify(Homework{Title: title}); got != TopicAddition {
			t.Errorf("Classify(%q) = %s, want addition", title, got)
		}
	}

	if got := Classify(Homework{Title: "Subtract the shapes"}); got != TopicSubtraction {
		t.Errorf("subtraction should outrank shapes, got %s", got)
	}
	if got := Classify(Homework{Title: "Animal Colors", Subject: "Mathematics"}); got != TopicColors {
		t.Errorf("title match should outrank subject, got %s", got)
	}
}

func TestClassify_WholeWords(t *testing.T) {
	tests := []struct {
		title string
		want  Topic
	}{
		{"Summer Colors", TopicColors},
		{"Ladder Climb", TopicGeneric},
		{"Carpet Patterns", TopicGeneric},
		{"Plusher Toys", TopicGeneric},
		{"Adding Apples", TopicAddition},
		{"Counts and Pets", TopicCounting},
		{"Take   Away Trains", TopicSubtraction},
		{"ABC-Practice", TopicLetters},
	}
	for _, tc := range tests {
		if got := Classify(Homework{Title: tc.title}); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.title, got, tc.want)
		}
	}
}
