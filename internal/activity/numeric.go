package activity

import (
	"fmt"
	"math/rand/v2"
)

const (
	numericActivities = 5

	addendMin = 1
	addendMax = 5

	minuendMin = 2
	minuendMax = 6

	countMin = 1
	countMax = 10

	numericChoiceCount = 3
)

// between returns a uniform integer in [lo, hi].
func between(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

func buildAddition(r *rand.Rand) []Activity {
	list := make([]Activity, 0, numericActivities)
	for range numericActivities {
		a := between(r, addendMin, addendMax)
		b := between(r, addendMin, addendMax)
		sum := a + b
		list = append(list, Activity{
			Kind:        KindAddition,
			Prompt:      fmt.Sprintf("%d + %d = ?", a, b),
			Instruction: "Add the numbers together",
			Payload: Payload{
				Operands: []int{a, b},
				Choices:  numericChoices(r, sum),
			},
			CorrectAnswer: Number(sum),
		})
	}
	return list
}

func buildSubtraction(r *rand.Rand) []Activity {
	list := make([]Activity, 0, numericActivities)
	for range numericActivities {
		a := between(r, minuendMin, minuendMax)
		b := between(r, 1, a-1)
		diff := a - b
		list = append(list, Activity{
			Kind:        KindSubtraction,
			Prompt:      fmt.Sprintf("%d - %d = ?", a, b),
			Instruction: "Take away the second number from the first",
			Payload: Payload{
				Operands: []int{a, b},
				Choices:  numericChoices(r, diff),
			},
			CorrectAnswer: Number(diff),
		})
	}
	return list
}

func buildCounting(r *rand.Rand) []Activity {
	list := make([]Activity, 0, numericActivities)
	for range numericActivities {
		n := between(r, countMin, countMax)
		list = append(list, Activity{
			Kind:        KindCounting,
			Prompt:      "How many do you see?",
			Instruction: "Count the items",
			Payload: Payload{
				Count:   n,
				Choices: numericChoices(r, n),
			},
			CorrectAnswer: Number(n),
		})
	}
	return list
}

// numericChoices returns numericChoiceCount distinct non-negative options
// in random order, one of which is answer.
func numericChoices(r *rand.Rand, answer int) []Answer {
	var distractors []int
	for d := answer - 2; d <= answer+2; d++ {
		if d >= 0 && d != answer {
			distractors = append(distractors, d)
		}
	}
	r.Shuffle(len(distractors), func(i, j int) {
		distractors[i], distractors[j] = distractors[j], distractors[i]
	})

	choices := []Answer{Number(answer)}
	for _, d := range distractors[:numericChoiceCount-1] {
		choices = append(choices, Number(d))
	}
	shuffleAnswers(r, choices)
	return choices
}

func shuffleAnswers(r *rand.Rand, a []Answer) {
	r.Shuffle(len(a), func(i, j int) { a[i], a[j] = a[j], a[i] })
}
