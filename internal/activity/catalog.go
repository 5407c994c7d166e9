package activity

import (
	"fmt"
	"math/rand/v2"
)

// Canonical members of each recognition category. One activity is
// generated per member.
var (
	Shapes  = []string{"Circle", "Square", "Star"}
	Colors  = []string{"Red", "Blue", "Green", "Yellow"}
	Letters = []string{"A", "B", "C", "D", "E"}
	Animals = []string{"Cat", "Dog", "Cow"}
)

var animalSounds = map[string]string{
	"Cat": "Meow",
	"Dog": "Woof",
	"Cow": "Moo",
}

func buildShapes(r *rand.Rand) []Activity {
	return buildRecognition(r, KindShapeRecognition, Shapes, func(m string) (string, string) {
		return fmt.Sprintf("Find the %s", m), "Tap the shape that matches"
	})
}

func buildColors(r *rand.Rand) []Activity {
	return buildRecognition(r, KindColorRecognition, Colors, func(m string) (string, string) {
		return fmt.Sprintf("Which one is %s?", m), "Tap the right color"
	})
}

func buildLetters(r *rand.Rand) []Activity {
	return buildRecognition(r, KindLetterRecognition, Letters, func(m string) (string, string) {
		return fmt.Sprintf("Find the letter %s", m), "Tap the letter you hear"
	})
}

func buildAnimals(r *rand.Rand) []Activity {
	return buildRecognition(r, KindAnimalRecognition, Animals, func(m string) (string, string) {
		return fmt.Sprintf("Who says %q?", animalSounds[m]), "Tap the animal that makes this sound"
	})
}

// buildRecognition emits one activity per member, each offering every
// member of the category as a choice.
func buildRecognition(r *rand.Rand, kind Kind, members []string, text func(string) (string, string)) []Activity {
	list := make([]Activity, 0, len(members))
	for _, m := range members {
		choices := make([]Answer, len(members))
		for i, c := range members {
			choices[i] = Text(c)
		}
		shuffleAnswers(r, choices)

		prompt, instruction := text(m)
		list = append(list, Activity{
			Kind:        kind,
			Prompt:      prompt,
			Instruction: instruction,
			Payload: Payload{
				Target:  m,
				Choices: choices,
			},
			CorrectAnswer: Text(m),
		})
	}
	return list
}

// buildGeneric returns the fixed mixed set used when no topic matches.
// It does not draw from r.
func buildGeneric(_ *rand.Rand) []Activity {
	return []Activity{
		{
			Kind:        KindNumberRecognition,
			Prompt:      "Find the number 7",
			Instruction: "Tap the number you hear",
			Payload: Payload{
				Target:  "7",
				Choices: []Answer{Number(1), Number(7), Number(4)},
			},
			CorrectAnswer: Number(7),
		},
		{
			Kind:        KindGeneric,
			Prompt:      "What comes after 2?",
			Instruction: "Think about counting up",
			Payload: Payload{
				Choices: []Answer{Number(1), Number(3), Number(5)},
			},
			CorrectAnswer: Number(3),
		},
		{
			Kind:        KindGeneric,
			Prompt:      "How many sides does a triangle have?",
			Instruction: "Count the sides",
			Payload: Payload{
				Choices: []Answer{Number(3), Number(4), Number(5)},
			},
			CorrectAnswer: Number(3),
		},
	}
}
