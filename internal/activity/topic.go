package activity

import (
	"regexp"
	"strings"
)

// Topic is the practice theme a homework is classified into.
type Topic string

const (
	TopicAddition    Topic = "addition"
	TopicSubtraction Topic = "subtraction"
	TopicCounting    Topic = "counting"
	TopicShapes      Topic = "shapes"
	TopicColors      Topic = "colors"
	TopicLetters     Topic = "letters"
	TopicAnimals     Topic = "animals"
	TopicGeneric     Topic = "generic"
)

// MathematicsSubject routes otherwise unmatched homework to addition.
const MathematicsSubject = "Mathematics"

// topicRule pairs a topic with the predicate that selects it.
type topicRule struct {
	topic Topic
	match func(hw Homework) bool
}

// topicRules is evaluated top to bottom; the first match wins. A title
// mentioning both addition and counting is therefore an addition homework.
var topicRules = []topicRule{
	{TopicAddition, titleContains("addition", "add", "plus", "sum")},
	{TopicSubtraction, titleContains("subtraction", "subtract", "minus", "take away")},
	{TopicCounting, titleContains("counting", "count", "number")},
	{TopicShapes, titleContains("shape", "geometry")},
	{TopicColors, titleContains("color", "colour")},
	{TopicLetters, titleContains("letter", "alphabet", "abc")},
	{TopicAnimals, titleContains("animal", "pet")},
	{TopicAddition, func(hw Homework) bool { return hw.Subject == MathematicsSubject }},
}

// Classify returns the topic for hw. Homework that matches no rule is
// TopicGeneric.
func Classify(hw Homework) Topic {
	for _, r := range topicRules {
		if r.match(hw) {
			return r.topic
		}
	}
	return TopicGeneric
}

// titleContains matches any term as a whole word of the title. A term may
// carry a plural or verb suffix, so "pets" and "adding" match while
// "carpet" and "summer" do not.
func titleContains(terms ...string) func(Homework) bool {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(t), " ", `\s+`)
	}
	re := regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)(?:s|es|ed|ing)?\b`)
	return func(hw Homework) bool {
		return re.MatchString(strings.ToLower(hw.Title))
	}
}
