package session

import (
	"math"

	"github.com/abhisek/homeplay/internal/activity"
	"github.com/abhisek/homeplay/internal/gateway"
)

// Outcome is what a finished session reports to its owner.
type Outcome struct {
	gateway.Result

	// Phase is PhaseSubmitted, PhaseSubmitFailed or PhaseLockedFromPrior.
	Phase Phase

	// Record is the backend confirmation, or the earlier submission when
	// the session was locked from the start. Nil after a failed submit.
	Record *gateway.Record
}

// Percentage returns round(score/total*100), or 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(total)))
}

// BuildResult creates the submission payload for a finished session.
func BuildResult(score, total int, answers activity.AnswerRecord) gateway.Result {
	return gateway.Result{
		Score:          score,
		TotalQuestions: total,
		Percentage:     Percentage(score, total),
		Answers:        answers.Copy(),
	}
}

// outcomeFromRecord reports an earlier submission. A record without a
// percentage gets one derived from its score when the score reads as a
// question count.
func outcomeFromRecord(rec *gateway.Record, total int) Outcome {
	if rec.TotalQuestions > 0 {
		total = rec.TotalQuestions
	}
	pct := rec.Percentage
	if pct == 0 && rec.Score > 0 && rec.Score <= total {
		pct = Percentage(rec.Score, total)
	}
	return Outcome{
		Result: gateway.Result{
			Score:          rec.Score,
			TotalQuestions: total,
			Percentage:     pct,
			Answers:        rec.Answers.Copy(),
		},
		Phase:  PhaseLockedFromPrior,
		Record: rec,
	}
}

func (o Outcome) clone() Outcome {
	o.Answers = o.Answers.Copy()
	if o.Record != nil {
		r := *o.Record
		r.Answers = r.Answers.Copy()
		o.Record = &r
	}
	return o
}
