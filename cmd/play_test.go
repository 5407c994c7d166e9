package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/homeplay/internal/activity"
	"github.com/abhisek/homeplay/internal/gateway"
	"github.com/abhisek/homeplay/internal/session"
)

type stubGateway struct {
	prior     *gateway.Record
	submitErr error
	submitted []gateway.Result
}

func (g *stubGateway) FindExistingSubmission(context.Context, string, string) (*gateway.Record, error) {
	return g.prior, nil
}

func (g *stubGateway) SubmitResult(_ context.Context, _, childID string, r gateway.Result) (*gateway.Record, error) {
	g.submitted = append(g.submitted, r)
	if g.submitErr != nil {
		return nil, g.submitErr
	}
	return &gateway.Record{ID: "sub-1", ChildID: childID, Score: r.Score}, nil
}

func newPlaySession(t *testing.T, gw gateway.Gateway, title string) *session.Session {
	t.Helper()
	s, err := session.New(activity.Homework{ID: "hw-1", Title: title}, "child-1", session.Options{
		Gateway: gw,
		Source:  activity.NewSeeded(11),
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return s
}

// answersFor returns one input line per activity: the correct answer for
// the first n activities, a wrong choice index for the rest.
func answersFor(list []activity.Activity, n int) string {
	var b strings.Builder
	for i, a := range list {
		if i < n {
			b.WriteString(a.CorrectAnswer.String())
		} else {
			for _, c := range a.Payload.Choices {
				if c != a.CorrectAnswer {
					b.WriteString(c.String())
					break
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func TestRunPlay_SubmitsOnce(t *testing.T) {
	gw := &stubGateway{}
	s := newPlaySession(t, gw, "Learn Shapes")
	input := "nonsense\n" + answersFor(s.Activities(), 2)

	var out bytes.Buffer
	if err := runPlay(context.Background(), s, strings.NewReader(input), &out); err != nil {
		t.Fatalf("runPlay: %v\n%s", err, out.String())
	}

	if len(gw.submitted) != 1 {
		t.Fatalf("submits = %d, want 1", len(gw.submitted))
	}
	if got := gw.submitted[0]; got.Score != 2 || got.TotalQuestions != 3 || got.Percentage != 67 {
		t.Errorf("submitted %+v, want 2/3 at 67%%", got)
	}
	text := out.String()
	for _, want := range []string{"Please pick one of the choices.", "Completed and saved: 2/3 correct (67%)"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunPlay_PriorSubmission(t *testing.T) {
	gw := &stubGateway{prior: &gateway.Record{ID: "old", Score: 4, Percentage: 80, TotalQuestions: 5}}
	s := newPlaySession(t, gw, "Basic Addition Practice")

	var out bytes.Buffer
	if err := runPlay(context.Background(), s, strings.NewReader(""), &out); err != nil {
		t.Fatalf("runPlay: %v", err)
	}
	if len(gw.submitted) != 0 {
		t.Errorf("submits = %d, want 0", len(gw.submitted))
	}
	if !strings.Contains(out.String(), "Already completed: score 4, 80%") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRunPlay_PriorSubmissionWithoutPercentage(t *testing.T) {
	gw := &stubGateway{prior: &gateway.Record{ID: "old", Score: 4, TotalQuestions: 5}}
	s := newPlaySession(t, gw, "Basic Addition Practice")

	var out bytes.Buffer
	if err := runPlay(context.Background(), s, strings.NewReader(""), &out); err != nil {
		t.Fatalf("runPlay: %v", err)
	}
	if !strings.Contains(out.String(), "Already completed: score 4, 80%") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRunPlay_WaitsForDelayedAdvance(t *testing.T) {
	gw := &stubGateway{}
	s, err := session.New(activity.Homework{ID: "hw-1", Title: "Learn Shapes"}, "child-1", session.Options{
		Gateway:      gw,
		Source:       activity.NewSeeded(11),
		AdvanceDelay: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := runPlay(context.Background(), s, strings.NewReader(answersFor(s.Activities(), 3)), &out); err != nil {
		t.Fatalf("runPlay: %v\n%s", err, out.String())
	}
	if len(gw.submitted) != 1 || gw.submitted[0].Score != 3 {
		t.Fatalf("submitted %+v, want one 3/3 result", gw.submitted)
	}
	if n := strings.Count(out.String(), "── Activity"); n != 3 {
		t.Errorf("activities shown = %d, want 3", n)
	}
}

func TestWaitForActivity_Cancelled(t *testing.T) {
	gw := &stubGateway{}
	s, err := session.New(activity.Homework{ID: "hw-1", Title: "Learn Shapes"}, "child-1", session.Options{
		Gateway:      gw,
		Source:       activity.NewSeeded(11),
		AdvanceDelay: time.Hour,
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	defer s.Close()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	a, _ := s.Current()
	s.SubmitAnswer(a.ID, a.CorrectAnswer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := waitForActivity(ctx, s); err != context.Canceled {
		t.Errorf("waitForActivity = %v, want context.Canceled", err)
	}
}

func TestRunPlay_SubmitFailure(t *testing.T) {
	gw := &stubGateway{submitErr: &gateway.SubmissionError{Message: "service unavailable", StatusCode: 503}}
	s := newPlaySession(t, gw, "Learn Shapes")

	var out bytes.Buffer
	err := runPlay(context.Background(), s, strings.NewReader(answersFor(s.Activities(), 3)), &out)
	if err == nil {
		t.Fatal("expected error")
	}
	text := out.String()
	if !strings.Contains(text, "Completed but not confirmed - contact support") {
		t.Errorf("missing contact-support state:\n%s", text)
	}
	if !strings.Contains(text, "service unavailable") {
		t.Errorf("missing backend message:\n%s", text)
	}
}

func TestRunPlay_InputClosed(t *testing.T) {
	gw := &stubGateway{}
	s := newPlaySession(t, gw, "Learn Shapes")

	var out bytes.Buffer
	if err := runPlay(context.Background(), s, strings.NewReader(answersFor(s.Activities()[:1], 1)), &out); err != nil {
		t.Fatalf("runPlay: %v", err)
	}
	if len(gw.submitted) != 0 {
		t.Errorf("submits = %d, want 0", len(gw.submitted))
	}
	if !strings.Contains(out.String(), "nothing submitted") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestPrintActivities(t *testing.T) {
	hw := activity.Homework{Title: "Colors of the rainbow"}
	var out bytes.Buffer
	printActivities(&out, hw, activity.NewSeeded(1).Generate(hw))

	text := out.String()
	if !strings.HasPrefix(text, "Topic: colors (4 activities)") {
		t.Errorf("unexpected header:\n%s", text)
	}
	if strings.Count(text, "answer:") != 4 {
		t.Errorf("expected 4 answers:\n%s", text)
	}
}
