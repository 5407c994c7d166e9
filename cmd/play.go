package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/homeplay/internal/activity"
	"github.com/abhisek/homeplay/internal/gateway"
	"github.com/abhisek/homeplay/internal/notify"
	"github.com/abhisek/homeplay/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Work through a homework's activities and submit the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateClient(); err != nil {
			return err
		}

		hw := activity.Homework{}
		hw.ID, _ = cmd.Flags().GetString("homework-id")
		hw.Title, _ = cmd.Flags().GetString("title")
		hw.Subject, _ = cmd.Flags().GetString("subject")
		childID, _ := cmd.Flags().GetString("child")

		client := gateway.NewClient(cfg.API.BaseURL,
			gateway.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
			gateway.WithToken(cfg.API.Token),
			gateway.WithLogger(logger.Named("gateway")))

		s, err := session.New(hw, childID, session.Options{
			Gateway:      client,
			Notifier:     notify.NewZapSink(logger),
			Logger:       logger.Named("session"),
			AdvanceDelay: cfg.Session.AdvanceDelay,
		})
		if err != nil {
			return err
		}
		defer s.Close()

		return runPlay(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	playCmd.Flags().String("homework-id", "", "Homework ID (required)")
	playCmd.Flags().String("title", "", "Homework title (required)")
	playCmd.Flags().String("subject", "", "Homework subject, e.g. Mathematics")
	playCmd.Flags().String("child", "", "Child ID (required)")
	_ = playCmd.MarkFlagRequired("homework-id")
	_ = playCmd.MarkFlagRequired("title")
	_ = playCmd.MarkFlagRequired("child")
}

// runPlay drives s from line input until every activity is answered, then
// submits. Closing the input abandons the session without submitting.
func runPlay(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintln(out, session.PhaseCheckingPrior.Label())
	if err := s.Start(ctx); err != nil {
		return err
	}

	if s.Snapshot().Phase.Terminal() {
		o, err := s.Complete(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: score %d, %d%%\n", o.Phase.Label(), o.Score, o.Percentage)
		return nil
	}

	scanner := bufio.NewScanner(in)
	total := len(s.Activities())
	for {
		if err := waitForActivity(ctx, s); err != nil {
			return err
		}
		a, ok := s.Current()
		if !ok {
			break
		}

		fmt.Fprintf(out, "\n── Activity %d/%d ──\n", a.ID, total)
		if a.Instruction != "" {
			fmt.Fprintln(out, a.Instruction)
		}
		fmt.Fprintln(out, a.Prompt)
		for j, c := range a.Payload.Choices {
			fmt.Fprintf(out, "  %d) %s\n", j+1, c)
		}

		var ans activity.Answer
		for {
			fmt.Fprint(out, "Your answer: ")
			if !scanner.Scan() {
				fmt.Fprintln(out, "\n(input closed, nothing submitted)")
				return nil
			}
			var valid bool
			ans, valid = activity.ParseResponse(scanner.Text(), a)
			if valid {
				break
			}
			if a.CorrectAnswer.IsNumber() {
				fmt.Fprintln(out, "Please enter a number.")
			} else {
				fmt.Fprintln(out, "Please pick one of the choices.")
			}
		}

		res := s.SubmitAnswer(a.ID, ans)
		switch {
		case !res.Accepted:
			continue
		case res.Correct:
			fmt.Fprintln(out, "✓ Correct!")
		default:
			fmt.Fprintf(out, "✗ Not quite. The answer was %s.\n", a.CorrectAnswer)
		}
	}

	if s.Snapshot().Phase == session.PhaseInProgress {
		return nil
	}

	fmt.Fprintln(out, "\n"+session.PhaseSubmitting.Label())
	o, err := s.Complete(ctx)
	if o != nil {
		fmt.Fprintf(out, "%s: %d/%d correct (%d%%)\n", o.Phase.Label(), o.Score, o.TotalQuestions, o.Percentage)
	}
	if err != nil {
		var se *gateway.SubmissionError
		if errors.As(err, &se) {
			fmt.Fprintln(out, strings.TrimSpace(se.Message))
		}
		return err
	}
	return nil
}

// waitForActivity blocks while the session shows feedback for the last
// answer.
func waitForActivity(ctx context.Context, s *session.Session) error {
	select {
	case <-s.Advanced():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
