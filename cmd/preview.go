package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/homeplay/internal/activity"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the activities generated for a homework title",
	Long: `Generate the activity list for a homework title and print it with answers.

No network access. Pass --seed to get the same list on every run.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("title", "", "Homework title (required)")
	previewCmd.Flags().String("subject", "", "Homework subject, e.g. Mathematics")
	previewCmd.Flags().Uint64("seed", 0, "Random seed for a reproducible list")
	_ = previewCmd.MarkFlagRequired("title")
}

func runPreview(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	subject, _ := cmd.Flags().GetString("subject")

	gen := activity.NewDefault()
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		gen = activity.NewSeeded(seed)
	}

	hw := activity.Homework{Title: title, Subject: subject}
	printActivities(cmd.OutOrStdout(), hw, gen.Generate(hw))
	return nil
}

func printActivities(w io.Writer, hw activity.Homework, list []activity.Activity) {
	fmt.Fprintf(w, "Topic: %s (%d activities)\n\n", activity.Classify(hw), len(list))
	for _, a := range list {
		fmt.Fprintf(w, "%d. [%s] %s\n", a.ID, a.Kind, a.Prompt)
		if a.Instruction != "" {
			fmt.Fprintf(w, "   %s\n", a.Instruction)
		}
		if len(a.Payload.Choices) > 0 {
			fmt.Fprintf(w, "   choices: %s\n", joinAnswers(a.Payload.Choices))
		}
		fmt.Fprintf(w, "   answer:  %s\n", a.CorrectAnswer)
	}
}

func joinAnswers(list []activity.Answer) string {
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
