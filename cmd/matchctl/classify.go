package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"go-jobmatch-backend/internal/scoring"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <score>...",
	Short: "Print the match quality label for each similarity score",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		classifier := scoring.MustClassifier(scoring.DefaultBands())
		for _, arg := range args {
			score, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("invalid score %q: %w", arg, err)
			}
			cmd.Printf("%s\t%s\n", arg, classifier.Classify(score))
		}
		return nil
	},
}

var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "Print the default classifier bands, best first",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, b := range scoring.DefaultBands() {
			cmd.Printf(">= %.2f\t%s\n", b.Min, b.Label)
		}
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd, bandsCmd)
}
