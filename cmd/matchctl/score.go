package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"go-jobmatch-backend/internal/domain"
	"go-jobmatch-backend/internal/scoring"
	"go-jobmatch-backend/pkg/logger"
	"go-jobmatch-backend/pkg/matchclient"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a match-job request read from a file or stdin",
	Long: `Reads a match-job request ({"cv_analysis": ..., "job_descriptions": [...]})
and prints the results in input order. With --remote the request is sent to a
running engine instead of being scored locally.`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("request", "r", "-", "request file, - for stdin")
	scoreCmd.Flags().Bool("explain", false, "include the top contributing terms per job")
	scoreCmd.Flags().Bool("ranked", false, "print results best first instead of input order")
	scoreCmd.Flags().String("token-mode", string(scoring.TokenModeFull), "tokenizer mode (full, focused)")
	scoreCmd.Flags().String("tf", string(scoring.TFRaw), "term frequency scheme (raw, log)")
	scoreCmd.Flags().String("idf", string(scoring.IDFStandard), "inverse document frequency scheme (standard, smooth)")
	scoreCmd.Flags().Int("max-jobs", 5000, "reject requests with more job descriptions")
	scoreCmd.Flags().String("remote", "", "base URL of a match engine, e.g. http://localhost:8080")
	scoreCmd.Flags().Duration("timeout", time.Minute, "remote request timeout")
}

func runScore(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("request")
	explain, _ := cmd.Flags().GetBool("explain")
	ranked, _ := cmd.Flags().GetBool("ranked")
	remote, _ := cmd.Flags().GetString("remote")

	req, err := readRequest(cmd, path)
	if err != nil {
		return err
	}
	req.Explain = req.Explain || explain

	engine, err := buildEngine(cmd, remote)
	if err != nil {
		return err
	}

	started := time.Now()
	results, err := engine.Score(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	logger.Log.Info("scored", "jobs", len(req.JobDescriptions), "took", time.Since(started))

	if ranked {
		results = scoring.SortByScore(results)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(domain.MatchJobResponse{Success: true, Results: results})
}

func readRequest(cmd *cobra.Command, path string) (domain.MatchJobRequest, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return domain.MatchJobRequest{}, err
		}
		defer f.Close()
		r = f
	}

	var req domain.MatchJobRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return domain.MatchJobRequest{}, fmt.Errorf("decoding request: %w", err)
	}
	if err := scoring.Validate(req); err != nil {
		return domain.MatchJobRequest{}, err
	}
	return req, nil
}

func buildEngine(cmd *cobra.Command, remote string) (domain.MatchEngine, error) {
	if remote != "" {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		return matchclient.NewClient(remote, timeout), nil
	}

	opts := scoring.DefaultOptions()
	modeFlag, _ := cmd.Flags().GetString("token-mode")
	tfFlag, _ := cmd.Flags().GetString("tf")
	idfFlag, _ := cmd.Flags().GetString("idf")
	opts.MaxJobs, _ = cmd.Flags().GetInt("max-jobs")

	var err error
	if opts.TokenMode, err = scoring.ParseTokenMode(modeFlag); err != nil {
		return nil, err
	}
	if opts.TF, err = scoring.ParseTFScheme(tfFlag); err != nil {
		return nil, err
	}
	if opts.IDF, err = scoring.ParseIDFScheme(idfFlag); err != nil {
		return nil, err
	}
	return scoring.NewEngine(opts, nil), nil
}
