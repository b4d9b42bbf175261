package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobmatch-backend/internal/domain"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	request := `{
		"cv_analysis": {"skills": {"programming_languages": ["python"], "frameworks_libraries": ["react"]}},
		"job_descriptions": ["python backend role", "java enterprise role", "react frontend role"]
	}`

	out, err := execute(t, request, "score", "--ranked")
	require.NoError(t, err)

	var resp domain.MatchJobResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Results, 3)
	assert.ElementsMatch(t, []int{1, 3}, []int{resp.Results[0].JobIndex, resp.Results[1].JobIndex})
	assert.Equal(t, 2, resp.Results[2].JobIndex)
	assert.Equal(t, domain.MatchNone, resp.Results[2].MatchQuality)
}

func TestScoreCommand_RejectsEmptyCorpus(t *testing.T) {
	_, err := execute(t, `{"cv_analysis": {"skills": {"other_skills": ["go"]}}}`, "score", "--ranked=false")
	assert.Error(t, err)
}

func TestClassifyCommand(t *testing.T) {
	out, err := execute(t, "", "classify", "0.6", "0.271", "0")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0.6\t"+domain.MatchExcellent, lines[0])
	assert.Equal(t, "0.271\t"+domain.MatchGood, lines[1])
	assert.Equal(t, "0\t"+domain.MatchNone, lines[2])

	_, err = execute(t, "", "classify", "high")
	assert.Error(t, err)
}
