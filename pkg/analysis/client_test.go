package analysis

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Analyze(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/cv/analyze", r.URL.Path)
			file, header, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				return
			}
			defer file.Close()
			body, _ := io.ReadAll(file)
			assert.Equal(t, "cv.pdf", header.Filename)
			assert.Equal(t, "%PDF", string(body))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"data":{"skills":{"programming_languages":["Go"]},"experience_indicators":["2 years"]}}`))
		}))
		defer srv.Close()

		profile, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), "cv.pdf", strings.NewReader("%PDF"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Go"}, profile.Skills.ProgrammingLanguages)
		assert.Equal(t, []string{"2 years"}, profile.ExperienceIndicators)
	})

	t.Run("Rejected document", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"Insufficient CV data: too short"}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), "cv.pdf", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrRejected)
		assert.Equal(t, "Insufficient CV data: too short", err.Error())
	})

	t.Run("Server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"Analysis error"}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), "cv.pdf", strings.NewReader("x"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRejected)
	})
}
