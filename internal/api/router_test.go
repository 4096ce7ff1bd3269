package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *pipeline.StatusBoard) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	board := pipeline.NewStatusBoard()
	return SetupRouter(board, "test"), board
}

func TestStatusEndpoint(t *testing.T) {
	router, board := newTestRouter(t)
	board.Publish(pipeline.Status{
		Artifact:    "./retinfo",
		Tempo:       96,
		Committed:   []string{"Melody", "Drum"},
		Pending:     []string{"Bass"},
		RetryQueued: true,
		LastOutcome: pipeline.OutcomeRolledBack,
		Cycles:      3,
		Commits:     1,
		Rollbacks:   1,
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var got pipeline.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"Melody", "Drum"}, got.Committed)
	assert.Equal(t, []string{"Bass"}, got.Pending)
	assert.Equal(t, pipeline.OutcomeRolledBack, got.LastOutcome)
	assert.Equal(t, 96, got.Tempo)
	assert.True(t, got.RetryQueued)
}

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name         string
		outcome      pipeline.Outcome
		wantReadable bool
	}{
		{name: "artifact readable", outcome: pipeline.OutcomeUnchanged, wantReadable: true},
		{name: "artifact missing", outcome: pipeline.OutcomeSourceUnavailable, wantReadable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, board := newTestRouter(t)
			board.Publish(pipeline.Status{Artifact: "./retinfo", LastOutcome: tt.outcome})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, http.StatusOK, w.Code)

			var body struct {
				Status   string `json:"status"`
				Artifact struct {
					Path     string `json:"path"`
					Readable bool   `json:"readable"`
				} `json:"artifact"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "healthy", body.Status)
			assert.Equal(t, "./retinfo", body.Artifact.Path)
			assert.Equal(t, tt.wantReadable, body.Artifact.Readable)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, board := newTestRouter(t)
	board.Publish(pipeline.Status{Committed: []string{"Melody"}, Cycles: 4, Commits: 1, Rollbacks: 2})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Version  string `json:"version"`
		Pipeline struct {
			Cycles    int `json:"cycles"`
			Commits   int `json:"commits"`
			Rollbacks int `json:"rollbacks"`
			Committed int `json:"committed_flags"`
		} `json:"pipeline"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "test", body.Version)
	assert.Equal(t, 4, body.Pipeline.Cycles)
	assert.Equal(t, 1, body.Pipeline.Commits)
	assert.Equal(t, 2, body.Pipeline.Rollbacks)
	assert.Equal(t, 1, body.Pipeline.Committed)
}

func TestUnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/status", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestsCarryLastCycleID(t *testing.T) {
	router, board := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Loop-Cycle"))

	board.Publish(pipeline.Status{LastCycleID: "cycle-42", LastOutcome: pipeline.OutcomeCommitted})

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cycle-42", w.Header().Get("X-Loop-Cycle"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
