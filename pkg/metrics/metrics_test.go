package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/metrics"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

func TestRecorder_Push(t *testing.T) {
	var method, path string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec := metrics.NewRecorder(srv.URL).WithClient(srv.Client())
	err := rec.Push(metrics.Run{
		Project:   "ShooterGame",
		Command:   types.CommandBuildPublish,
		Duration:  90 * time.Second,
		Succeeded: true,
		Processes: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, method)
	assert.True(t, strings.HasPrefix(path, "/metrics/job/jenkinsbuilder/"), "unexpected path %s", path)
	assert.Contains(t, path, "/project/ShooterGame")
	assert.Contains(t, path, "/command/BuildPublish")
	assert.NotEmpty(t, body)
}

func TestRecorder_Disabled(t *testing.T) {
	rec := metrics.NewRecorder("")
	assert.False(t, rec.Enabled())
	assert.NoError(t, rec.Push(metrics.Run{Project: "Foo", Command: types.CommandBuild}))
}

func TestRecorder_PushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := metrics.NewRecorder(srv.URL).WithClient(srv.Client()).Push(metrics.Run{
		Project: "Foo",
		Command: types.CommandBuild,
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "503"), "unexpected error %v", err)
}
