package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func postJob(t *testing.T, ts *httptest.Server, config JobConfig) Job {
	t.Helper()

	body, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	resp, err := http.Post(ts.URL+"/api/v1/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}

	var job Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode job: %v", err)
	}
	return job
}

func waitForCompletion(t *testing.T, ts *httptest.Server, jobID string) map[string]interface{} {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/api/v1/jobs/" + jobID)
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}

		var status map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			resp.Body.Close()
			t.Fatalf("Failed to decode status: %v", err)
		}
		resp.Body.Close()

		switch status["state"] {
		case string(StateCompleted):
			return status
		case string(StateFailed):
			t.Fatalf("Job failed: %v", status["error"])
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("Job did not complete in time")
	return nil
}

func TestServerJobLifecycle(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	// Seed chosen so the annealing run escapes the value-180 local optimum
	// within the iteration limit.
	config := testJobConfig()
	config.Seed = 3
	config.MaxIterations = 1000
	config.InitialTemperature = floatPtr(10)
	config.CoolingRate = floatPtr(0.999)

	job := postJob(t, ts, config)
	if job.State != StatePending {
		t.Errorf("Expected pending job, got %s", job.State)
	}

	status := waitForCompletion(t, ts, job.ID)
	if status["bestValue"].(float64) != 220 {
		t.Errorf("Expected best value 220, got %v", status["bestValue"])
	}
}

func TestServerAppliesDefaults(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	// Only the problem and the algorithm are given; the rest comes from the
	// algorithm defaults.
	job := postJob(t, ts, testJobConfig())

	if job.Config.MaxIterations != 1000 {
		t.Errorf("Expected default 1000 iterations, got %d", job.Config.MaxIterations)
	}
	if job.Config.CoolingRate == nil || *job.Config.CoolingRate != 0.99 {
		t.Errorf("Expected default cooling rate 0.99, got %v", job.Config.CoolingRate)
	}

	waitForCompletion(t, ts, job.ID)
}

func TestApplyDefaultsKeepsExplicitZeros(t *testing.T) {
	config := testJobConfig()
	config.Algorithm = "ga"
	config.MutationRate = floatPtr(0)
	if err := applyConfigDefaults(&config); err != nil {
		t.Fatalf("applyConfigDefaults failed: %v", err)
	}
	if *config.MutationRate != 0 {
		t.Errorf("Explicit mutation rate 0 was replaced with %g", *config.MutationRate)
	}

	config = testJobConfig()
	config.InitialTemperature = floatPtr(0)
	if err := applyConfigDefaults(&config); err != nil {
		t.Fatalf("applyConfigDefaults failed: %v", err)
	}
	if *config.InitialTemperature != 0 {
		t.Errorf("Explicit initial temperature 0 was replaced with %g", *config.InitialTemperature)
	}
}

func TestServerCancelJob(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	// Enough iterations that the run is still going when cancel arrives.
	config := testJobConfig()
	config.MaxIterations = 100_000_000
	config.InitialTemperature = floatPtr(10)
	config.CoolingRate = floatPtr(0.999999)

	job := postJob(t, ts, config)

	resp, err := http.Post(ts.URL+"/api/v1/jobs/"+job.ID+"/cancel", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d", resp.StatusCode)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		status, err := http.Get(ts.URL + "/api/v1/jobs/" + job.ID)
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(status.Body).Decode(&body); err != nil {
			status.Body.Close()
			t.Fatalf("Failed to decode status: %v", err)
		}
		status.Body.Close()

		if body["state"] == string(StateCancelled) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Job was not cancelled in time, state %v", body["state"])
		}
		time.Sleep(10 * time.Millisecond)
	}

	// A second cancel hits a job that is already terminal.
	resp, err = http.Post(ts.URL+"/api/v1/jobs/"+job.ID+"/cancel", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.StatusCode)
	}
}

func TestServerCancelFinishedJob(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	job := postJob(t, ts, testJobConfig())
	waitForCompletion(t, ts, job.ID)

	resp, err := http.Post(ts.URL+"/api/v1/jobs/"+job.ID+"/cancel", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.StatusCode)
	}
}

func TestServerCancelUnknownJob(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/jobs/nonexistent/cancel", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestServerListJobs(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	postJob(t, ts, testJobConfig())
	postJob(t, ts, testJobConfig())

	resp, err := http.Get(ts.URL + "/api/v1/jobs")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	var jobs []Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		t.Fatalf("Failed to decode jobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
}

func TestServerRejectsBadRequests(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing values", `{"algorithm":"sa","maxWeight":10}`},
		{"mismatched tables", `{"algorithm":"sa","maxWeight":10,"weights":[1,2],"values":[1]}`},
		{"unknown algorithm", `{"algorithm":"tabu","maxWeight":10,"weights":[1],"values":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/v1/jobs", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST failed: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestServerJobNotFound(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/jobs/nonexistent")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestServerMethodNotAllowed(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/jobs", nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", resp.StatusCode)
	}
}

func TestServerEventStream(t *testing.T) {
	ts := httptest.NewServer(NewServer("").Handler())
	defer ts.Close()

	config := testJobConfig()
	config.MaxIterations = 500
	config.InitialTemperature = floatPtr(5)
	config.CoolingRate = floatPtr(0.99)

	job := postJob(t, ts, config)
	waitForCompletion(t, ts, job.ID)

	resp, err := http.Get(fmt.Sprintf("%s/api/v1/jobs/%s/events", ts.URL, job.ID))
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %s", ct)
	}

	// The initial event reflects the finished job state.
	buf := make([]byte, 4096)
	n, err := resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	chunk := string(buf[:n])
	if !strings.HasPrefix(chunk, "data: ") {
		t.Fatalf("Expected SSE data frame, got %q", chunk)
	}
	if !strings.Contains(chunk, string(StateCompleted)) {
		t.Errorf("Expected completed state in event, got %q", chunk)
	}
}
