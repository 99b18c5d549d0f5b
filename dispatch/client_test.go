package dispatch

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decodeJSON(t *testing.T, r io.Reader, out any) {
	t.Helper()
	if err := json.NewDecoder(r).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestGetTaskParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer auth header")
		}
		w.Write([]byte(`{"description":"fix the bug","status":"running"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	task, err := client.GetTask(t.Context())
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Description != "fix the bug" || task.Status != TaskStatusRunning {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestCompleteTaskSendsReport(t *testing.T) {
	var received TaskComplete
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decodeJSON(t, r.Body, &received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	if err := client.CompleteTask(t.Context(), TaskComplete{Description: "done"}); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if received.Description != "done" {
		t.Fatalf("received = %+v", received)
	}
}

func TestFailTaskErrorsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	if err := client.FailTask(t.Context(), TaskFailure{Reason: TechnicalIssues, Description: "oops"}); err == nil {
		t.Fatal("expected error on server failure")
	}
}
