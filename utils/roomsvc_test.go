package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(srv *httptest.Server) *RoomClient {
	return &RoomClient{BaseURL: srv.URL, APIKey: "test-key", HTTP: srv.Client()}
}

func TestCreateRoomCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/rooms" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"name":"task-1"}`))
	}))
	defer srv.Close()

	created, err := testClient(srv).CreateRoom(context.Background(), "task-1", 2, 30)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created {
		t.Fatal("expected created=true")
	}
}

func TestCreateRoomAlreadyExists(t *testing.T) {
	cases := []struct {
		status int
		body   string
	}{
		{http.StatusConflict, `{"error":"conflict"}`},
		{http.StatusBadRequest, `{"error":"room already exists"}`},
	}
	for _, c := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
			_, _ = w.Write([]byte(c.body))
		}))
		created, err := testClient(srv).CreateRoom(context.Background(), "task-1", 2, 20)
		srv.Close()
		if err != nil {
			t.Fatalf("status %d: duplicate create must not error: %v", c.status, err)
		}
		if created {
			t.Fatalf("status %d: expected created=false", c.status)
		}
	}
}

func TestCreateRoomHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	_, err := testClient(srv).CreateRoom(context.Background(), "task-1", 2, 60)
	var rerr *RoomError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RoomError, got %v", err)
	}
	if rerr.HTTPCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rerr.HTTPCode)
	}
}

func TestCreateRoomDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := testClient(srv).CreateRoom(ctx, "task-1", 2, 30)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
