package geo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muzykantov/geo-data-pipeline/internal/config"
	"github.com/muzykantov/geo-data-pipeline/internal/dataset"
	"github.com/muzykantov/geo-data-pipeline/internal/services"
	"github.com/muzykantov/geo-data-pipeline/internal/services/geo"
)

var ref = dataset.Ref{Name: "GSE68849", Series: "GSE68nnn"}

func TestFetchWritesArchive(t *testing.T) {
	var gotPath, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("tar-bytes"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "data", "GSE68849_GSE68nnn_RAW.tar")
	client := geo.NewClient(server.URL+"/geo/", geo.WithUserAgent("geopipe-test"))
	if err := client.Fetch(context.Background(), ref, dest); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if gotPath != "/geo/series/GSE68nnn/GSE68849/suppl/GSE68849_RAW.tar" {
		t.Fatalf("unexpected request path: %q", gotPath)
	}
	if gotAgent != "geopipe-test" {
		t.Fatalf("unexpected user agent: %q", gotAgent)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if string(data) != "tar-bytes" {
		t.Fatalf("unexpected archive content: %q", data)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "archive.tar")
	err := geo.NewClient(server.URL).Fetch(context.Background(), ref, dest)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !errors.Is(err, services.ErrFetchFailed) {
		t.Fatalf("expected fetch marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatalf("expected no archive on failure, stat err = %v", statErr)
	}
}

func TestFetchEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "archive.tar")
	err := geo.NewClient(server.URL).Fetch(context.Background(), ref, dest)
	if !errors.Is(err, services.ErrFetchFailed) {
		t.Fatalf("expected fetch marker for empty body, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatalf("expected no archive for empty body, stat err = %v", statErr)
	}
}

func TestFetchTruncatedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("short"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "archive.tar")
	err := geo.NewClient(server.URL).Fetch(context.Background(), ref, dest)
	if !errors.Is(err, services.ErrFetchFailed) {
		t.Fatalf("expected fetch marker for truncated body, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatalf("expected no archive for truncated body, stat err = %v", statErr)
	}
}

func TestFetchKeepsPreviousArchiveOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "archive.tar")
	if err := os.WriteFile(dest, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := geo.NewClient(server.URL).Fetch(context.Background(), ref, dest); err == nil {
		t.Fatal("expected error for 500")
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "previous" {
		t.Fatalf("expected previous archive untouched, got %q (%v)", data, err)
	}
}

func TestNewConfiguredClientUsesFetchSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Fetch.BaseURL = "http://mirror.example.org/geo"
	client := geo.NewConfiguredClient(&cfg, nil)
	want := "http://mirror.example.org/geo/series/GSE68nnn/GSE68849/suppl/GSE68849_RAW.tar"
	if got := client.ArchiveURL(ref); got != want {
		t.Fatalf("ArchiveURL = %q, want %q", got, want)
	}
}
