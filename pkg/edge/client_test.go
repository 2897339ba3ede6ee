package edge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/astroview/astro-edge/pkg/catalog"
)

func objectJSON(t *testing.T, id string) []byte {
	t.Helper()
	obj := &catalog.Object{
		ID:       id,
		Title:    id,
		Type:     catalog.CategoryOther,
		Metadata: catalog.NormalizeMetadata(nil),
		Source:   catalog.SourceNASA,
	}
	data, err := obj.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return data
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New should reject a missing proxy base")
	}
}

func TestFetchObject(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write(objectJSON(t, "mars"))
	}))
	defer server.Close()

	client, err := New(Config{ProxyBase: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	obj, err := client.FetchObject(context.Background(), "mars")
	if err != nil {
		t.Fatalf("FetchObject failed: %v", err)
	}
	if obj.ID != "mars" {
		t.Errorf("ID = %q, want mars", obj.ID)
	}
	if gotPath != "/objects/mars.json" {
		t.Errorf("Path = %q, want the static object path", gotPath)
	}
}

func TestLookup(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write(objectJSON(t, "PIA00407"))
	}))
	defer server.Close()

	client, err := New(Config{ProxyBase: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	obj, err := client.Lookup(context.Background(), "red planet")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if obj.ID != "PIA00407" {
		t.Errorf("ID = %q, want PIA00407", obj.ID)
	}
	if gotQuery != "red planet" {
		t.Errorf("Query = %q, want it passed through", gotQuery)
	}
}

func TestGetObject_NonSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := New(Config{ProxyBase: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := client.FetchObject(context.Background(), "absent"); err == nil {
		t.Error("Non-success status should be an error")
	}
}

func TestGetObject_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client, err := New(Config{ProxyBase: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := client.Lookup(context.Background(), "x"); err == nil {
		t.Error("Malformed payload should be an error")
	}
}

func TestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write(objectJSON(t, "slow"))
	}))
	defer server.Close()

	client, err := New(Config{ProxyBase: server.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := client.FetchObject(context.Background(), "slow"); err == nil {
		t.Error("Exceeding the timeout should be an error")
	}
}
