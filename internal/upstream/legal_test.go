package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"legalai-assistant/internal/upstream"
)

func TestQuerySendsBearerAndParsesKeyPoints(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/legal-query/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"response":   "It excuses performance.",
			"key_points": []string{"Point A", "Point B"},
		})
	}))
	defer server.Close()

	client := upstream.NewLegalClient(server.URL, time.Second)
	result, err := client.Query(context.Background(), "tok123", "What is force majeure?")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotBody["query"] != "What is force majeure?" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
	if result.Response != "It excuses performance." {
		t.Fatalf("response = %q", result.Response)
	}
	if !reflect.DeepEqual(result.KeyPoints, []string{"Point A", "Point B"}) {
		t.Fatalf("key points = %v", result.KeyPoints)
	}
}

func TestQueryTokenRejected(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		client := upstream.NewLegalClient(server.URL, time.Second)
		_, err := client.Query(context.Background(), "stale", "question")
		server.Close()
		if !errors.Is(err, upstream.ErrTokenRejected) {
			t.Fatalf("status %d: expected ErrTokenRejected, got %v", status, err)
		}
	}
}

func TestQueryUpstreamErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "model unavailable"})
	}))
	defer server.Close()

	client := upstream.NewLegalClient(server.URL, time.Second)
	if _, err := client.Query(context.Background(), "tok", "question"); err == nil {
		t.Fatal("expected an error for an error-only body")
	}
}

func TestCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/categories/" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"legal_categories": []string{"Contract Law", "Family Law"},
		})
	}))
	defer server.Close()

	client := upstream.NewLegalClient(server.URL, time.Second)
	categories, err := client.Categories(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if !reflect.DeepEqual(categories, []string{"Contract Law", "Family Law"}) {
		t.Fatalf("categories = %v", categories)
	}
}
