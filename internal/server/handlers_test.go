package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/srepho/allyanonimiser-go/internal/config"
	"github.com/srepho/allyanonimiser-go/internal/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.GetDefaults()
	s, err := New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func doRequest(s *Server, method, path string, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestHandleInfo(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/info", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var info map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if info["name"] != "allyanonimiser" {
		t.Errorf("unexpected name %v", info["name"])
	}
	if info["ner_available"] != false {
		t.Errorf("expected ner_available false, got %v", info["ner_available"])
	}
}

func TestHandleAnalyze(t *testing.T) {
	s := newTestServer(t)

	t.Run("detects entities", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/v1/analyze", `{"text":"contact jane.doe@example.com"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}

		var resp AnalyzeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if resp.Count == 0 || len(resp.Entities) != resp.Count {
			t.Errorf("unexpected response %+v", resp)
		}
		if resp.Cached {
			t.Error("first request must not be cached")
		}
	})

	t.Run("repeat request is cached", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/v1/analyze", `{"text":"contact jane.doe@example.com"}`)
		var resp AnalyzeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if !resp.Cached {
			t.Error("expected cached result on repeat request")
		}
	})

	t.Run("missing text", func(t *testing.T) {
		if rec := doRequest(s, http.MethodPost, "/v1/analyze", `{}`); rec.Code != http.StatusBadRequest {
			t.Errorf("unexpected status %d", rec.Code)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		if rec := doRequest(s, http.MethodPost, "/v1/analyze", `{broken`); rec.Code != http.StatusBadRequest {
			t.Errorf("unexpected status %d", rec.Code)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		if rec := doRequest(s, http.MethodGet, "/v1/analyze", ""); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("unexpected status %d", rec.Code)
		}
	})
}

func TestHandleAnonymize(t *testing.T) {
	s := newTestServer(t)

	t.Run("replace by default", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/v1/anonymize", `{"text":"email jane.doe@example.com now"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}

		var resp AnonymizeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if !strings.Contains(resp.Text, "<EMAIL_ADDRESS>") {
			t.Errorf("email not replaced: %q", resp.Text)
		}
		if strings.Contains(resp.Text, "jane.doe@example.com") {
			t.Errorf("original text leaked: %q", resp.Text)
		}
		if resp.AuditRunID != 0 {
			t.Errorf("expected no audit run without audit store, got %d", resp.AuditRunID)
		}
	})

	t.Run("operator override", func(t *testing.T) {
		body := `{"text":"email jane.doe@example.com now","operators":{"EMAIL_ADDRESS":"mask"}}`
		rec := doRequest(s, http.MethodPost, "/v1/anonymize", body)

		var resp AnonymizeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if !strings.Contains(resp.Text, strings.Repeat("*", len("jane.doe@example.com"))) {
			t.Errorf("email not masked: %q", resp.Text)
		}
	})

	t.Run("missing text", func(t *testing.T) {
		if rec := doRequest(s, http.MethodPost, "/v1/anonymize", `{}`); rec.Code != http.StatusBadRequest {
			t.Errorf("unexpected status %d", rec.Code)
		}
	})
}

func TestHandleExplain(t *testing.T) {
	s := newTestServer(t)

	t.Run("explains a detection", func(t *testing.T) {
		body := `{"text":"contact jane@example.com","entity":{"entity_type":"EMAIL_ADDRESS","start":8,"end":24,"text":"jane@example.com","score":0.95}}`
		rec := doRequest(s, http.MethodPost, "/v1/explain", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}

		var exp map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &exp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if exp["entity_type"] != "EMAIL_ADDRESS" {
			t.Errorf("unexpected explanation %v", exp)
		}
	})

	t.Run("span out of range", func(t *testing.T) {
		body := `{"text":"short","entity":{"entity_type":"PERSON","start":0,"end":100}}`
		if rec := doRequest(s, http.MethodPost, "/v1/explain", body); rec.Code != http.StatusBadRequest {
			t.Errorf("unexpected status %d", rec.Code)
		}
	})
}

func TestHandleEntities(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/v1/entities", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp struct {
		Supported []string `json:"supported"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(resp.Supported) == 0 {
		t.Error("expected supported entity types")
	}
}

func TestHandlePatterns(t *testing.T) {
	s := newTestServer(t)

	t.Run("list builtins", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/v1/patterns", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d", rec.Code)
		}
		var resp struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if resp.Count == 0 {
			t.Error("expected builtin patterns")
		}
	})

	t.Run("register custom pattern", func(t *testing.T) {
		body := `{"entity_type":"MEMBER_ID","patterns":["\\bMBR-\\d{6}\\b"]}`
		rec := doRequest(s, http.MethodPost, "/v1/patterns", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}

		// The new type is detectable straight away.
		analyzeRec := doRequest(s, http.MethodPost, "/v1/analyze", `{"text":"member MBR-123456 renewed"}`)
		var resp AnalyzeResponse
		if err := json.Unmarshal(analyzeRec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		found := false
		for _, e := range resp.Entities {
			if e.Type == "MEMBER_ID" {
				found = true
			}
		}
		if !found {
			t.Errorf("custom pattern not detected: %+v", resp.Entities)
		}
	})

	t.Run("rejects definition without patterns", func(t *testing.T) {
		if rec := doRequest(s, http.MethodPost, "/v1/patterns", `{"entity_type":"EMPTY"}`); rec.Code != http.StatusBadRequest {
			t.Errorf("unexpected status %d", rec.Code)
		}
	})
}

func TestHandleStats(t *testing.T) {
	s := newTestServer(t)
	doRequest(s, http.MethodPost, "/v1/analyze", `{"text":"contact jane@example.com"}`)

	rec := doRequest(s, http.MethodGet, "/v1/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if stats["total_requests"].(float64) != 1 {
		t.Errorf("unexpected request count %v", stats["total_requests"])
	}
	if _, ok := stats["cache"]; !ok {
		t.Error("expected cache stats")
	}
	if _, ok := stats["shared_cache"]; ok {
		t.Error("shared cache stats must be absent when redis is disabled")
	}
}

func TestHandleClearCache(t *testing.T) {
	s := newTestServer(t)
	doRequest(s, http.MethodPost, "/v1/analyze", `{"text":"contact jane@example.com"}`)

	rec := doRequest(s, http.MethodDelete, "/v1/cache", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp["discarded"] == 0 {
		t.Error("expected discarded cache entries")
	}
}

func TestAuditRoutesAbsentWithoutStore(t *testing.T) {
	s := newTestServer(t)
	if rec := doRequest(s, http.MethodGet, "/v1/audit/runs", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unexpected status %d", rec.Code)
	}
}

func TestApplyConfig(t *testing.T) {
	s := newTestServer(t)

	cfg := config.GetDefaults()
	cfg.Engine.MinScoreThreshold = 0.99
	s.ApplyConfig(cfg)

	rec := doRequest(s, http.MethodPost, "/v1/analyze", `{"text":"contact jane.doe@example.com"}`)
	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, e := range resp.Entities {
		if e.Type == "EMAIL_ADDRESS" {
			t.Errorf("email must fall below the raised threshold: %+v", e)
		}
	}
}
