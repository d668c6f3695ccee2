package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adevara/docqa/internal/api"
	"github.com/adevara/docqa/internal/domain/commonModels"
	"github.com/adevara/docqa/internal/domain/faults"
	"github.com/adevara/docqa/internal/events"
	"github.com/adevara/docqa/internal/handlers"
)

type mockService struct {
	OnAnswer func(ctx context.Context, query string) (commonModels.QueryResult, error)
}

func (m *mockService) Answer(ctx context.Context, query string) (commonModels.QueryResult, error) {
	if m.OnAnswer != nil {
		return m.OnAnswer(ctx, query)
	}
	return commonModels.QueryResult{Answer: "default answer"}, nil
}

type mockIngestor struct {
	OnReindex func(ctx context.Context, docName string) error
	OnRemove  func(ctx context.Context, docName string) error
}

func (m *mockIngestor) Reindex(ctx context.Context, docName string) error {
	if m.OnReindex != nil {
		return m.OnReindex(ctx, docName)
	}
	return nil
}

func (m *mockIngestor) Remove(ctx context.Context, docName string) error {
	if m.OnRemove != nil {
		return m.OnRemove(ctx, docName)
	}
	return nil
}

func newTestHandler(service *mockService, pipeline *mockIngestor) *handlers.Handler {
	if service == nil {
		service = &mockService{}
	}
	if pipeline == nil {
		pipeline = &mockIngestor{}
	}
	return handlers.NewHandler(service, events.NewDispatcher(pipeline))
}

func TestHealthHandler(t *testing.T) {
	h := newTestHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status got %d, want 200", rec.Code)
	}
	var body api.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("Status field got %q, want healthy", body.Status)
	}
}

func TestQueryHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		service    *mockService
		wantStatus int
		wantAnswer string
	}{
		{
			name: "success",
			body: `{"query":"what is in the report?"}`,
			service: &mockService{
				OnAnswer: func(ctx context.Context, query string) (commonModels.QueryResult, error) {
					return commonModels.QueryResult{
						Answer:    "the answer",
						Citations: []commonModels.Citation{{Source: "report.pdf", Excerpt: "passage..."}},
					}, nil
				},
			},
			wantStatus: http.StatusOK,
			wantAnswer: "the answer",
		},
		{
			name:       "malformed body",
			body:       `{"query": `,
			service:    &mockService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "empty query",
			body: `{"query":""}`,
			service: &mockService{
				OnAnswer: func(ctx context.Context, query string) (commonModels.QueryResult, error) {
					return commonModels.QueryResult{}, faults.New(faults.Validation, "no query provided")
				},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "provider failure",
			body: `{"query":"question"}`,
			service: &mockService{
				OnAnswer: func(ctx context.Context, query string) (commonModels.QueryResult, error) {
					return commonModels.QueryResult{}, faults.ProviderFault(faults.SubTransient, "provider down", nil)
				},
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(tt.service, nil)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(tt.body))
			h.QueryHandler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("Status got %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantAnswer != "" {
				var body api.QueryResponse
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
					t.Fatalf("Invalid response body: %v", err)
				}
				if body.Answer != tt.wantAnswer {
					t.Errorf("Answer got %q, want %q", body.Answer, tt.wantAnswer)
				}
				if len(body.Citations) != 1 || body.Citations[0].Source != "report.pdf" {
					t.Errorf("Citations got %+v", body.Citations)
				}
			}
		})
	}
}

func TestReindexHandler_Validation(t *testing.T) {
	h := newTestHandler(nil, nil)

	body := `[{"eventType":"Microsoft.EventGrid.SubscriptionValidationEvent","data":{"validationCode":"abc123"}}]`
	rec := httptest.NewRecorder()
	h.ReindexHandler(rec, httptest.NewRequest(http.MethodPost, "/reindex", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status got %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.ValidationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if resp.ValidationResponse != "abc123" {
		t.Errorf("Echo got %q, want abc123", resp.ValidationResponse)
	}
}

func TestReindexHandler_SingleEventObject(t *testing.T) {
	var reindexed string
	pipeline := &mockIngestor{
		OnReindex: func(ctx context.Context, docName string) error {
			reindexed = docName
			return nil
		},
	}
	h := newTestHandler(nil, pipeline)

	body := `{"eventType":"Microsoft.Storage.BlobCreated","data":{"url":"https://x/docs/report.pdf"}}`
	rec := httptest.NewRecorder()
	h.ReindexHandler(rec, httptest.NewRequest(http.MethodPost, "/reindex", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status got %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.ReindexResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if resp.Message != "Reindexing complete" {
		t.Errorf("Message got %q", resp.Message)
	}
	if reindexed != "report.pdf" {
		t.Errorf("Reindexed %q, want report.pdf", reindexed)
	}
}

func TestReindexHandler_BadPayload(t *testing.T) {
	h := newTestHandler(nil, nil)

	for _, body := range []string{"", "not json", `"just a string"`} {
		rec := httptest.NewRecorder()
		h.ReindexHandler(rec, httptest.NewRequest(http.MethodPost, "/reindex", strings.NewReader(body)))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("Body %q: status got %d, want 500", body, rec.Code)
		}
		var resp api.ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Error == "" {
			t.Errorf("Body %q: expected error object, got %s", body, rec.Body.String())
		}
	}
}

func TestOptionsHandler(t *testing.T) {
	h := newTestHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.OptionsHandler(rec, httptest.NewRequest(http.MethodOptions, "/query", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Status got %d, want 200", rec.Code)
	}
}

func TestReindexHandler_FailedEvent(t *testing.T) {
	pipeline := &mockIngestor{
		OnReindex: func(ctx context.Context, docName string) error {
			return faults.ProviderFault(faults.SubTransient, "blob store unavailable", nil)
		},
	}
	h := newTestHandler(nil, pipeline)

	body := `[{"eventType":"Microsoft.Storage.BlobCreated","data":{"url":"https://x/docs/report.pdf"}}]`
	rec := httptest.NewRecorder()
	h.ReindexHandler(rec, httptest.NewRequest(http.MethodPost, "/reindex", strings.NewReader(body)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Status got %d, want 500; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if resp.Error == "" {
		t.Error("Error message is empty")
	}
}
