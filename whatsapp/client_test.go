package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizeNumber(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"+91 98765 43210", "919876543210"},
		{"(91) 98765-43210", "919876543210"},
		{"919876543210", "919876543210"},
		{"abc", ""},
	}
	for _, tc := range cases {
		if got := SanitizeNumber(tc.in); got != tc.expected {
			t.Fatalf("SanitizeNumber(%q) expected %q, got %q", tc.in, tc.expected, got)
		}
	}
}

func TestNewClientFromEnv_RequiresCredentials(t *testing.T) {
	t.Setenv("WHATSAPP_TOKEN", "")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "")
	if _, err := NewClientFromEnv(); err == nil {
		t.Fatalf("expected error with missing credentials")
	}
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("WHATSAPP_TOKEN", "test-token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "12345")
	t.Setenv("WHATSAPP_API_BASE_URL", srv.URL)
	c, err := NewClientFromEnv()
	if err != nil {
		t.Fatalf("NewClientFromEnv error: %v", err)
	}
	return c
}

func TestUploadMedia(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/12345/media" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
		}
		if got := r.FormValue("messaging_product"); got != "whatsapp" {
			t.Errorf("messaging_product expected whatsapp, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "media-1"})
	}))

	id, err := client.UploadMedia(context.Background(), "report.xlsx", []byte("payload"))
	if err != nil {
		t.Fatalf("UploadMedia error: %v", err)
	}
	if id != "media-1" {
		t.Fatalf("media id expected media-1, got %q", id)
	}
}

func TestSendDocument(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/12345/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		if payload["type"] != "document" || payload["to"] != "919876543210" {
			t.Errorf("unexpected payload %v", payload)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []map[string]string{{"id": "msg-1"}},
		})
	}))

	id, err := client.SendDocument(context.Background(), "919876543210", "media-1", "report.xlsx")
	if err != nil {
		t.Fatalf("SendDocument error: %v", err)
	}
	if id != "msg-1" {
		t.Fatalf("message id expected msg-1, got %q", id)
	}
}

func TestDo_SurfacesAPIErrors(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad token"}}`))
	}))

	_, err := client.SendText(context.Background(), "919876543210", "hello")
	if err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error should carry the status code, got %v", err)
	}
}
