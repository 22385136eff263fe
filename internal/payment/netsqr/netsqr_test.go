package netsqr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:       baseURL,
		APIKey:        "test-api-key",
		ProjectID:     "test-project",
		MerchantTxnID: "sandbox_nets|m|test",
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(nil); err == nil {
		t.Fatal("nil config should fail validation")
	}
	if err := ValidateConfig(&Config{ProjectID: "p"}); err == nil {
		t.Fatal("missing api_key should fail validation")
	}
	if err := ValidateConfig(&Config{APIKey: "k"}); err == nil {
		t.Fatal("missing project_id should fail validation")
	}
	if err := ValidateConfig(testConfig("")); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestRequestQRSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/common/payments/nets-qr/request" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("api-key") != "test-api-key" || r.Header.Get("project-id") != "test-project" {
			t.Error("missing gateway auth headers")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"data":{"response_code":"00","txn_status":1,"qr_code":"aGVsbG8=","txn_retrieval_ref":"ref-123","network_status":0}}}`))
	}))
	defer server.Close()

	result, err := RequestQR(context.Background(), testConfig(server.URL), "23.99")
	if err != nil {
		t.Fatalf("request qr failed: %v", err)
	}
	if result.QRCode != "aGVsbG8=" {
		t.Fatalf("unexpected qr code: %s", result.QRCode)
	}
	if result.TxnRetrievalRef != "ref-123" {
		t.Fatalf("unexpected retrieval ref: %s", result.TxnRetrievalRef)
	}
}

func TestRequestQRRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"data":{"response_code":"05","txn_status":3,"network_status":1,"error_message":"declined"}}}`))
	}))
	defer server.Close()

	_, err := RequestQR(context.Background(), testConfig(server.URL), "23.99")
	if !errors.Is(err, ErrQRRejected) {
		t.Fatalf("expected ErrQRRejected, got %v", err)
	}
}

func TestRequestQRMissingRetrievalRef(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"data":{"response_code":"00","txn_status":1,"qr_code":"aGVsbG8="}}}`))
	}))
	defer server.Close()

	_, err := RequestQR(context.Background(), testConfig(server.URL), "23.99")
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected ErrResponseInvalid, got %v", err)
	}
}

func TestQueryStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Status
	}{
		{"success", `{"result":{"data":{"response_code":"00","txn_status":1}}}`, StatusSuccess},
		{"failed", `{"result":{"data":{"response_code":"00","txn_status":3}}}`, StatusFailed},
		{"declined", `{"result":{"data":{"response_code":"05","txn_status":0}}}`, StatusFailed},
		{"pending", `{"result":{"data":{"response_code":"00","txn_status":0}}}`, StatusPending},
		{"empty", `{"result":{"data":{}}}`, StatusPending},
	}
	for _, c := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("txn_retrieval_ref"); got != "ref-9" {
				t.Errorf("%s: unexpected retrieval ref %q", c.name, got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(c.body))
		}))
		result, err := QueryStatus(context.Background(), testConfig(server.URL), "ref-9")
		server.Close()
		if err != nil {
			t.Fatalf("%s: query failed: %v", c.name, err)
		}
		if result.Status != c.want {
			t.Fatalf("%s: expected status %s, got %s", c.name, c.want, result.Status)
		}
	}
}
