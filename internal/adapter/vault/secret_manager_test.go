package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecretManager_Load(t *testing.T) {
	var gotPath, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Vault-Token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"data":{"stripe_secret_key":"sk_test_1","fcm_credentials":"{\"type\":\"service_account\"}"},"metadata":{"version":3}}}`))
	}))
	defer srv.Close()

	sm, err := NewSecretManager(srv.URL, "root-token", "", "payment-relay")
	if err != nil {
		t.Fatalf("new secret manager: %v", err)
	}

	secrets, err := sm.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if gotPath != "/v1/secret/data/payment-relay" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotToken != "root-token" {
		t.Errorf("unexpected token %q", gotToken)
	}
	if secrets.StripeSecretKey != "sk_test_1" || secrets.FCMCredentials != `{"type":"service_account"}` {
		t.Errorf("unexpected secrets %+v", secrets)
	}
	if secrets.DatabaseURL != "" {
		t.Errorf("expected empty database url, got %q", secrets.DatabaseURL)
	}
}

func TestSecretManager_LoadMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[]}`))
	}))
	defer srv.Close()

	sm, _ := NewSecretManager(srv.URL, "t", "kv", "missing")

	if _, err := sm.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
