package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.example.com/abc","access_code":"abc","reference":"ERUDIO-1-2-AB12CD34EF"}}`))
	}))
	defer server.Close()

	gateway := NewPaystackClient(server.URL, "sk_test_secret")
	resp := gateway.InitializeTransaction("student@example.com", 4999, "ERUDIO-1-2-AB12CD34EF", "https://app.example.com/payment/verify")
	require.NotNil(t, resp)
	assert.True(t, resp.Status)
	assert.Equal(t, "https://checkout.example.com/abc", resp.Data.AuthorizationURL)
}

func TestVerifyTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ERUDIO-1-2-AB12CD34EF", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","amount":4999}}`))
	}))
	defer server.Close()

	gateway := NewPaystackClient(server.URL, "sk_test_secret")
	resp := gateway.VerifyTransaction("ERUDIO-1-2-AB12CD34EF")
	require.NotNil(t, resp)
	assert.Equal(t, "success", resp.Data.Status)
}

func TestGatewayErrorsReturnNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	gateway := NewPaystackClient(server.URL, "sk_test_secret")
	assert.Nil(t, gateway.VerifyTransaction("ERUDIO-1-2-AB12CD34EF"))
	assert.Nil(t, gateway.InitializeTransaction("student@example.com", 4999, "ref", "cb"))

	// Unreachable host, not just an error status.
	server.Close()
	assert.Nil(t, gateway.VerifyTransaction("ERUDIO-1-2-AB12CD34EF"))
}
