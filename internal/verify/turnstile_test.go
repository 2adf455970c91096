package verify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifySuccess(t *testing.T) {
	var gotSecret, gotToken, gotIP string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotSecret = r.PostFormValue("secret")
		gotToken = r.PostFormValue("response")
		gotIP = r.PostFormValue("remoteip")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	c := &Client{Secret: "s3cret", Endpoint: srv.URL}
	if err := c.Verify(context.Background(), "tok", "203.0.113.7"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if gotSecret != "s3cret" || gotToken != "tok" || gotIP != "203.0.113.7" {
		t.Fatalf("form = (%q, %q, %q)", gotSecret, gotToken, gotIP)
	}
}

func TestVerifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error-codes": ["invalid-input-response"]}`))
	}))
	defer srv.Close()

	c := &Client{Secret: "s", Endpoint: srv.URL}
	err := c.Verify(context.Background(), "bad", "")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
}

func TestVerifyTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediate close: connection refused

	c := &Client{Secret: "s", Endpoint: srv.URL}
	if err := c.Verify(context.Background(), "tok", ""); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestVerifyMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := &Client{Secret: "s", Endpoint: srv.URL}
	if err := c.Verify(context.Background(), "tok", ""); err == nil {
		t.Fatalf("expected decode error")
	}
}
