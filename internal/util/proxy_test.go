package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewProxyFunc_SchemeSelection(t *testing.T) {
	fn := NewProxyFunc("http://proxy-a:3128", "http://proxy-b:3128", "")

	u, err := fn(httptest.NewRequest(http.MethodGet, "http://example.com/", nil))
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil || u.Host != "proxy-a:3128" {
		t.Errorf("http request got proxy %v", u)
	}

	u, err = fn(httptest.NewRequest(http.MethodGet, "https://example.com/", nil))
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil || u.Host != "proxy-b:3128" {
		t.Errorf("https request got proxy %v", u)
	}
}

func TestNewProxyFunc_HTTPProxyCoversHTTPS(t *testing.T) {
	fn := NewProxyFunc("http://proxy-a:3128", "", "")

	u, err := fn(httptest.NewRequest(http.MethodGet, "https://example.com/", nil))
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil || u.Host != "proxy-a:3128" {
		t.Errorf("https request got proxy %v", u)
	}
}

func TestNewProxyFunc_NoProxyBypass(t *testing.T) {
	fn := NewProxyFunc("http://proxy-a:3128", "", "internal.test, .corp.example.com")

	for _, target := range []string{
		"http://internal.test/",
		"http://svc.internal.test/",
		"http://db.corp.example.com/",
	} {
		u, err := fn(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatalf("proxy func for %s: %v", target, err)
		}
		if u != nil {
			t.Errorf("%s should bypass the proxy, got %v", target, u)
		}
	}

	// A host merely containing the entry as a substring still goes through
	u, err := fn(httptest.NewRequest(http.MethodGet, "http://notinternal.test.example.com/", nil))
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil {
		t.Error("non-matching host should use the proxy")
	}
}
