package ws

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func originRequest(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/ws?session_id=sess_1", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCheckOriginUnrestricted(t *testing.T) {
	h := NewHandler(NewHub(), nil)
	if !h.checkOrigin(originRequest("https://anywhere.example.com")) {
		t.Error("expected any origin accepted with no configured list")
	}
}

func TestCheckOriginConfiguredList(t *testing.T) {
	h := NewHandler(NewHub(), []string{"https://app.example.com", "https://staging.example.com"})

	if !h.checkOrigin(originRequest("https://app.example.com")) {
		t.Error("expected configured origin accepted")
	}
	if !h.checkOrigin(originRequest("HTTPS://APP.EXAMPLE.COM")) {
		t.Error("expected origin match to ignore case")
	}
	if h.checkOrigin(originRequest("https://evil.example.com")) {
		t.Error("expected unlisted origin rejected")
	}
	if !h.checkOrigin(originRequest("")) {
		t.Error("expected request without Origin header accepted")
	}
}

func TestCheckOriginWildcard(t *testing.T) {
	h := NewHandler(NewHub(), []string{"*"})
	if !h.checkOrigin(originRequest("https://anywhere.example.com")) {
		t.Error("expected wildcard to accept any origin")
	}
}
