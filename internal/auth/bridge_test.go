package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{name: "bearer header", header: "Bearer header-token", want: "header-token"},
		{name: "cookie only", cookie: "cookie-token", want: "cookie-token"},
		{name: "header wins over cookie", header: "Bearer header-token", cookie: "cookie-token", want: "header-token"},
		{name: "anonymous", want: ""},
		{name: "wrong scheme ignored", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "empty bearer falls back to cookie", header: "Bearer ", cookie: "cookie-token", want: "cookie-token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/content/home", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				r.AddCookie(&http.Cookie{Name: CookieName, Value: tc.cookie})
			}

			if got := TokenFromRequest(r); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
