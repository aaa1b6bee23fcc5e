package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestCallbackHandler(t *testing.T) {
	t.Run("first hit serves the fragment bridge", func(t *testing.T) {
		handler := NewCallbackHandler()

		req := httptest.NewRequest(http.MethodGet, "/callback", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "window.location.hash") {
			t.Errorf("expected bridge script, got %q", rec.Body.String())
		}

		select {
		case <-handler.Result():
			t.Error("bridge page must not complete the flow")
		default:
		}
	})

	t.Run("token parameters complete the flow", func(t *testing.T) {
		handler := NewCallbackHandler()

		req := httptest.NewRequest(http.MethodGet, "/callback?access_token=abc&refresh_token=def&app_token=app&display_name=Ada&spotify_id=ada42", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Sign-in Successful") {
			t.Errorf("expected success page, got %q", rec.Body.String())
		}

		select {
		case result := <-handler.Result():
			if result.Error() != nil {
				t.Fatalf("unexpected error: %v", result.Error())
			}
			if result.Token.AccessToken != "abc" || result.Token.RefreshToken != "def" {
				t.Errorf("unexpected token %+v", result.Token)
			}
			if result.Token.DisplayName != "Ada" {
				t.Errorf("unexpected display name %q", result.Token.DisplayName)
			}
		case <-time.After(time.Second):
			t.Fatal("expected a result")
		}
	})

	t.Run("second callback is rejected", func(t *testing.T) {
		handler := NewCallbackHandler()

		first := httptest.NewRequest(http.MethodGet, "/callback?access_token=abc", nil)
		handler.ServeHTTP(httptest.NewRecorder(), first)

		second := httptest.NewRequest(http.MethodGet, "/callback?access_token=xyz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, second)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Send delivers exactly once", func(t *testing.T) {
		handler := NewCallbackHandler()

		handler.Send(CallbackResult{})
		handler.Send(CallbackResult{err: fmt.Errorf("ignored")})

		result, ok := <-handler.Result()
		if !ok {
			t.Fatal("expected a result")
		}
		if result.Error() != nil {
			t.Errorf("expected first result, got %v", result.Error())
		}
		if _, ok := <-handler.Result(); ok {
			t.Error("expected channel to be closed")
		}
	})

	t.Run("Routes", func(t *testing.T) {
		handler := NewCallbackHandler()
		routes := handler.Routes()
		if len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("unexpected routes %v", routes)
		}
	})
}

func TestExchangeHandler(t *testing.T) {
	newConfig := func(tokenURL string) *oauth2.Config {
		return &oauth2.Config{
			ClientID:     "id",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
		}
	}

	t.Run("exchanges the authorization code", func(t *testing.T) {
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"exchanged","refresh_token":"keeper","token_type":"Bearer"}`)
		}))
		defer provider.Close()

		handler := NewExchangeHandler(newConfig(provider.URL), "state123")

		req := httptest.NewRequest(http.MethodGet, "/callback?code=authcode&state=state123", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token.AccessToken != "exchanged" || result.Token.RefreshToken != "keeper" {
			t.Errorf("unexpected token %+v", result.Token)
		}
	})

	t.Run("rejects a state mismatch", func(t *testing.T) {
		handler := NewExchangeHandler(newConfig("http://127.0.0.1:1/token"), "expected")

		req := httptest.NewRequest(http.MethodGet, "/callback?code=authcode&state=forged", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "invalid state") {
			t.Errorf("expected state error, got %v", result.Error())
		}
	})

	t.Run("reports provider denial", func(t *testing.T) {
		handler := NewExchangeHandler(newConfig("http://127.0.0.1:1/token"), "state123")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=state123&error=access_denied&error_description=user+cancelled", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected denial error, got %v", result.Error())
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("filters by method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("unexpected response %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("applies middleware in registration order", func(t *testing.T) {
		router := NewBasicRouter()

		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		router.Use(mw("outer"), mw("inner"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		want := []string{"outer", "inner", "handler"}
		if len(order) != len(want) {
			t.Fatalf("unexpected call order %v", order)
		}
		for i := range want {
			if order[i] != want[i] {
				t.Fatalf("unexpected call order %v", order)
			}
		}
	})

	t.Run("registers all handler routes", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(NewCallbackHandler())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 from registered route, got %d", rec.Code)
		}
	})
}
