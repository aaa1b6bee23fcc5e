package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/tuniverse/tvx/internal/tokens"
	"golang.org/x/oauth2"
)

// CallbackResult contains the result of a login callback flow.
type CallbackResult struct {
	Token *tokens.Token
	err   error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles the login redirect for both flows: the
// backend-hosted flow (token delivered as a URL fragment) and the direct
// authorization-code flow (when an oauth2 config is attached).
// Implements the Handler interface for registration with a Router.
type CallbackHandler struct {
	exchange    *oauth2.Config
	state       string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a handler for the backend-hosted fragment flow.
func NewCallbackHandler() *CallbackHandler {
	return &CallbackHandler{
		resultChan: make(chan CallbackResult, 1),
	}
}

// NewExchangeHandler creates a handler for the direct authorization-code
// flow. The state token should be cryptographically random for CSRF
// protection.
func NewExchangeHandler(config *oauth2.Config, state string) *CallbackHandler {
	return &CallbackHandler{
		exchange:   config,
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP handles the login callback request.
//
// A request without token parameters gets the fragment bridge page; a
// request carrying them (or an authorization code, in direct mode) is parsed
// and the result sent through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if h.exchange != nil {
		h.serveExchange(w, r)
		return
	}

	if query.Get("access_token") == "" {
		// First hit: the token is still in the fragment, invisible to us.
		h.serveBridge(w)
		return
	}

	if !h.claim() {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	token, ok := tokens.ParseFragment(r.URL.RawQuery)
	if !ok {
		err := fmt.Errorf("callback delivered no access token")
		h.Send(CallbackResult{err: err})
		http.Error(w, "Missing access token", http.StatusBadRequest)
		return
	}

	h.Send(CallbackResult{Token: token})
	h.serveDone(w)
}

// serveExchange handles the direct authorization-code flow.
func (h *CallbackHandler) serveExchange(w http.ResponseWriter, r *http.Request) {
	if !h.claim() {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	query := r.URL.Query()

	if state := query.Get("state"); state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.Send(CallbackResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		errParam := query.Get("error")
		errDesc := query.Get("error_description")
		err := fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)
		h.Send(CallbackResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	oauthToken, err := h.exchange.Exchange(context.Background(), code)
	if err != nil {
		h.Send(CallbackResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	token := &tokens.Token{
		AccessToken:  oauthToken.AccessToken,
		RefreshToken: oauthToken.RefreshToken,
	}

	h.Send(CallbackResult{Token: token})
	h.serveDone(w)
}

func (h *CallbackHandler) claim() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.callbackHit {
		return false
	}
	h.callbackHit = true
	return true
}

// serveBridge renders the page that moves the fragment payload into query
// parameters the CLI process can read. replaceState strips the fragment from
// the visible address so a reload cannot re-apply it.
func (h *CallbackHandler) serveBridge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Signing in…</title>
</head>
<body>
    <p>Completing sign-in…</p>
    <script>
        (function () {
            var fragment = window.location.hash.replace(/^#/, "");
            history.replaceState(null, "", window.location.pathname);
            if (fragment) {
                window.location.replace(window.location.pathname + "?" + fragment);
            } else {
                document.body.textContent = "No sign-in data received. You can close this window.";
            }
        })();
    </script>
</body>
</html>
`)
}

func (h *CallbackHandler) serveDone(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Sign-in Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Sign-in Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}
