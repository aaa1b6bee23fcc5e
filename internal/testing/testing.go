// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/tuniverse/tvx/internal/services"
)

// MockClient is a test double for [services.Client]. Each field overrides the
// corresponding method when set; unset methods return zero values.
type MockClient struct {
	LoginURLFunc     func() string
	ProfileFunc      func(ctx context.Context, token string) (*services.Profile, error)
	PlaylistsFunc    func(ctx context.Context, token string, limit int) (*services.PlaylistPage, error)
	PassportFunc     func(ctx context.Context, token string, source services.PassportSource, limit int) (*services.Passport, error)
	DemoPassportFunc func(ctx context.Context, userID string) (*services.Passport, error)
	RefreshFunc      func(ctx context.Context, refreshToken string) (*services.RefreshedToken, error)
}

func (m *MockClient) LoginURL() string {
	if m.LoginURLFunc != nil {
		return m.LoginURLFunc()
	}
	return "http://127.0.0.1:8000/auth/login"
}

func (m *MockClient) Profile(ctx context.Context, token string) (*services.Profile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, token)
	}
	return &services.Profile{}, nil
}

func (m *MockClient) Playlists(ctx context.Context, token string, limit int) (*services.PlaylistPage, error) {
	if m.PlaylistsFunc != nil {
		return m.PlaylistsFunc(ctx, token, limit)
	}
	return &services.PlaylistPage{}, nil
}

func (m *MockClient) Passport(ctx context.Context, token string, source services.PassportSource, limit int) (*services.Passport, error) {
	if m.PassportFunc != nil {
		return m.PassportFunc(ctx, token, source, limit)
	}
	return &services.Passport{}, nil
}

func (m *MockClient) DemoPassport(ctx context.Context, userID string) (*services.Passport, error) {
	if m.DemoPassportFunc != nil {
		return m.DemoPassportFunc(ctx, userID)
	}
	return &services.Passport{}, nil
}

func (m *MockClient) Refresh(ctx context.Context, refreshToken string) (*services.RefreshedToken, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return &services.RefreshedToken{}, nil
}

func (m *MockClient) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
