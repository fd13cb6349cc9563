package robots

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRobotsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckerAllowsAndDeniesByPath(t *testing.T) {
	t.Parallel()

	srv := newRobotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /blocked\n")
	checker := NewChecker(Config{Respect: true, UserAgent: "test-agent"}, zap.NewNop())

	ok, err := checker.Allowed(context.Background(), srv.URL+"/frankfurt/de.html")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = checker.Allowed(context.Background(), srv.URL+"/blocked/page.html")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCheckerMatchesAgentGroup(t *testing.T) {
	t.Parallel()

	srv := newRobotsServer(t, http.StatusOK, "User-agent: test-agent\nDisallow: /\n\nUser-agent: *\nAllow: /\n")

	denied := NewChecker(Config{Respect: true, UserAgent: "test-agent"}, nil)
	ok, err := denied.Allowed(context.Background(), srv.URL+"/listing")
	require.NoError(t, err)
	require.False(t, ok)

	other := NewChecker(Config{Respect: true, UserAgent: "other-bot"}, nil)
	ok, err = other.Allowed(context.Background(), srv.URL+"/listing")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCheckerStatusSemantics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "missing robots allows", status: http.StatusNotFound, want: true},
		{name: "gone robots allows", status: http.StatusGone, want: true},
		{name: "unauthorized denies", status: http.StatusUnauthorized, want: false},
		{name: "forbidden denies", status: http.StatusForbidden, want: false},
		{name: "server error denies", status: http.StatusServiceUnavailable, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newRobotsServer(t, tt.status, "")
			checker := NewChecker(Config{Respect: true, UserAgent: "test-agent"}, nil)
			ok, err := checker.Allowed(context.Background(), srv.URL+"/page")
			require.NoError(t, err)
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestCheckerUnreachableRobotsPolicy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/page"
	srv.Close()

	closed := NewChecker(Config{Respect: true, UserAgent: "test-agent"}, nil)
	ok, err := closed.Allowed(context.Background(), target)
	require.ErrorIs(t, err, ErrUnavailable)
	require.False(t, ok)

	open := NewChecker(Config{Respect: true, UserAgent: "test-agent", OnError: OnErrorAllow}, nil)
	ok, err = open.Allowed(context.Background(), target)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCheckerDisabled(t *testing.T) {
	t.Parallel()

	checker := NewChecker(Config{Respect: false}, nil)
	ok, err := checker.Allowed(context.Background(), "https://unreachable.invalid/page")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCheckerRejectsRelativeURL(t *testing.T) {
	t.Parallel()

	checker := NewChecker(Config{Respect: true, UserAgent: "test-agent"}, nil)
	_, err := checker.Allowed(context.Background(), "/just/a/path")
	require.Error(t, err)
}

func TestCheckerSendsUserAgent(t *testing.T) {
	t.Parallel()

	gotUA := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA <- r.Header.Get("User-Agent")
		fmt.Fprint(w, "User-agent: *\nAllow: /\n")
	}))
	defer srv.Close()

	checker := NewChecker(Config{Respect: true, UserAgent: "EurobikeScraper/1.0"}, nil)
	_, err := checker.Allowed(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	require.Equal(t, "EurobikeScraper/1.0", <-gotUA)
}
