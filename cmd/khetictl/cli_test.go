package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"smartkheti_backend/pkg/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_LoginThenLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/login/":
			_, _ = w.Write([]byte(`{"status":"success","data":{"access":"acc","refresh":"ref"}}`))
		case "/api/users/logout/":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tokens := filepath.Join(t.TempDir(), "tokens.json")
	out, err := execute(t, "--api-url", srv.URL+"/api", "--token-file", tokens, "login", "9841234567", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in.")

	stored, err := client.NewFileTokenStore(tokens).Load()
	require.NoError(t, err)
	assert.Equal(t, client.Tokens{Access: "acc", Refresh: "ref"}, stored)

	_, err = execute(t, "--api-url", srv.URL+"/api", "--token-file", tokens, "logout")
	require.NoError(t, err)
	stored, err = client.NewFileTokenStore(tokens).Load()
	require.NoError(t, err)
	assert.Empty(t, stored.Access)
}

func TestCLI_ClassifiesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tokens := filepath.Join(t.TempDir(), "tokens.json")
	_, err := execute(t, "--api-url", srv.URL, "--token-file", tokens, "history")
	assert.EqualError(t, err, client.MsgServer)

	_, err = execute(t, "--api-url", srv.URL, "--token-file", tokens, "profile")
	assert.EqualError(t, err, client.MsgAuthentication)
}

func TestCLI_ReportNeedsBothDates(t *testing.T) {
	_, err := execute(t, "--token-file", filepath.Join(t.TempDir(), "t.json"), "report", "--start", "2026-03-01")
	assert.EqualError(t, err, "--start and --end must be given together")
	reportStart, reportEnd = "", ""
}
