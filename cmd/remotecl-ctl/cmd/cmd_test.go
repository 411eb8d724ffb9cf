package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root := RootCmd()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestVersionCommandReportsDiagnosticEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	metricsAddr = strings.TrimPrefix(ts.URL, "http://")
	SetHTTPClient(ts.Client())

	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "remotecl-ctl version") {
		t.Errorf("expected output to contain 'remotecl-ctl version', got: %s", out)
	}
	if !strings.Contains(out, "http 200") {
		t.Errorf("expected output to report http 200, got: %s", out)
	}
}

func TestVersionCommandReportsUnreachableEndpoint(t *testing.T) {
	metricsAddr = "127.0.0.1:1" // nothing listens here
	SetHTTPClient(http.DefaultClient)

	_, err := executeCommand("version")
	if err == nil {
		t.Fatal("expected an error for an unreachable diagnostic endpoint")
	}
}
