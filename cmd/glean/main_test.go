package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocloud.dev/blob"

	"github.com/ligustah/glean/internal/testutils"
	"github.com/ligustah/glean/pkg/fragments"
	"github.com/ligustah/glean/pkg/results"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(args, strings.NewReader(stdin), &stdout, &stderr)
	t.Logf("glean %s -> %d\nstdout:\n%s\nstderr:\n%s", strings.Join(args, " "), code, stdout.String(), stderr.String())
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func fastFlags(template string) []string {
	return []string{
		"--url", template,
		"--max-id", "16",
		"--initial-requests", "200",
		"--quiet-period", "20ms",
		"--extra-requests", "32",
		"--backfill-interval", "5ms",
	}
}

func TestUnknownCommand(t *testing.T) {
	r := runCLI(t, "", "upload")
	if r.code != ExitInvalidArgs {
		t.Fatalf("expected exit %d, got %d", ExitInvalidArgs, r.code)
	}
}

func TestDecodeShowDelete(t *testing.T) {
	server := testutils.StartFragmentServer(t, testutils.ScatterMessage(t, "Hello sparse world", 16, 42))
	bucketURL := "file://" + t.TempDir()
	object := "runs/latest.json"

	t.Run("decode", func(t *testing.T) {
		args := append([]string{"decode"}, fastFlags(server.Template())...)
		args = append(args, "--bucket", bucketURL, "--object", object)
		r := runCLI(t, "", args...)
		if r.code != ExitSuccess {
			t.Fatalf("decode failed with exit code %d", r.code)
		}
		if !strings.Contains(r.stdout, "Complete with 3 fragments.") {
			t.Errorf("missing fragment count in %q", r.stdout)
		}
		if !strings.Contains(r.stdout, "Message: Hellosparseworld\n") {
			t.Errorf("missing message in %q", r.stdout)
		}
		if !strings.Contains(r.stdout, "Spaced: Hello sparse world\n") {
			t.Errorf("missing spaced rendering in %q", r.stdout)
		}
		if !strings.Contains(r.stdout, "Total time: ") {
			t.Errorf("missing elapsed time in %q", r.stdout)
		}
	})

	t.Run("show", func(t *testing.T) {
		r := runCLI(t, "", "show", "--bucket", bucketURL, "--object", object)
		if r.code != ExitSuccess {
			t.Fatalf("show failed with exit code %d", r.code)
		}
		if !strings.Contains(r.stdout, "Status: VALID") {
			t.Errorf("expected VALID status in %q", r.stdout)
		}
	})

	t.Run("delete_cancelled", func(t *testing.T) {
		r := runCLI(t, "n\n", "delete", "--bucket", bucketURL, "--object", object)
		if r.code != ExitSuccess {
			t.Fatalf("delete failed with exit code %d", r.code)
		}
		if !strings.Contains(r.stderr, "Cancelled") {
			t.Errorf("expected cancellation notice in %q", r.stderr)
		}
	})

	t.Run("delete", func(t *testing.T) {
		r := runCLI(t, "", "delete", "--bucket", bucketURL, "--object", object, "--force")
		if r.code != ExitSuccess {
			t.Fatalf("delete failed with exit code %d", r.code)
		}

		// Verify result is gone - show should fail
		r = runCLI(t, "", "show", "--bucket", bucketURL, "--object", object)
		if r.code != ExitStorageError {
			t.Fatalf("expected exit %d after delete, got %d", ExitStorageError, r.code)
		}
	})
}

func TestDecodeWithoutBucket(t *testing.T) {
	server := testutils.StartFragmentServer(t, testutils.ScatterMessage(t, "a b", 16, 1))

	args := append([]string{"decode", "--progress"}, fastFlags(server.Template())...)
	r := runCLI(t, "", args...)
	if r.code != ExitSuccess {
		t.Fatalf("decode failed with exit code %d", r.code)
	}
	if !strings.Contains(r.stdout, "Spaced: a b\n") {
		t.Errorf("missing spaced rendering in %q", r.stdout)
	}
	if !strings.Contains(r.stderr, "[glean] Decoding: ") {
		t.Errorf("missing progress output in %q", r.stderr)
	}
}

func TestDecodeFlagsOverrideConfigWithZero(t *testing.T) {
	server := testutils.StartFragmentServer(t, testutils.ScatterMessage(t, "a b", 16, 1))

	// Honouring this file would print progress and crawl at one probe
	// every 1000s.
	path := filepath.Join(t.TempDir(), "glean.yaml")
	if err := os.WriteFile(path, []byte("progress: true\nrate_limit: 0.001\nrate_burst: 1\n"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	args := append([]string{"decode", "--config", path, "--progress=false", "--rate-limit=0", "--timeout", "10s"},
		fastFlags(server.Template())...)
	r := runCLI(t, "", args...)
	if r.code != ExitSuccess {
		t.Fatalf("decode failed with exit code %d", r.code)
	}
	if strings.Contains(r.stderr, "[glean] Decoding") {
		t.Errorf("expected progress disabled by flag, got %q", r.stderr)
	}
}

func TestDecodeIncomplete(t *testing.T) {
	// Index 1 is never served.
	server := testutils.StartFragmentServer(t, testutils.Table{
		2: {Index: 0, Text: "a"},
		7: {Index: 2, Text: "c"},
	})

	args := append([]string{"decode", "--timeout", "200ms"}, fastFlags(server.Template())...)
	r := runCLI(t, "", args...)
	if r.code != ExitIncomplete {
		t.Fatalf("expected exit %d, got %d", ExitIncomplete, r.code)
	}
	if !strings.Contains(r.stderr, "[glean] Stopped with 2 fragments (max index 2)") {
		t.Errorf("missing incomplete summary in %q", r.stderr)
	}
}

func TestDecodeInvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "url without placeholder", args: []string{"decode", "--url", "http://localhost/fragment"}},
		{name: "negative max id", args: []string{"decode", "--max-id=-1"}},
		{name: "bucket without object", args: []string{"decode", "--bucket", "mem://"}},
		{name: "bad log level", args: []string{"decode", "--log-level", "loud"}},
		{name: "bad flag value", args: []string{"decode", "--quiet-period", "soon"}},
		{name: "missing config file", args: []string{"decode", "--config", "/nonexistent/glean.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runCLI(t, "", tt.args...)
			if r.code != ExitInvalidArgs {
				t.Errorf("expected exit %d, got %d", ExitInvalidArgs, r.code)
			}
		})
	}
}

func TestShowRequiresFlags(t *testing.T) {
	r := runCLI(t, "", "show", "--bucket", "mem://")
	if r.code != ExitInvalidArgs {
		t.Fatalf("expected exit %d, got %d", ExitInvalidArgs, r.code)
	}
}

func TestShowInconsistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	bucketURL := "file://" + dir

	bkt, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	err = results.Save(ctx, bkt, "bad.json", &fragments.Result{
		RunID:     "tampered",
		Message:   "ab",
		Spaced:    "b a",
		Texts:     []string{"a", "b"},
		Fragments: 2,
	})
	bkt.Close()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	r := runCLI(t, "", "show", "--bucket", bucketURL, "--object", "bad.json")
	if r.code != ExitValidationFailed {
		t.Fatalf("expected exit %d, got %d", ExitValidationFailed, r.code)
	}
	if !strings.Contains(r.stdout, "Status: INVALID") {
		t.Errorf("expected INVALID status in %q", r.stdout)
	}
}
