//go:build integration

package decoder

import (
	"context"
	"testing"
	"time"

	"github.com/ligustah/glean/internal/testutils"
	"github.com/ligustah/glean/pkg/results"
)

func TestRunMinio(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	bucket, _ := testutils.StartMinioBucket(t, "decoder-test-bucket")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	server := testutils.StartFragmentServer(t, testutils.ScatterMessage(t, message, 16, 21))

	res, err := Run(ctx, server.Template(), bucket, "runs/minio.json", testOptions(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	v, err := results.Validate(ctx, bucket, "runs/minio.json")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !v.Valid {
		t.Fatalf("stored result invalid: %v", v.Errors)
	}
	if v.RunID != res.RunID {
		t.Errorf("stored run %s, want %s", v.RunID, res.RunID)
	}

	if err := results.Delete(ctx, bucket, "runs/minio.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
