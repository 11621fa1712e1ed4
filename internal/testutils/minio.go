//go:build integration

package testutils

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/s3blob"
)

const (
	minioImage  = "minio/minio:latest"
	minioUser   = "glean"
	minioSecret = "glean-secret"
)

// StartMinioBucket starts a MinIO container, creates bucket name in it and
// returns the opened bucket together with its gocloud URL. The bucket is
// closed and the container terminated when the test ends.
func StartMinioBucket(t *testing.T, name string) (*blob.Bucket, string) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        minioImage,
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioUser,
				"MINIO_ROOT_PASSWORD": minioSecret,
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/ready").WithPort("9000"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start minio: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate minio: %v", err)
		}
	})

	// The server image ships mc, so the bucket is created in place.
	for _, cmd := range [][]string{
		{"mc", "alias", "set", "local", "http://127.0.0.1:9000", minioUser, minioSecret},
		{"mc", "mb", "--ignore-existing", "local/" + name},
	} {
		code, out, err := container.Exec(ctx, cmd)
		if err != nil {
			t.Fatalf("minio %v: %v", cmd, err)
		}
		if code != 0 {
			var msg []byte
			if out != nil {
				msg, _ = io.ReadAll(out)
			}
			t.Fatalf("minio %v exited %d: %s", cmd, code, msg)
		}
	}

	endpoint, err := container.PortEndpoint(ctx, "9000/tcp", "http")
	if err != nil {
		t.Fatalf("minio endpoint: %v", err)
	}
	url := fmt.Sprintf("s3://%s?endpoint=%s&use_path_style=true&disable_https=true&region=us-east-1",
		name, endpoint)

	// s3blob reads credentials from the environment.
	t.Setenv("AWS_ACCESS_KEY_ID", minioUser)
	t.Setenv("AWS_SECRET_ACCESS_KEY", minioSecret)

	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		t.Fatalf("open minio bucket: %v", err)
	}
	t.Cleanup(func() { bucket.Close() })

	return bucket, url
}
