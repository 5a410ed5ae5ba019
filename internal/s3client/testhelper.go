package s3client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

// Credentials accepted by the fake server.
const (
	TestRegion          = "us-east-1"
	TestAccessKeyID     = "test-key"
	TestSecretAccessKey = "test-secret"
)

// TestServer starts an in-memory gofakes3 server with bucketName created and
// returns its endpoint. The server is closed when the test completes.
func TestServer(t testing.TB, bucketName string) string {
	t.Helper()

	ts := httptest.NewServer(gofakes3.New(s3mem.New()).Server())
	t.Cleanup(ts.Close)

	client := testClient(t, ts.URL, bucketName)
	_, err := client.api.CreateBucket(context.Background(), &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		t.Fatalf("failed to create test bucket: %v", err)
	}
	return ts.URL
}

// TestClient returns a Client backed by a TestServer.
func TestClient(t testing.TB, bucketName string) *Client {
	t.Helper()
	return testClient(t, TestServer(t, bucketName), bucketName)
}

func testClient(t testing.TB, endpoint, bucketName string) *Client {
	t.Helper()
	client, err := New(context.Background(), Config{
		Endpoint:        endpoint,
		Region:          TestRegion,
		AccessKeyID:     TestAccessKeyID,
		SecretAccessKey: TestSecretAccessKey,
		BucketName:      bucketName,
		BaseURL:         endpoint + "/" + bucketName,
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create test S3 client: %v", err)
	}
	return client
}
