package artifacts

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/kuitang/buggy-e2e/internal/config"
	"github.com/kuitang/buggy-e2e/internal/obs"
	"github.com/kuitang/buggy-e2e/internal/s3client"
)

// ObjectStore is the subset of the S3 client the publisher needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	Location(key string) string
}

// Publisher uploads captures under runs/<run-id>/.
type Publisher struct {
	store ObjectStore
}

func NewPublisher(store ObjectStore) *Publisher {
	return &Publisher{store: store}
}

// NewPublisherFromConfig connects to the configured bucket.
// It returns nil when publishing is disabled.
func NewPublisherFromConfig(ctx context.Context, cfg config.ArtifactConfig) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := s3client.New(ctx, s3client.Config{
		Endpoint:        cfg.Endpoint,
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		BucketName:      cfg.Bucket,
		UsePathStyle:    cfg.UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("connect artifact bucket: %w", err)
	}
	return NewPublisher(client), nil
}

// RunPrefix is the key prefix of every object of a run.
func RunPrefix(runID string) string {
	return "runs/" + runID + "/"
}

// Publish uploads every file of c and returns the uploaded keys.
func (p *Publisher) Publish(ctx context.Context, c *Capture) ([]string, error) {
	files, err := c.Files()
	if err != nil {
		return nil, err
	}

	log := obs.From(ctx).With("pkg", "artifacts")
	keys := make([]string, 0, len(files))
	for _, rel := range files {
		key := path.Join(RunPrefix(c.RunID), rel)
		if err := p.upload(ctx, key, filepath.Join(c.Dir(), filepath.FromSlash(rel))); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	log.Info("artifacts_published", "run_id", c.RunID, "count", len(keys), "location", p.store.Location(RunPrefix(c.RunID)))
	return keys, nil
}

func (p *Publisher) upload(ctx context.Context, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()
	return p.store.Upload(ctx, key, f, contentType(file))
}

// DeleteRun removes every object of runID and returns how many were deleted.
func (p *Publisher) DeleteRun(ctx context.Context, runID string) (int, error) {
	keys, err := p.store.List(ctx, RunPrefix(runID))
	if err != nil {
		return 0, err
	}
	for i, key := range keys {
		if err := p.store.Delete(ctx, key); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
