package parents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"parent-reconciler/core/reconcile"
	"parent-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
)

// ObjectName returns the object a report is published under.
func ObjectName(prefix string, report *reconcile.Report) string {
	return path.Join(prefix, report.Adapter, report.RunID+".json")
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, report *reconcile.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// Publish uploads the report to the configured bucket, creating the bucket when missing,
// and returns the object name.
func Publish(ctx context.Context, client storage.Client, cfg storage.Config, report *reconcile.Report) (string, error) {
	if err := storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, report); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	name := ObjectName(cfg.Prefix, report)
	_, err := client.PutObject(ctx, cfg.Bucket, name, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", name, err)
	}
	return name, nil
}
