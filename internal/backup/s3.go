package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store keeps archives in an S3-compatible bucket under
// {prefix}/backups/{name}.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates a new S3Store.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// objectKey returns the full S3 key for a given archive name.
func (s *S3Store) objectKey(name string) string {
	return path.Join(s.prefix, "backups", name)
}

// Exists checks for the archive by listing the exact key, so a missing object
// is distinguishable from a request failure.
func (s *S3Store) Exists(ctx context.Context, name string) (bool, error) {
	key := s.objectKey(name)
	result, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(key),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check archive %q in S3: %w", name, err)
	}
	for _, obj := range result.Contents {
		if aws.ToString(obj.Key) == key {
			return true, nil
		}
	}
	return false, nil
}

// Put uploads the archive file to S3 and removes the local source on success.
func (s *S3Store) Put(ctx context.Context, name, archivePath string) error {
	f, err := os.Open(filepath.Clean(archivePath))
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer func() { _ = f.Close() }()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(name)),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("failed to put archive %q to S3: %w", name, err)
	}
	return os.Remove(archivePath)
}

// Fetch downloads the named archive to destPath.
func (s *S3Store) Fetch(ctx context.Context, name, destPath string) error {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to get archive %q from S3: %w", name, err)
	}
	defer func() { _ = result.Body.Close() }()

	out, err := os.Create(filepath.Clean(destPath))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, result.Body); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to download archive %q: %w", name, err)
	}
	return out.Close()
}

// List returns all archives under the backup prefix sorted by name.
func (s *S3Store) List(ctx context.Context) ([]Archive, error) {
	prefix := path.Join(s.prefix, "backups") + "/"
	result, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archives from S3: %w", err)
	}

	var archives []Archive
	for _, obj := range result.Contents {
		if obj.Key == nil {
			continue
		}
		a := Archive{Name: path.Base(aws.ToString(obj.Key))}
		a.Size = aws.ToInt64(obj.Size)
		if obj.LastModified != nil {
			a.CreatedAt = *obj.LastModified
		}
		archives = append(archives, a)
	}
	sort.Slice(archives, func(i, j int) bool { return archives[i].Name < archives[j].Name })
	return archives, nil
}
