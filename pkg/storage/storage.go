// Package storage holds model files and generated notes.
//
// A Store is addressed by URL:
//
//	file:///var/lib/mkmarkov        local directory
//	s3://bucket/prefix?region=...   S3 or any S3-compatible endpoint
//
// Paths inside a store are forward-slash separated and relative to its root.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrUnsupportedScheme is returned by Open for an unknown URL scheme.
var ErrUnsupportedScheme = errors.New("storage: unsupported scheme")

// Store reads and writes whole files.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Read opens the named file. A missing file yields an error wrapping
	// os.ErrNotExist. The caller closes the reader.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or truncates the named file. Data is committed when the
	// returned writer is closed.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the paths under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Open opens the store addressed by rawURL. A bare path is treated as a
// local directory.
//
// S3 URLs accept the query parameters region, endpoint and path_style.
// Credentials come from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
// AWS_SESSION_TOKEN.
func Open(rawURL string) (Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "", "file":
		dir := u.Path
		if u.Scheme == "" {
			dir = rawURL
		}
		if u.Host != "" {
			dir = u.Host + dir
		}
		return NewLocal(dir)
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("storage: %q: missing bucket", rawURL)
		}
		client, err := newS3Client(u.Query())
		if err != nil {
			return nil, err
		}
		return NewS3(client, u.Host, strings.Trim(u.Path, "/")), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func newS3Client(q url.Values) (*s3.Client, error) {
	region := q.Get("region")
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region: region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
					SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
					SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
					Source:          "environment",
				}, nil
			})),
	}
	if ep := q.Get("endpoint"); ep != "" {
		opts.BaseEndpoint = aws.String(ep)
		opts.UsePathStyle = true
	}
	if ps := q.Get("path_style"); ps != "" {
		v, err := strconv.ParseBool(ps)
		if err != nil {
			return nil, fmt.Errorf("storage: path_style: %w", err)
		}
		opts.UsePathStyle = v
	}
	return s3.New(opts), nil
}
