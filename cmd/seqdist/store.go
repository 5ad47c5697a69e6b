package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/seqdist/blobstore"
	miniostore "github.com/hupe1980/seqdist/blobstore/minio"
	s3store "github.com/hupe1980/seqdist/blobstore/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// storeLocation is a parsed blob store URL.
type storeLocation struct {
	scheme   string
	endpoint string
	bucket   string
	prefix   string
	path     string
	secure   bool
}

// parseStoreURL accepts
//
//	dir or file://dir
//	mem://
//	s3://bucket/prefix
//	minio://endpoint/bucket/prefix[?secure=false]
func parseStoreURL(raw string) (storeLocation, error) {
	if raw == "" {
		return storeLocation{}, fmt.Errorf("%w: empty store URL", errUsage)
	}
	if !strings.Contains(raw, "://") {
		return storeLocation{scheme: "file", path: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return storeLocation{}, fmt.Errorf("%w: store URL %q: %w", errUsage, raw, err)
	}

	loc := storeLocation{scheme: u.Scheme}
	switch u.Scheme {
	case "file":
		loc.path = strings.TrimPrefix(raw, "file://")
		if loc.path == "" {
			return storeLocation{}, fmt.Errorf("%w: store URL %q has no directory", errUsage, raw)
		}
	case "mem":
	case "s3":
		loc.bucket = u.Host
		loc.prefix = strings.Trim(u.Path, "/")
		if loc.bucket == "" {
			return storeLocation{}, fmt.Errorf("%w: store URL %q has no bucket", errUsage, raw)
		}
	case "minio":
		loc.endpoint = u.Host
		parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
		loc.bucket = parts[0]
		if len(parts) == 2 {
			loc.prefix = parts[1]
		}
		if loc.endpoint == "" || loc.bucket == "" {
			return storeLocation{}, fmt.Errorf("%w: store URL %q needs an endpoint and a bucket", errUsage, raw)
		}
		loc.secure = true
		if v := u.Query().Get("secure"); v != "" {
			loc.secure, err = strconv.ParseBool(v)
			if err != nil {
				return storeLocation{}, fmt.Errorf("%w: store URL %q: secure=%q", errUsage, raw, v)
			}
		}
	default:
		return storeLocation{}, fmt.Errorf("%w: unsupported store scheme %q (file, mem, s3, minio)", errUsage, u.Scheme)
	}
	return loc, nil
}

// openStore connects to the blob store named by raw. s3 uses the default AWS
// credential chain; minio reads MINIO_ACCESS_KEY and MINIO_SECRET_KEY.
func openStore(ctx context.Context, raw string) (blobstore.BlobStore, error) {
	loc, err := parseStoreURL(raw)
	if err != nil {
		return nil, err
	}

	switch loc.scheme {
	case "file":
		return blobstore.NewLocalStore(loc.path), nil
	case "mem":
		return blobstore.NewMemoryStore(), nil
	case "s3":
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return s3store.NewStore(awss3.NewFromConfig(cfg), loc.bucket, loc.prefix), nil
	default:
		client, err := minio.New(loc.endpoint, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: loc.secure,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to %s: %w", loc.endpoint, err)
		}
		return miniostore.NewStore(client, loc.bucket, loc.prefix), nil
	}
}
