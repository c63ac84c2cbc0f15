package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/chunkarray"
	"github.com/hupe1980/chunkarray/blobstore"
	miniostore "github.com/hupe1980/chunkarray/blobstore/minio"
	s3store "github.com/hupe1980/chunkarray/blobstore/s3"
	"github.com/hupe1980/chunkarray/internal/cache"
	"github.com/hupe1980/chunkarray/resource"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"
)

// Config holds store and runtime settings. It is read from the file named by
// --config; explicitly set flags take precedence.
type Config struct {
	Store     string `yaml:"store"`
	Root      string `yaml:"root"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Insecure  bool   `yaml:"insecure"`

	CacheBytes    int64  `yaml:"cache_bytes"`
	IOBytesPerSec int64  `yaml:"io_bytes_per_sec"`
	LogLevel      string `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		Store:    "local",
		Root:     ".",
		LogLevel: "warn",
	}
}

// loadConfig reads a YAML file over the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) logger() (*chunkarray.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return chunkarray.NewTextLogger(level), nil
}

// runtime bundles what the commands need.
type runtime struct {
	store  blobstore.BlobStore
	rc     *resource.Controller
	logger *chunkarray.Logger
}

func (c Config) open(ctx context.Context) (*runtime, error) {
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}

	store, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   c.CacheBytes,
		IOLimitBytesPerSec: c.IOBytesPerSec,
	})
	if c.CacheBytes > 0 {
		store = blobstore.NewCachingStore(store, cache.NewLRUBlockCache(c.CacheBytes, rc), blobstore.DefaultBlockSize)
	}

	logger.Debug("store opened", "store", c.Store, "cache_bytes", c.CacheBytes)
	return &runtime{store: store, rc: rc, logger: logger}, nil
}

func (c Config) openStore(ctx context.Context) (blobstore.BlobStore, error) {
	switch c.Store {
	case "local", "":
		return blobstore.NewLocalStore(c.Root), nil
	case "s3":
		if c.Bucket == "" {
			return nil, fmt.Errorf("s3 store requires a bucket")
		}
		var optFns []func(*awsconfig.LoadOptions) error
		if c.Region != "" {
			optFns = append(optFns, awsconfig.WithRegion(c.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if c.Endpoint != "" {
				o.BaseEndpoint = aws.String(c.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3store.NewStore(client, c.Bucket, c.Prefix), nil
	case "minio":
		if c.Bucket == "" || c.Endpoint == "" {
			return nil, fmt.Errorf("minio store requires a bucket and an endpoint")
		}
		client, err := minio.New(c.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
			Secure: !c.Insecure,
			Region: c.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, c.Bucket, c.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown store %q (want local, s3 or minio)", c.Store)
	}
}
