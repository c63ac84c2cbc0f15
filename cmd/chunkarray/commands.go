package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/chunkarray"
	"github.com/hupe1980/chunkarray/blobstore"
	"github.com/hupe1980/chunkarray/chunkio"
	"github.com/hupe1980/chunkarray/codec"
	"github.com/hupe1980/chunkarray/filename"
	"github.com/hupe1980/chunkarray/manifest"
	"github.com/hupe1980/chunkarray/ndarray"
	"github.com/spf13/cobra"
)

type cli struct {
	configPath string
	flags      Config
	rt         *runtime
}

func newRootCmd() *cobra.Command {
	c := &cli{flags: defaultConfig()}

	root := &cobra.Command{
		Use:          "chunkarray",
		Short:        "Inspect chunked N-d datasets",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.config(cmd)
			if err != nil {
				return err
			}
			c.rt, err = cfg.open(cmd.Context())
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "YAML config file")
	pf.StringVar(&c.flags.Store, "store", c.flags.Store, "blob store: local, s3 or minio")
	pf.StringVar(&c.flags.Root, "root", c.flags.Root, "root directory of the local store")
	pf.StringVar(&c.flags.Bucket, "bucket", "", "bucket for s3 and minio stores")
	pf.StringVar(&c.flags.Prefix, "prefix", "", "key prefix inside the bucket")
	pf.StringVar(&c.flags.Endpoint, "endpoint", "", "endpoint for s3-compatible or minio stores")
	pf.StringVar(&c.flags.Region, "region", "", "bucket region")
	pf.Int64Var(&c.flags.CacheBytes, "cache-bytes", 0, "block cache size for remote reads (0 disables)")
	pf.Int64Var(&c.flags.IOBytesPerSec, "io-limit", 0, "read throughput limit in bytes per second (0 disables)")
	pf.StringVar(&c.flags.LogLevel, "log-level", c.flags.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(
		c.newLsCmd(),
		c.newInfoCmd(),
		c.newGetCmd(),
		c.newSliceCmd(),
	)
	return root
}

// config merges the config file with explicitly set flags.
func (c *cli) config(cmd *cobra.Command) (Config, error) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return cfg, err
	}

	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("store", &cfg.Store, c.flags.Store)
	set("root", &cfg.Root, c.flags.Root)
	set("bucket", &cfg.Bucket, c.flags.Bucket)
	set("prefix", &cfg.Prefix, c.flags.Prefix)
	set("endpoint", &cfg.Endpoint, c.flags.Endpoint)
	set("region", &cfg.Region, c.flags.Region)
	set("log-level", &cfg.LogLevel, c.flags.LogLevel)
	if cmd.Flags().Changed("cache-bytes") {
		cfg.CacheBytes = c.flags.CacheBytes
	}
	if cmd.Flags().Changed("io-limit") {
		cfg.IOBytesPerSec = c.flags.IOBytesPerSec
	}
	return cfg, nil
}

func (c *cli) manifestStore(dir string) *manifest.Store {
	return manifest.NewStore(c.rt.store, dir, codec.Default)
}

func (c *cli) newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <pattern>",
		Short: "Resolve a filename pattern into a file grid",
		Long: `Resolve a filename pattern into a file grid.

Each '*' in the file part of the pattern matches a run of digits. With
several wildcards the matches are reshaped into a grid, last wildcard first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grid, err := filename.SelectPattern(cmd.Context(), args[0],
				filename.WithLister(filename.NewBlobLister(c.rt.store)),
				filename.WithLogger(c.rt.logger.Logger),
			)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "shape %s\n", grid.Shape())
			idx := make([]int, grid.NDims())
			for _, name := range grid.Data() {
				fmt.Fprintf(w, "%v\t%s\n", idx, name)
				advance(idx, grid.Shape())
			}
			return nil
		},
	}
}

func (c *cli) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <dataset>",
		Short: "Print the manifest of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ms := c.manifestStore(args[0])
			m, err := ms.Load(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "manifest    %d\n", m.ID)
			fmt.Fprintf(w, "dtype       %s\n", m.DType)
			fmt.Fprintf(w, "compression %s\n", m.Compression)
			fmt.Fprintf(w, "chunk shape %s\n", ndarray.Shape(m.ChunkShape))
			fmt.Fprintf(w, "grid shape  %s\n", ndarray.Shape(m.GridShape))
			fmt.Fprintf(w, "shape       %s\n", ndarray.Shape(m.Shape()))
			fmt.Fprintf(w, "files       %d\n", len(m.Files))
			for _, k := range slices.Sorted(maps.Keys(m.Attrs)) {
				fmt.Fprintf(w, "attr        %s=%s\n", k, m.Attrs[k])
			}

			if len(m.Files) == 0 {
				return nil
			}
			data, err := blobstore.ReadAll(ctx, c.rt.store, ms.Path(m.Files[0]))
			if err != nil {
				return err
			}
			h, err := chunkio.ReadHeader(data)
			if err != nil {
				return fmt.Errorf("%s: %w", m.Files[0], err)
			}
			fmt.Fprintf(w, "first chunk %s: %s, %d bytes stored, %d raw\n",
				m.Files[0], h.Compression, h.PayloadLen, h.RawLen)
			return nil
		},
	}
}

func (c *cli) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <dataset> <index>...",
		Short: "Print one element of a dataset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx := make([]int, len(args)-1)
			for i, s := range args[1:] {
				v, err := strconv.Atoi(s)
				if err != nil {
					return fmt.Errorf("invalid index %q", s)
				}
				idx[i] = v
			}
			return c.query(cmd.Context(), cmd.OutOrStdout(), args[0], query{index: idx})
		},
	}
}

func (c *cli) newSliceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slice <dataset> <selector>...",
		Short: "Print a rectangular selection of a dataset",
		Long: `Print a rectangular selection of a dataset.

Selectors are given per axis: "i" selects one index and drops the axis,
"a:b" selects the half-open range [a, b) and ":" selects the whole axis.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sels := make([]ndarray.Selector, len(args)-1)
			for i, s := range args[1:] {
				sel, err := ndarray.ParseSelector(s)
				if err != nil {
					return err
				}
				sels[i] = sel
			}
			return c.query(cmd.Context(), cmd.OutOrStdout(), args[0], query{sels: sels, slice: true})
		},
	}
}

type query struct {
	index []int
	sels  []ndarray.Selector
	slice bool
}

// query opens the dataset with the element type named by its manifest.
func (c *cli) query(ctx context.Context, w io.Writer, dir string, q query) error {
	ms := c.manifestStore(dir)
	m, err := ms.Load(ctx)
	if err != nil {
		return err
	}
	dt, err := chunkio.ParseDType(m.DType)
	if err != nil {
		return err
	}

	switch dt {
	case chunkio.DTypeInt8:
		return runQuery[int8](ctx, c.rt, w, ms, q)
	case chunkio.DTypeUint8:
		return runQuery[uint8](ctx, c.rt, w, ms, q)
	case chunkio.DTypeInt16:
		return runQuery[int16](ctx, c.rt, w, ms, q)
	case chunkio.DTypeUint16:
		return runQuery[uint16](ctx, c.rt, w, ms, q)
	case chunkio.DTypeInt32:
		return runQuery[int32](ctx, c.rt, w, ms, q)
	case chunkio.DTypeUint32:
		return runQuery[uint32](ctx, c.rt, w, ms, q)
	case chunkio.DTypeInt64:
		return runQuery[int64](ctx, c.rt, w, ms, q)
	case chunkio.DTypeUint64:
		return runQuery[uint64](ctx, c.rt, w, ms, q)
	case chunkio.DTypeFloat32:
		return runQuery[float32](ctx, c.rt, w, ms, q)
	case chunkio.DTypeFloat64:
		return runQuery[float64](ctx, c.rt, w, ms, q)
	default:
		return fmt.Errorf("unsupported dtype %s", dt)
	}
}

func runQuery[T chunkio.Numeric](ctx context.Context, rt *runtime, w io.Writer, ms *manifest.Store, q query) error {
	mc := &chunkarray.BasicMetricsCollector{}
	arr, _, err := chunkio.OpenManifest[T](ctx, ms,
		chunkio.WithLoaderOptions(chunkio.WithResourceController(rt.rc)),
		chunkio.WithArrayOptions(
			chunkarray.WithLogger(rt.logger),
			chunkarray.WithMetricsCollector(mc),
		),
	)
	if err != nil {
		return err
	}

	if !q.slice {
		v, err := arr.At(ctx, q.index...)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
		return nil
	}

	out, err := arr.CopyRange(ctx, nil, q.sels...)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "shape %s\n", out.Shape())
	fmt.Fprintln(w, formatValues(out.Data()))
	fmt.Fprintf(w, "loads %d\n", mc.GetStats().LoadCount)
	return nil
}

func formatValues[T any](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

// advance moves idx to the next row-major position of shape.
func advance(idx []int, shape ndarray.Shape) {
	for a := len(idx) - 1; a >= 0; a-- {
		idx[a]++
		if idx[a] < shape[a] {
			return
		}
		idx[a] = 0
	}
}
