// Command dedupe is a thin CLI front end over the dedupe engine and its
// federated (xl) variant.
//
// Logging:
//   - Base logger is created here with output format and level
//   - Logger is passed to the engine/pool via dependency injection
//   - No global slog configuration (no slog.SetDefault)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	dedupe "github.com/jchristn/dedupe"
	"github.com/jchristn/dedupe/internal/blobstore/file"
	"github.com/jchristn/dedupe/internal/home"
	"github.com/jchristn/dedupe/xl"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var homeFlag, chunksDir, key, paramsFlag, cname, cindex string
	var idxStart, results int64

	rootCmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Content-defined deduplication storage engine",
		// Resolves --home into defaults for --chunks and --cindex once
		// flags are parsed but before any subcommand runs, so callers
		// managing a federation home directory don't have to spell out
		// --chunks/--cindex on every invocation.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if homeFlag == "" {
				return nil
			}
			hd := home.New(homeFlag)
			if err := hd.EnsureExists(); err != nil {
				return err
			}
			if chunksDir == "" {
				chunksDir = hd.ChunksPath()
			}
			if cname != "" && cindex == "" {
				cindex = hd.ContainerPath(cname)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "federation home directory (defaults --chunks/--cindex under it)")
	rootCmd.PersistentFlags().StringVar(&chunksDir, "chunks", "", "directory backing the blob store (required unless --home is set)")
	rootCmd.PersistentFlags().StringVar(&key, "key", "", "object key (or prefix, for list)")
	rootCmd.PersistentFlags().StringVar(&paramsFlag, "params", "", "MIN,MAX,SHIFT,BOUND chunking parameters (create only)")
	rootCmd.PersistentFlags().StringVar(&cname, "cname", "", "container name (federated operations)")
	rootCmd.PersistentFlags().StringVar(&cindex, "cindex", "", "container index catalog path (federated operations)")
	rootCmd.PersistentFlags().Int64Var(&idxStart, "idxstart", 0, "list/olist start index")
	rootCmd.PersistentFlags().Int64Var(&results, "results", 100, "list/olist max results")

	cmds := []struct {
		use string
		run func(ctx context.Context, catalogPath string) error
	}{
		{"create <catalog-path>", func(ctx context.Context, p string) error { return cmdCreate(logger, p, chunksDir, paramsFlag) }},
		{"stats <catalog-path>", func(ctx context.Context, p string) error { return cmdStats(ctx, logger, p, chunksDir, cname, cindex) }},
		{"write <catalog-path>", func(ctx context.Context, p string) error { return cmdWrite(ctx, logger, p, chunksDir, key, cname, cindex) }},
		{"get <catalog-path>", func(ctx context.Context, p string) error { return cmdGet(ctx, logger, p, chunksDir, key, cname, cindex) }},
		{"del <catalog-path>", func(ctx context.Context, p string) error { return cmdDelete(ctx, logger, p, chunksDir, key, cname, cindex) }},
		{"md <catalog-path>", func(ctx context.Context, p string) error { return cmdMetadata(ctx, logger, p, chunksDir, key, cname, cindex) }},
		{"list <catalog-path>", func(ctx context.Context, p string) error { return cmdList(ctx, logger, p, chunksDir, key, idxStart, results, cname, cindex) }},
		{"exists <catalog-path>", func(ctx context.Context, p string) error { return cmdExists(ctx, logger, p, chunksDir, key, cname, cindex) }},
		{"clist <catalog-path>", func(ctx context.Context, p string) error { return cmdClist(ctx, logger, p, chunksDir) }},
		{"cexists <catalog-path>", func(ctx context.Context, p string) error { return cmdCexists(ctx, logger, p, chunksDir, cname) }},
		{"olist <catalog-path>", func(ctx context.Context, p string) error { return cmdOlist(ctx, logger, p, chunksDir, key, idxStart, results) }},
		{"oexists <catalog-path>", func(ctx context.Context, p string) error { return cmdOexists(ctx, logger, p, chunksDir, key) }},
	}

	for _, c := range cmds {
		c := c
		rootCmd.AddCommand(&cobra.Command{
			Use:  c.use,
			Args: cobra.ExactArgs(1),
			// Argument errors (missing catalog path, bad --params) exit
			// non-zero via RunE's returned error. Operational failures
			// (object not found, blob io error) are printed to stderr and
			// do not fail the process: preserved, documented behavior,
			// not a bug — see the CLI section of the project's design
			// notes.
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.run(cmd.Context(), args[0]); err != nil {
					var ae argError
					if errors.As(err, &ae) {
						return err
					}
					fmt.Fprintln(os.Stderr, "error:", err)
				}
				return nil
			},
		})
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func cmdCreate(logger *slog.Logger, catalogPath, chunksDir, paramsFlag string) error {
	if chunksDir == "" {
		return fmt.Errorf("--chunks is required")
	}
	cfg, err := parseParams(paramsFlag)
	if err != nil {
		return err
	}

	blobs, err := file.New(chunksDir, logger)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	e, err := dedupe.Create(catalogPath, cfg, blobs, dedupe.Options{Logger: logger})
	if err != nil {
		return err
	}
	return e.Close()
}

// argError marks a command-line argument error, which exits non-zero.
type argError struct{ error }

func parseParams(paramsFlag string) (dedupe.Config, error) {
	if paramsFlag == "" {
		return dedupe.Config{}, argError{fmt.Errorf("--params=MIN,MAX,SHIFT,BOUND is required")}
	}
	parts := strings.Split(paramsFlag, ",")
	if len(parts) != 4 {
		return dedupe.Config{}, argError{fmt.Errorf("--params must have 4 comma-separated values, got %d", len(parts))}
	}
	vals := make([]int64, 4)
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return dedupe.Config{}, argError{fmt.Errorf("--params value %q is not an integer: %w", p, err)}
		}
		vals[i] = n
	}
	return dedupe.Config{MinChunkSize: vals[0], MaxChunkSize: vals[1], ShiftCount: vals[2], BoundaryCheckBytes: vals[3]}, nil
}

// openEngineOrPool opens the single-catalog engine at catalogPath unless
// cname is set, in which case catalogPath is treated as a pool path and
// a federated Pool is opened instead.
func openEngineOrPool(logger *slog.Logger, catalogPath, chunksDir, cname string) (engine *dedupe.Engine, pool *xl.Pool, err error) {
	if chunksDir == "" {
		return nil, nil, fmt.Errorf("--chunks is required")
	}
	blobs, err := file.New(chunksDir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open blob store: %w", err)
	}

	if cname != "" {
		pool, err = xl.OpenPool(catalogPath, blobs, xl.Options{Logger: logger})
		return nil, pool, err
	}
	engine, err = dedupe.Open(catalogPath, blobs, dedupe.Options{Logger: logger})
	return engine, nil, err
}

func cmdStats(ctx context.Context, logger *slog.Logger, catalogPath, chunksDir, cname, cindex string) error {
	e, p, err := openEngineOrPool(logger, catalogPath, chunksDir, cname)
	if err != nil {
		return err
	}
	if p != nil {
		defer p.Close()
		stats, err := p.IndexStats(ctx, cname, cindex)
		if err != nil {
			return err
		}
		printStats(stats)
		return nil
	}
	defer e.Close()
	stats, err := e.IndexStats(ctx)
	if err != nil {
		return err
	}
	printStats(stats)
	return nil
}

func printStats(s dedupe.IndexStatistics) {
	fmt.Printf("objects=%d chunks=%d logical_bytes=%d physical_bytes=%d ratio_x=%.2f ratio_pct=%.1f\n",
		s.Objects, s.Chunks, s.LogicalBytes, s.PhysicalBytes, s.RatioX, s.RatioPct)
}

func cmdWrite(ctx context.Context, logger *slog.Logger, catalogPath, chunksDir, key, cname, cindex string) error {
	if key == "" {
		return fmt.Errorf("--key is required")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	e, p, err := openEngineOrPool(logger, catalogPath, chunksDir, cname)
	if err != nil {
		return err
	}
	if p != nil {
		defer p.Close()
		return p.Write(ctx, cname, cindex, key, data)
	}
	defer e.Close()
	return e.Write(ctx, key, data)
}

func cmdGet(ctx context.Context, logger *slog.Logger, catalogPath, chunksDir, key, cname, cindex string) error {
	if key == "" {
		return fmt.Errorf("--key is required")
	}

	e, p, err := openEngineOrPool(logger, catalogPath, chunksDir, cname)
	if err != nil {
		return err
	}

	var stream dedupe.SeekableStream
	if p != nil {
		defer p.Close()
		stream, err = p.GetStream(ctx, cname, cindex, key)
	} else {
		defer e.Close()
		stream, err = e.GetStream(ctx, key)
	}
	if err != nil {
		return err
	}
	defer stream.Close()

	_, err = io.Copy(os.Stdout, stream)
	return err
}

func cmdDelete(ctx context.Context, logger *slog.Logger, catalogPath, chunksDir, key, cname, cindex string) error {
	if key == "" {
		return fmt.Errorf("--key is required")
	}

	e, p, err := openEngineOrPool(logger, catalogPath, chunksDir, cname)
	if err != nil {
		return err
	}
	if p != nil {
		defer p.Close()
		return p.Delete(ctx, cname, cindex, key)
	}
	defer e.Close()
	return e.Delete(ctx, key)
}

func cmdMetadata(ctx context.Context, logger *slog.Logger, catalogPath, chunksDir, key, cname, cindex string) error {
	if key == "" {
		return fmt.Errorf("--key is required")
	}

	e, p, err := openEngineOrPool(logger, catalogPath, chunksDir, cname)
	if err != nil {
		return err
	}

	var obj *dedupe.Object
	if p != nil {
		defer p.Close()
		obj, err = p.GetMetadata(ctx, cname, cindex, key)
	} else {
		defer e.Close()
		obj, err = e.GetMetadata(ctx, key)
	}
	if err != nil {
		return err
	}
	fmt.Printf("key=%s length=%d created_utc=%s\n", obj.Key, obj.Length, obj.CreatedUTC.Format("2006-01-02T15:04:05Z"))
	return nil
}

func cmdList(ctx context.Context, logger *slog.Logger, catalogPath, chunksDir, prefix string, idxStart, maxResults int64, cname, cindex string) error {
	e, p, err := openEngineOrPool(logger, catalogPath, chunksDir, cname)
	if err != nil {
		return err
	}

	var res dedupe.EnumerationResult
	if p != nil {
		defer p.Close()
		res, err = p.ListObjects(ctx, cname, cindex, prefix, idxStart, maxResults)
	} else {
		defer e.Close()
		res, err = e.ListObjects(ctx, prefix, idxStart, maxResults)
	}
	if err != nil {
		return err
	}
	for _, o := range res.Objects {
		fmt.Printf("%s\t%d\t%d\n", o.Key, o.Length, o.ChunkCount)
	}
	fmt.Fprintf(os.Stderr, "total=%d\n", res.Total)
	return nil
}

func cmdExists(ctx context.Context, logger *slog.Logger, catalogPath, chunksDir, key, cname, cindex string) error {
	if key == "" {
		return fmt.Errorf("--key is required")
	}

	e, p, err := openEngineOrPool(logger, catalogPath, chunksDir, cname)
	if err != nil {
		return err
	}

	var ok bool
	if p != nil {
		defer p.Close()
		ok, err = p.Exists(ctx, cname, cindex, key)
	} else {
		defer e.Close()
		ok, err = e.Exists(ctx, key)
	}
	if err != nil {
		return err
	}
	fmt.Println(ok)
	return nil
}

func cmdClist(ctx context.Context, logger *slog.Logger, catalogPath, chunksDir string) error {
	if chunksDir == "" {
		return fmt.Errorf("--chunks is required")
	}
	blobs, err := file.New(chunksDir, logger)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	p, err := xl.OpenPool(catalogPath, blobs, xl.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer p.Close()

	containers, err := p.ListContainers(ctx)
	if err != nil {
		return err
	}
	for _, c := range containers {
		fmt.Printf("%s\t%s\n", c.Name, c.IndexPath)
	}
	return nil
}

func cmdCexists(ctx context.Context, logger *slog.Logger, catalogPath, chunksDir, cname string) error {
	if cname == "" {
		return fmt.Errorf("--cname is required")
	}
	blobs, err := file.New(chunksDir, logger)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	p, err := xl.OpenPool(catalogPath, blobs, xl.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer p.Close()

	ok, err := p.ContainerExists(ctx, cname)
	if err != nil {
		return err
	}
	fmt.Println(ok)
	return nil
}

func cmdOlist(ctx context.Context, logger *slog.Logger, catalogPath, chunksDir, prefix string, idxStart, maxResults int64) error {
	blobs, err := file.New(chunksDir, logger)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	p, err := xl.OpenPool(catalogPath, blobs, xl.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer p.Close()

	results, err := p.ListObjectsAcrossContainers(ctx, prefix, idxStart, maxResults)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "container %s: %v\n", r.Container, r.Err)
			continue
		}
		for _, o := range r.Result.Objects {
			fmt.Printf("%s\t%s\t%d\t%d\n", r.Container, o.Key, o.Length, o.ChunkCount)
		}
	}
	return nil
}

func cmdOexists(ctx context.Context, logger *slog.Logger, catalogPath, chunksDir, key string) error {
	if key == "" {
		return fmt.Errorf("--key is required")
	}
	blobs, err := file.New(chunksDir, logger)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	p, err := xl.OpenPool(catalogPath, blobs, xl.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer p.Close()

	results, err := p.ExistsAcrossContainers(ctx, key)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "container %s: %v\n", r.Container, r.Err)
			continue
		}
		fmt.Printf("%s\t%t\n", r.Container, r.Exists)
	}
	return nil
}
