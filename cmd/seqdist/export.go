package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/seqdist"
	"github.com/hupe1980/seqdist/blobstore"
	"github.com/hupe1980/seqdist/codec"
	"github.com/hupe1980/seqdist/config"
	"github.com/hupe1980/seqdist/export"
	"github.com/hupe1980/seqdist/matrix"
	"github.com/spf13/cobra"
)

const defaultArchiveName = "distmat.sqdm"

type exportFlags struct {
	checkpointDir string
	name          string
	compression   string
	codec         string
	blockSize     string
	verify        bool
}

func (f *exportFlags) exportOptions() ([]export.Option, error) {
	comp, err := export.ParseCompression(f.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	c, ok := codec.ByName(f.codec)
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q (%s)", errUsage, f.codec, strings.Join(codec.Names(), ", "))
	}
	opts := []export.Option{export.WithCompression(comp), export.WithCodec(c)}

	if f.blockSize != "" {
		n, err := humanize.ParseBytes(f.blockSize)
		if err != nil || n < 8 {
			return nil, fmt.Errorf("%w: block size %q", errUsage, f.blockSize)
		}
		opts = append(opts, export.WithBlockSize(int(n)))
	}
	return opts, nil
}

func exportCommand(g *globalFlags) *cobra.Command {
	f := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export <store-url>",
		Short: "Archive a finished matrix into a blob store",
		Long: `Write a finished run as a compressed, checksummed archive that carries the
sequence IDs and the measure description.

Store URLs:
  dir, file://dir                         local directory
  mem://                                  in-memory (with --verify, for testing)
  s3://bucket/prefix                      Amazon S3, default AWS credential chain
  minio://endpoint/bucket/prefix          MinIO, MINIO_ACCESS_KEY / MINIO_SECRET_KEY
                                          (add ?secure=false for plain HTTP)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := g.logger()
			if err != nil {
				return err
			}
			exportOpts, err := f.exportOptions()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			hdr, err := seqdist.Publish(cmd.Context(), f.checkpointDir, store, f.name, exportOpts,
				seqdist.WithLogger(logger))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "archive:     %s/%s\n", strings.TrimSuffix(args[0], "/"), f.name)
			fmt.Fprintf(w, "sequences:   %s\n", humanize.Comma(int64(hdr.N)))
			fmt.Fprintf(w, "measure:     %s\n", hdr.Description)
			fmt.Fprintf(w, "compression: %s, %d blocks of %s\n", hdr.Compression, hdr.Blocks, humanize.IBytes(uint64(hdr.BlockSize)))
			fmt.Fprintf(w, "crc32c:      %08x\n", hdr.Checksum)

			if !f.verify {
				return nil
			}
			if err := verifyArchive(cmd, store, f.name, hdr); err != nil {
				return &seqdist.Error{Kind: seqdist.KindOf(err), Op: "verify archive", Err: err}
			}
			fmt.Fprintln(w, "verified:    ok")
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.checkpointDir, "checkpointdir", "c", config.DefaultCheckpointDir, "Checkpoint directory of a finished run")
	fl.StringVar(&f.name, "name", defaultArchiveName, "Archive name inside the store")
	fl.StringVar(&f.compression, "compression", export.CompressionZSTD.String(), "Block compression: none, lz4 or zstd")
	fl.StringVar(&f.codec, "codec", codec.Default.Name(), "Header codec: "+strings.Join(codec.Names(), ", "))
	fl.StringVar(&f.blockSize, "block-size", "", "Raw block size, e.g. 256KiB (default "+humanize.IBytes(export.DefaultBlockSize)+")")
	fl.BoolVar(&f.verify, "verify", false, "Read the archive back and check it")
	return cmd
}

func verifyArchive(cmd *cobra.Command, store blobstore.BlobStore, name string, hdr *export.Header) error {
	a, err := export.Fetch(cmd.Context(), store, name)
	if err != nil {
		return err
	}
	if a.Header.N != hdr.N || a.Header.Checksum != hdr.Checksum || len(a.Values) != matrix.VecSize(hdr.N) {
		return fmt.Errorf("%w: read back n=%d crc32c=%08x", export.ErrCorrupt, a.Header.N, a.Header.Checksum)
	}
	return nil
}
