package seqdist

import (
	"context"
	"fmt"

	"github.com/hupe1980/seqdist/blobstore"
	"github.com/hupe1980/seqdist/config"
	"github.com/hupe1980/seqdist/distance"
	"github.com/hupe1980/seqdist/export"
	"github.com/hupe1980/seqdist/matrix"
)

// Publish archives the finished run recorded in checkpointDir into store
// under name. Record IDs are read from the run's FASTA file.
func Publish(ctx context.Context, checkpointDir string, store blobstore.BlobStore, name string, exportOpts []export.Option, optFns ...Option) (*export.Header, error) {
	o := newOptions(optFns...)

	st, err := ReadStatus(checkpointDir, optFns...)
	if err != nil {
		return nil, err
	}
	if !st.Complete() {
		return nil, translateError("publish", fmt.Errorf("%w: %d of %d rows done",
			ErrIncomplete, st.Done.GetCardinality(), st.N))
	}

	recs, err := o.loader(st.Options.Fasta)
	if err != nil {
		return nil, translateError("load sequences", err)
	}
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}

	desc, err := describe(&st.Options, o)
	if err != nil {
		return nil, err
	}

	m, err := matrix.OpenReadOnly(st.Options.DistMatFile)
	if err != nil {
		return nil, translateError("open matrix", err)
	}
	defer m.Close()

	hdr, err := export.Publish(ctx, store, name, m, ids, desc, exportOpts...)
	if err != nil {
		return nil, translateError("publish", err)
	}
	o.logger.InfoContext(ctx, "archive published",
		"name", name,
		"sequences", hdr.N,
		"compression", hdr.Compression,
		"blocks", hdr.Blocks,
	)
	return hdr, nil
}

func describe(opts *config.Options, o options) (string, error) {
	meas, err := distance.New(distance.Config{
		Name: opts.Measure,
		Sub:  opts.SubMeasure,
		Opt:  opts.MeasureOpt,
	}, distance.WithLogger(o.logger.Logger))
	if err != nil {
		return "", translateError("build measure", err)
	}
	return meas.Describe(), nil
}
