package main

import (
	"fmt"
	"os"

	"github.com/kjorgensen/hyperband"
	"github.com/kjorgensen/hyperband/header"
)

// dataset pairs an open *hyperband.Image with the os.File backing it and the
// ENVI DataType it was opened as, so the caller can Close both in the right
// order once done and can tell whether img carries float32 elements (the
// only kind the statistics/PCA/render commands accept) or another DataType
// moved only as raw bytes by convert/crop (SPEC_FULL.md §3).
type dataset struct {
	img      *hyperband.Image
	file     *os.File
	dataType hyperband.DataType
}

// requireFloat32 rejects datasets opened under any DataType other than
// float32, for commands that do arithmetic on the element (pca, color).
func (d *dataset) requireFloat32(cmdName string) error {
	if d.dataType != hyperband.DataFloat32 {
		return fmt.Errorf("%s requires a float32 (data type 4) dataset, got data type %d", cmdName, int(d.dataType))
	}
	return nil
}

func (d *dataset) Close() error {
	if d == nil {
		return nil
	}
	err := d.img.Store.Close()
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// openDataset reads headerPath's ENVI header, opens dataPath read-only under
// backend, and validates the two agree.
func openDataset(dataPath, headerPath string, backend hyperband.Backend) (*dataset, error) {
	hf, err := os.Open(headerPath)
	if err != nil {
		return nil, fmt.Errorf("opening header %s: %w", headerPath, err)
	}
	defer hf.Close()
	rec, err := header.Parse(hf)
	if err != nil {
		return nil, &hyperband.Error{Kind: hyperband.KindInvalidHeader, Message: "parsing header " + headerPath, Cause: err}
	}
	dt, err := hyperband.ParseDataType(rec.DataType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", headerPath, err)
	}
	if rec.ByteOrder != 0 {
		return nil, fmt.Errorf("%s: only little-endian (byte order 0) datasets are supported", headerPath)
	}
	iv, err := hyperband.ParseInterleave(rec.Interleave)
	if err != nil {
		return nil, err
	}
	dims := hyperband.ImageDims{Lines: rec.Lines, Samples: rec.Samples, Bands: rec.Bands}
	elemWidth := dt.ElemWidth()

	df, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("opening data file %s: %w", dataPath, err)
	}
	store, err := hyperband.OpenRead(backend, df, rec.HeaderOffset, dims.ByteSize(elemWidth))
	if err != nil {
		df.Close()
		return nil, err
	}
	var img *hyperband.Image
	if dt == hyperband.DataFloat32 {
		img, err = hyperband.NewImage(store, dims, iv)
	} else {
		img, err = hyperband.NewRawImage(store, dims, iv, elemWidth)
	}
	if err != nil {
		store.Close()
		df.Close()
		return nil, err
	}
	return &dataset{img: img, file: df, dataType: dt}, nil
}

// createDataset writes a header file to headerPath and opens a new
// read-write data file at dataPath, sized for dims under iv and dt. pca run,
// which only ever produces float32 output, passes hyperband.DataFloat32.
func createDataset(dataPath, headerPath string, dims hyperband.ImageDims, iv hyperband.Interleave, dt hyperband.DataType, backend hyperband.Backend) (*dataset, error) {
	hf, err := os.Create(headerPath)
	if err != nil {
		return nil, fmt.Errorf("creating header %s: %w", headerPath, err)
	}
	rec := header.Record{
		Lines: dims.Lines, Samples: dims.Samples, Bands: dims.Bands,
		Interleave: iv.String(),
		DataType:   int(dt),
		FileType:   "ENVI Standard",
		Description: "hyperband output",
	}
	werr := header.Write(hf, rec)
	if cerr := hf.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return nil, werr
	}

	elemWidth := dt.ElemWidth()
	df, err := os.Create(dataPath)
	if err != nil {
		return nil, fmt.Errorf("creating data file %s: %w", dataPath, err)
	}
	store, err := hyperband.OpenWrite(backend, df, 0, dims.ByteSize(elemWidth))
	if err != nil {
		df.Close()
		return nil, err
	}
	var img *hyperband.Image
	if dt == hyperband.DataFloat32 {
		img, err = hyperband.NewImage(store, dims, iv)
	} else {
		img, err = hyperband.NewRawImage(store, dims, iv, elemWidth)
	}
	if err != nil {
		store.Close()
		df.Close()
		return nil, err
	}
	return &dataset{img: img, file: df, dataType: dt}, nil
}

func parseBackend(s string) (hyperband.Backend, error) {
	switch s {
	case "mapped":
		return hyperband.BackendMapped, nil
	case "streamed":
		return hyperband.BackendStreamed, nil
	default:
		return 0, fmt.Errorf("unknown backend %q (want mapped or streamed)", s)
	}
}

func parseInterleave(s string) (hyperband.Interleave, error) {
	return hyperband.ParseInterleave(s)
}
