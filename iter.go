package hyperband

// MaxChunkBytes is the build-time default chunk-size budget (spec.md §4.3).
// It is a package-level var, not a const, so the CLI can override it with a
// flag; it is never read from an environment variable (spec.md §6/§9).
var MaxChunkBytes int64 = 2 << 20 // 2 MiB

// BandIter lazily yields the L*S elements of one band, in raster order
// (l ascending, then s ascending), regardless of interleave.
type BandIter struct {
	img      *Image
	band     int
	l, s     int
	lines, samples int
}

// Band returns a fresh, single-pass iterator over band b's L*S elements.
func (img *Image) Band(b int) *BandIter {
	return &BandIter{img: img, band: b, lines: img.Index.Dims.Lines, samples: img.Index.Dims.Samples}
}

// Next returns the next element and true, or (0, false) once exhausted.
func (it *BandIter) Next() (float32, bool) {
	if it.l >= it.lines {
		return 0, false
	}
	v := it.img.At(it.l, it.s, it.band)
	it.s++
	if it.s >= it.samples {
		it.s = 0
		it.l++
	}
	return v, true
}

// BandSeq lazily yields the image's B band iterators in band order.
type BandSeq struct {
	img  *Image
	next int
	b    int
}

// Bands returns a fresh sequence over the image's band iterators.
func (img *Image) Bands() *BandSeq { return &BandSeq{img: img, b: img.Index.Dims.Bands} }

// Next returns the next BandIter and true, or (nil, false) once exhausted.
func (bs *BandSeq) Next() (*BandIter, bool) {
	if bs.next >= bs.b {
		return nil, false
	}
	it := bs.img.Band(bs.next)
	bs.next++
	return it, true
}

// SampleIter lazily yields one pixel's B channels in band order.
type SampleIter struct {
	img    *Image
	l, s   int
	band   int
	bands  int
}

// Sample returns a fresh iterator over sample (pixel) index j's channels,
// where j = l*Samples + s.
func (img *Image) Sample(j int) *SampleIter {
	S := img.Index.Dims.Samples
	return &SampleIter{img: img, l: j / S, s: j % S, bands: img.Index.Dims.Bands}
}

// Next returns the next channel value and true, or (0, false) once
// exhausted.
func (it *SampleIter) Next() (float32, bool) {
	if it.band >= it.bands {
		return 0, false
	}
	v := it.img.At(it.l, it.s, it.band)
	it.band++
	return v, true
}

// SampleSeq lazily yields the image's L*S sample iterators, one per pixel,
// in raster order.
type SampleSeq struct {
	img       *Image
	next, n   int
}

// Samples returns a fresh sequence over the image's L*S sample iterators.
func (img *Image) Samples() *SampleSeq {
	d := img.Index.Dims
	return &SampleSeq{img: img, n: d.Lines * d.Samples}
}

// Next returns the next SampleIter and true, or (nil, false) once
// exhausted.
func (ss *SampleSeq) Next() (*SampleIter, bool) {
	if ss.next >= ss.n {
		return nil, false
	}
	it := ss.img.Sample(ss.next)
	ss.next++
	return it, true
}

// ChunkSeq lazily yields samples_chunked()'s fixed-size Batches: the
// reducer's I/O buffer granularity and unit of work-stealing (spec.md
// §4.3). The final chunk may be shorter.
type ChunkSeq struct {
	img       *Image
	chunk     int
	next, n   int
}

// SamplesChunked returns a fresh sequence of Batches sized by the chunk
// policy in spec.md §4.3, clamped to the image's total sample count.
func (img *Image) SamplesChunked() *ChunkSeq {
	d := img.Index.Dims
	total := d.Lines * d.Samples
	return &ChunkSeq{
		img:   img,
		chunk: chunkSize(total, d.Bands, 4, MaxChunkBytes),
		n:     total,
	}
}

// Next returns the next Batch and true, or (nil, false) once exhausted.
func (cs *ChunkSeq) Next() (*Batch, error, bool) {
	if cs.next >= cs.n {
		return nil, nil, false
	}
	rows := cs.chunk
	if cs.next+rows > cs.n {
		rows = cs.n - cs.next
	}
	b, err := gatherBatch(cs.img.Store, cs.img.Index, cs.next, rows)
	cs.next += rows
	return b, err, true
}
