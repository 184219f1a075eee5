/*
Package imago implements a bag-of-visual-words image retrieval engine.

Given a corpus of images, imago extracts fixed- or variable-length
descriptors per image (a global Gabor-bank "GIST" vector, a local
gradient-orientation histogram "SHOG" per keypoint, or a tiny-thumbnail
color vector), learns a visual vocabulary by clustering a sample of local
features, quantizes every local feature against that vocabulary into a
weighted histogram of visual words, builds a tf-idf inverted index over
those histograms, and answers nearest-neighbor queries against either the
inverted index or a plain feature store.

# Overview

The pipeline has five coupled pieces:

  - Descriptor generators (tinyimage.go, gist.go, shog.go) compute a
    per-image descriptor bundle from an already-decoded raster.
  - The parallel driver (driver.go) dispatches a file list across a worker
    pool and writes each generator's outputs back in strict input order,
    regardless of completion order.
  - The vocabulary learner (vocabulary.go) runs k-means over a sample of
    local features to produce a codebook.
  - The quantizer (quantizer.go) assigns feature vectors to codebook words
    — hard or Gaussian-weighted fuzzy — and assembles per-image
    histograms, optionally binned into a spatial pyramid.
  - The inverted index and query engine (invertedindex.go, queryengine.go)
    build a tf-idf-weighted posting-list index over histograms and answer
    top-K nearest-neighbor queries against it; linearsearch.go answers the
    same kind of query by brute force over a plain feature store.

File lists, descriptor streams and vocabularies are stored through the
property store (property_store.go), a length-prefixed, offset-indexed
binary format with an append-only writer and a random-access reader.
Inverted indexes use their own flat binary format (invertedindex_io.go).

# Quick start

	gen, _ := imago.NewGenerator("shog", imago.NewConfig())
	files := imago.NewFileList("/corpus")
	_ = files.ScanDir([]string{"*.jpg"})

	driver := imago.NewDriver(gen, files, decode, sinks, 0)
	if err := driver.Run(); err != nil {
	    log.Fatal(err)
	}

	vocab, _ := imago.LearnVocabulary(samples, imago.VocabularyParams{K: 256})
	q := imago.NewHardQuantizer(vocab)

	idx := imago.NewInvertedIndex(256)
	for _, h := range histograms {
	    idx.AddHistogram(h)
	}
	if err := idx.Finalize(idx, "constant", "constant"); err != nil {
	    log.Fatal(err)
	}
	results, _ := idx.Query(queryHistogram, 10)

# Out of scope

Command-line front-ends, configuration-file parsing beyond an in-memory
key/value tree, and image decoding are external-collaborator territory:
generators take an already-decoded raster, the driver takes a caller-supplied
Decoder, and persistence functions take an already-open io.Writer,
io.Reader or io.ReaderAt (or, for file lists, the encoded bytes). See DESIGN.md for the full ledger of what is
implemented here versus left to a caller.

# License

MIT License.
*/
package imago
