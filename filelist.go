package imago

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
)

// FileList is an ordered list of image paths relative to a root directory
// (§4.B). It is the input to the parallel descriptor driver (§4.D) and is
// itself persisted through the property store as a sequence-of-string
// stream.
type FileList struct {
	root  string
	paths []string // relative to root
}

// NewFileList returns an empty file list rooted at root.
func NewFileList(root string) *FileList {
	return &FileList{root: root}
}

// SetRoot validates that dir exists and sets it as the list's root.
func (fl *FileList) SetRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrEmptyRoot, dir)
	}
	fl.root = dir
	return nil
}

// Root returns the configured root directory.
func (fl *FileList) Root() string { return fl.root }

// Len returns the number of entries.
func (fl *FileList) Len() int { return len(fl.paths) }

// Filename returns the absolute path to the image at index i.
func (fl *FileList) Filename(i int) string {
	return filepath.Join(fl.root, fl.paths[i])
}

// RelPath returns the path at index i, relative to the root.
func (fl *FileList) RelPath(i int) string { return fl.paths[i] }

// Add appends a relative path.
func (fl *FileList) Add(relPath string) { fl.paths = append(fl.paths, relPath) }

// ScanDir recursively walks the root directory, appending every file whose
// base name matches at least one of the given glob patterns, in the order
// filepath.WalkDir visits them (lexical per directory). Paths are stored
// relative to the root (§10.5, grounded on filelist.cpp lookup_dir).
func (fl *FileList) ScanDir(patterns []string) error {
	return filepath.WalkDir(fl.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matched := len(patterns) == 0
		for _, pat := range patterns {
			if ok, _ := filepath.Match(pat, d.Name()); ok {
				matched = true
				break
			}
		}
		if !matched {
			return nil
		}
		rel, err := filepath.Rel(fl.root, path)
		if err != nil {
			return err
		}
		fl.paths = append(fl.paths, rel)
		return nil
	})
}

// RandomSample returns a new FileList containing a uniform random subsample
// of size min(k, Len()), seeded explicitly, with relative order preserved:
// shuffle-and-truncate, then sort the surviving indices back to ascending
// order (§4.B, §8 "File-list sampling", grounded on filelist.cpp
// random_sample — the only difference from the source is the explicit seed
// argument instead of wall-clock, per §10.7).
func (fl *FileList) RandomSample(k int, seed int64) *FileList {
	if k >= len(fl.paths) {
		out := &FileList{root: fl.root, paths: append([]string{}, fl.paths...)}
		return out
	}
	idx := make([]int, len(fl.paths))
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	idx = idx[:k]
	sort.Ints(idx)

	paths := make([]string, k)
	for i, j := range idx {
		paths[i] = fl.paths[j]
	}
	return &FileList{root: fl.root, paths: paths}
}

// Save writes the file list (paths, not the root) as a sequence-of-string
// property stream (§4.B).
func (fl *FileList) Save(w interface{ Write([]byte) (int, error) }) error {
	sw := NewWriter[[]string](w, "sequence<string>", encodeStringSlice)
	if err := sw.Push(fl.paths); err != nil {
		return err
	}
	return sw.Close(encodingF32)
}

// LoadFileList reads a file list previously written by Save.
func LoadFileList(data []byte, root string) (*FileList, error) {
	r := bytes.NewReader(data)
	sr, err := OpenReader[[]string](r, int64(len(data)), "sequence<string>", decodeStringSlice)
	if err != nil {
		return nil, err
	}
	if sr.Len() == 0 {
		return &FileList{root: root}, nil
	}
	paths, ok, err := sr.Get(0)
	if err != nil {
		return nil, err
	}
	if !ok {
		paths = nil
	}
	return &FileList{root: root, paths: paths}, nil
}
