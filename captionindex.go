package imago

import (
	"container/heap"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/RoaringBitmap/roaring"
	"github.com/clipperhouse/uax29/v2/words"
	unicodenorm "golang.org/x/text/unicode/norm"
)

// CaptionIndex is a BM25 full-text index over per-image caption strings, a
// second retrieval modality alongside the visual bag-of-words pipeline
// (§10.3, §10.5 "Caption Index"). It stores only tokens and document ids —
// callers keep their own mapping from document id back to original caption
// text. All methods are safe for concurrent use: mu guards every field
// below it.
//
// BM25 parameters (Robertson & Zaragoza) are the same bm25K1/bm25B constants
// the visual bm25TF/bm25IDF plug-ins use (tfidf.go): K1 controls term-
// frequency saturation, B controls document-length normalization.
type CaptionIndex struct {
	mu sync.RWMutex

	postings   map[string]*roaring.Bitmap
	tf         map[string]map[int]int
	docLengths map[int]int
	docTokens  map[int][]string

	numDocs     int
	totalTokens int
	avgDocLen   float64
}

// NewCaptionIndex returns an empty caption index.
func NewCaptionIndex() *CaptionIndex {
	return &CaptionIndex{
		postings:   make(map[string]*roaring.Bitmap),
		tf:         make(map[string]map[int]int),
		docLengths: make(map[int]int),
		docTokens:  make(map[int][]string),
	}
}

// normalizeCaption applies NFKC normalization and lowercasing before
// tokenization, so case variants and compatibility forms (full-width
// letters, ligatures) of a word collide. Accents are kept: "café" and
// "cafe" remain distinct terms.
func normalizeCaption(s string) string {
	return strings.ToLower(unicodenorm.NFKC.String(s))
}

// tokenizeCaption splits normalized text into words using UAX#29 word
// segmentation. Segments with no letter or digit (whitespace, punctuation)
// are dropped.
func tokenizeCaption(s string) []string {
	toks := words.FromString(s)
	var tokens []string
	for toks.Next() {
		tok := toks.Value()
		if strings.IndexFunc(tok, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) < 0 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Index adds or replaces the caption for document id.
func (ix *CaptionIndex) Index(id int, caption string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.docTokens[id]; exists {
		ix.remove(id)
	}

	tokens := tokenizeCaption(normalizeCaption(caption))
	docLen := len(tokens)

	ix.docTokens[id] = tokens
	ix.docLengths[id] = docLen
	ix.numDocs++
	ix.totalTokens += docLen

	for _, term := range tokens {
		if ix.postings[term] == nil {
			ix.postings[term] = roaring.New()
		}
		ix.postings[term].Add(uint32(id))
		if ix.tf[term] == nil {
			ix.tf[term] = make(map[int]int)
		}
		ix.tf[term][id]++
	}

	ix.updateAvgDocLen()
}

// Remove deletes document id's caption from the index, if present.
func (ix *CaptionIndex) Remove(id int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.remove(id)
}

// remove deletes id without locking; callers must hold ix.mu.
func (ix *CaptionIndex) remove(id int) {
	tokens, exists := ix.docTokens[id]
	if !exists {
		return
	}

	docLen := ix.docLengths[id]
	for _, term := range tokens {
		if bitmap := ix.postings[term]; bitmap != nil {
			bitmap.Remove(uint32(id))
			if bitmap.IsEmpty() {
				delete(ix.postings, term)
			}
		}
		if tfMap := ix.tf[term]; tfMap != nil {
			delete(tfMap, id)
			if len(tfMap) == 0 {
				delete(ix.tf, term)
			}
		}
	}

	delete(ix.docTokens, id)
	delete(ix.docLengths, id)
	ix.numDocs--
	ix.totalTokens -= docLen

	if ix.numDocs > 0 {
		ix.updateAvgDocLen()
	} else {
		ix.avgDocLen = 0
		ix.totalTokens = 0
	}
}

func (ix *CaptionIndex) updateAvgDocLen() {
	if ix.numDocs == 0 {
		ix.avgDocLen = 0
		return
	}
	ix.avgDocLen = float64(ix.totalTokens) / float64(ix.numDocs)
}

// Search answers a free-text query with up to r results ranked by BM25
// score, descending. Query text is tokenized the same way as indexed text.
func (ix *CaptionIndex) Search(query string, r int) []QueryResult {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	queryTokens := tokenizeCaption(normalizeCaption(query))
	if len(queryTokens) == 0 || ix.numDocs == 0 {
		return nil
	}

	scores := make(map[int]float64)
	n := float64(ix.numDocs)

	for _, term := range queryTokens {
		bitmap, ok := ix.postings[term]
		if !ok {
			continue
		}
		tfMap := ix.tf[term]
		df := float64(bitmap.GetCardinality())
		idf := math.Log((n-df+0.5)/(df+0.5) + 1.0)

		it := bitmap.Iterator()
		for it.HasNext() {
			doc := int(it.Next())
			tf := float64(tfMap[doc])
			docLen := float64(ix.docLengths[doc])
			score := idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*(1-bm25B+bm25B*(docLen/ix.avgDocLen)))
			scores[doc] += score
		}
	}

	k := sanitizeK(r, ix.numDocs)
	if k == 0 {
		return nil
	}

	h := make(scoreHeap, 0, k)
	heap.Init(&h)
	for doc, score := range scores {
		heap.Push(&h, QueryResult{DocID: doc, Score: score})
		if h.Len() > k {
			heap.Pop(&h)
		}
	}

	results := make([]QueryResult, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(&h).(QueryResult)
	}
	return results
}

// Len returns the number of indexed documents.
func (ix *CaptionIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.numDocs
}
