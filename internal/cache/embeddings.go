package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math"

	"github.com/dgraph-io/badger/v4"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/agenthands/factcheck/internal/provider"
)

const keyPrefix = "emb:"

// EmbeddingCache is a provider.Embedder that serves previously seen texts
// from badger and forwards only the misses, in one batch, to the wrapped
// embedder. Cache failures degrade to a miss; they never fail a request.
type EmbeddingCache struct {
	inner     provider.Embedder
	db        *badger.DB
	namespace string
}

// NewEmbeddingCache scopes keys by namespace, typically the embedding model
// name, so vectors from different models never mix.
func NewEmbeddingCache(inner provider.Embedder, db *badger.DB, namespace string) *EmbeddingCache {
	return &EmbeddingCache{inner: inner, db: db, namespace: namespace}
}

func (c *EmbeddingCache) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([][]byte, len(texts))
	for i, t := range texts {
		keys[i] = c.key(t)
	}

	err := c.db.View(func(txn *badger.Txn) error {
		for i, k := range keys {
			item, err := txn.Get(k)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if vec, ok := decode(raw); ok {
				out[i] = vec
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("cache: read failed, embedding everything", zap.Error(err))
		clear(out)
	}

	// Identical texts within one call are embedded once.
	var misses []string
	slots := make(map[string][]int)
	for i, t := range texts {
		if out[i] != nil {
			continue
		}
		if _, seen := slots[t]; !seen {
			misses = append(misses, t)
		}
		slots[t] = append(slots[t], i)
	}
	if len(misses) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Embed(ctx, misses)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(misses) {
		return nil, eris.Errorf("cache: embedder returned %d vectors for %d texts", len(vecs), len(misses))
	}

	for i, t := range misses {
		for _, slot := range slots[t] {
			out[slot] = vecs[i]
		}
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		for i, t := range misses {
			if err := txn.Set(c.key(t), encode(vecs[i])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("cache: write failed", zap.Error(err))
	}
	return out, nil
}

func (c *EmbeddingCache) key(text string) []byte {
	h := sha256.New()
	h.Write([]byte(c.namespace))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return h.Sum([]byte(keyPrefix))
}

func encode(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decode(raw []byte) ([]float32, bool) {
	if len(raw)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return vec, true
}
