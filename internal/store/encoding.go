package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/eigerco/yeti/pkg/db"
)

var (
	ErrEncodingNotFound = errors.New("encoding not found")
	ErrDigestNotFound   = errors.New("sweep digest not found")
	ErrTableClosed      = errors.New("encoding table is closed")
)

// DefaultFlushEvery is the number of recorded encodings buffered before a batch commit
const DefaultFlushEvery = 4096

// EncodingTable persists the encoded form of scalar values, keyed so that
// iteration runs in ascending value order.
type EncodingTable struct {
	db         db.KVStore
	flushEvery int
	log        zerolog.Logger

	mu     sync.Mutex
	batch  db.Batch
	closed atomic.Bool
}

func NewEncodingTable(kv db.KVStore, flushEvery int, log zerolog.Logger) *EncodingTable {
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}
	return &EncodingTable{db: kv, flushEvery: flushEvery, log: log}
}

// Record queues the encoding of v, committing once flushEvery records are pending.
// It is safe for concurrent use.
func (t *EncodingTable) Record(v uint32, encoded []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed.Load() {
		return ErrTableClosed
	}

	if t.batch == nil {
		t.batch = t.db.NewBatch()
	}
	if err := t.batch.Put(encodingKey(v), encoded); err != nil {
		return fmt.Errorf("record %#x: %w", v, err)
	}
	if t.batch.Len() >= t.flushEvery {
		return t.commitLocked()
	}
	return nil
}

// Flush commits pending records
func (t *EncodingTable) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed.Load() {
		return ErrTableClosed
	}
	return t.commitLocked()
}

func (t *EncodingTable) commitLocked() error {
	if t.batch == nil {
		return nil
	}
	batch := t.batch
	t.batch = nil
	defer batch.Close() //nolint:errcheck

	n := batch.Len()
	if err := batch.Commit(); err != nil {
		return fmt.Errorf(ErrFailedBatchCommit, err)
	}
	t.log.Debug().Int("records", n).Msg("committed encodings")
	return nil
}

// Lookup returns the recorded encoding of v
func (t *EncodingTable) Lookup(v uint32) ([]byte, error) {
	if t.closed.Load() {
		return nil, ErrTableClosed
	}

	encoded, err := t.db.Get(encodingKey(v))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrEncodingNotFound
		}
		return nil, fmt.Errorf("get encoding %#x: %w", v, err)
	}
	return encoded, nil
}

// Scan calls fn for every recorded value in [from, to] in ascending order.
// Iteration stops at the first error returned by fn.
func (t *EncodingTable) Scan(from, to uint32, fn func(v uint32, encoded []byte) error) error {
	if t.closed.Load() {
		return ErrTableClosed
	}

	var end []byte
	if to == ^uint32(0) {
		end = []byte{prefixEncoding + 1}
	} else {
		end = encodingKey(to + 1)
	}

	iter, err := t.db.NewIterator(encodingKey(from), end)
	if err != nil {
		return fmt.Errorf("scan encodings: %w", err)
	}
	defer iter.Close() //nolint:errcheck

	for iter.Next() {
		encoded, err := iter.Value()
		if err != nil {
			return fmt.Errorf("scan encodings: %w", err)
		}
		if err := fn(binary.BigEndian.Uint32(iter.Key()[1:]), encoded); err != nil {
			return err
		}
	}
	return nil
}

// PutDigest stores the artifact digest of a sweep over [start, end]
func (t *EncodingTable) PutDigest(start, end uint32, digest []byte) error {
	if t.closed.Load() {
		return ErrTableClosed
	}
	return t.db.Put(digestKey(start, end), digest)
}

// Digest returns the digest stored by a previous sweep over the same range
func (t *EncodingTable) Digest(start, end uint32) ([]byte, error) {
	if t.closed.Load() {
		return nil, ErrTableClosed
	}

	digest, err := t.db.Get(digestKey(start, end))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrDigestNotFound
		}
		return nil, fmt.Errorf("get digest: %w", err)
	}
	return digest, nil
}

// Close commits pending records. The underlying store stays open.
func (t *EncodingTable) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	return t.commitLocked()
}

func encodingKey(v uint32) []byte {
	return makeKey(prefixEncoding, binary.BigEndian.AppendUint32(nil, v))
}

func digestKey(start, end uint32) []byte {
	rng := binary.BigEndian.AppendUint32(nil, start)
	return makeKey(prefixSweepDigest, binary.BigEndian.AppendUint32(rng, end))
}
