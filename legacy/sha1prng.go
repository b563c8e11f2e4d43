package legacy

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

const AlgorithmSHA1PRNG = "SHA1PRNG"

// sha1PRNG expands a seed by hashing it with a running counter. Output is
// buffered one digest at a time.
type sha1PRNG struct {
	mu      sync.Mutex
	entropy io.Reader
	seed    []byte
	counter uint64
	buffer  []byte
}

func newSHA1PRNG(entropy io.Reader) *sha1PRNG {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &sha1PRNG{entropy: entropy}
}

// Seed mixes extra material into the state. Seeding before the first read
// replaces self-seeding.
func (r *sha1PRNG) Seed(material []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := sha1.Sum(append(append([]byte(nil), r.seed...), material...))
	r.seed = sum[:]
	r.buffer = nil
}

func (r *sha1PRNG) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seed == nil {
		seed := make([]byte, sha1.Size)
		if _, err := io.ReadFull(r.entropy, seed); err != nil {
			return 0, fmt.Errorf("legacy: %s seeding failed: %w", AlgorithmSHA1PRNG, err)
		}
		r.seed = seed
	}
	written := 0
	for written < len(p) {
		if len(r.buffer) == 0 {
			r.buffer = r.nextBlock()
		}
		n := copy(p[written:], r.buffer)
		r.buffer = r.buffer[n:]
		written += n
	}
	return written, nil
}

func (r *sha1PRNG) Algorithm() string {
	return AlgorithmSHA1PRNG
}

func (r *sha1PRNG) nextBlock() []byte {
	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], r.counter)
	r.counter++
	h := sha1.New()
	h.Write(r.seed)
	h.Write(counter[:])
	return h.Sum(nil)
}
