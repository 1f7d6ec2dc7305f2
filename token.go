package bnet

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Block is a payload attached to a token under a block-key. Blocks carry
// arbitrary structured data, the same shape produced by decoding JSON.
type Block = map[string]interface{}

// Token is a process-unique entity carrying a keyed set of payload blocks.
// Two tokens with identical payloads are still distinct: equality is
// identity, never value, which is why Token is always passed and stored by
// pointer.
type Token struct {
	id           string
	blocks       map[string]Block
	currentPlace string
}

// NewToken creates a token with no blocks and a fresh identity.
func NewToken() *Token {
	return &Token{id: uuid.NewString(), blocks: make(map[string]Block)}
}

func (t *Token) ID() string { return t.id }

// CurrentPlace is informational only, updated by Place.Insert; the engine
// never routes on it.
func (t *Token) CurrentPlace() string { return t.currentPlace }

func (t *Token) setCurrentPlace(id string) { t.currentPlace = id }

func (t *Token) HasBlock(key string) bool {
	_, ok := t.blocks[key]
	return ok
}

func (t *Token) GetBlock(key string) (Block, bool) {
	b, ok := t.blocks[key]
	return b, ok
}

// AddBlock attaches a block under key, failing if the key is already present.
func (t *Token) AddBlock(key string, value Block) error {
	if t.HasBlock(key) {
		return fmt.Errorf("%w: token %s already has block %q", ErrRuntimeFault, t.id, key)
	}
	t.blocks[key] = value
	return nil
}

// MergeBlocks copies other's blocks into t, failing without partial effect
// if any key would collide.
func (t *Token) MergeBlocks(other *Token) error {
	for k := range other.blocks {
		if t.HasBlock(k) {
			return fmt.Errorf("%w: merge would duplicate block %q", ErrLogicInvariant, k)
		}
	}
	for k, v := range other.blocks {
		t.blocks[k] = v
	}
	return nil
}

// FilterBlocks retains only the blocks whose key satisfies keep.
func (t *Token) FilterBlocks(keep func(key string) bool) {
	for k := range t.blocks {
		if !keep(k) {
			delete(t.blocks, k)
		}
	}
}

// Clone returns a token sharing this one's identity and a shallow copy of
// its blocks, used when projecting onto a filtered output arc.
func (t *Token) Clone() *Token {
	nb := make(map[string]Block, len(t.blocks))
	for k, v := range t.blocks {
		nb[k] = v
	}
	return &Token{id: t.id, blocks: nb, currentPlace: t.currentPlace}
}

// Lookup resolves a dot-separated path against the token's blocks: the
// first segment names a block, the remaining segments index into that
// block's structured value. Used by ConfigParameter's @token{...} syntax.
func (t *Token) Lookup(path string) (interface{}, bool) {
	segs := strings.Split(path, ".")
	if len(segs) == 0 || segs[0] == "" {
		return nil, false
	}
	block, ok := t.blocks[segs[0]]
	if !ok {
		return nil, false
	}
	var cur interface{} = block
	for _, seg := range segs[1:] {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}
