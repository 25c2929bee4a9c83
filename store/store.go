// Package store persists the wheel's records. Every record lives at a key
// derived from fixed seeds (singletons) or from its owner (per-player
// records), and all writes of one operation land in a single atomic batch.
package store

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
)

var ErrNotFound = errors.New("store: record not found")

// Seeds of the singleton records and vault authorities.
const (
	SeedTreasury    = "TREASURY_CONFIG"
	SeedAdmins      = "ADMIN_LIST_SEED"
	SeedCatalog     = "REWARD_CATALOG"
	SeedRecentPlays = "LAST_USERS_SEED"
	SeedEscrowVault = "ESCROW_VAULT_AUTH"
	SeedNativeVault = "NATIVE_VAULT"

	seedProgress = "USER_STATE_SEED"
	seedClaim    = "USER_PENDING_CLAIM"
)

// Key addresses one record.
type Key [32]byte

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// DeriveKey hashes seed and parts into a key. Parts are length-prefixed so
// distinct part lists never collide.
func DeriveKey(seed string, parts ...[]byte) Key {
	h := blake3.New(32, nil)
	var n [8]byte
	for _, p := range append([][]byte{[]byte(seed)}, parts...) {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

// SingletonKey addresses a record that exists once per deployment.
func SingletonKey(seed string) Key { return DeriveKey(seed) }

// ProgressKey addresses a player's round counter.
func ProgressKey(owner ledger.Identity) Key {
	return DeriveKey(seedProgress, []byte(owner))
}

// ClaimKey addresses the pending claim of owner's round roundID.
func ClaimKey(owner ledger.Identity, roundID uint64) Key {
	var r [8]byte
	binary.LittleEndian.PutUint64(r[:], roundID)
	return DeriveKey(seedClaim, r[:], []byte(owner))
}

// VaultIdentity is the ledger identity of a program-held vault. Only the
// engine uses it as a transfer authority.
func VaultIdentity(seed string) ledger.Identity {
	k := DeriveKey(seed)
	return ledger.Identity("vault:" + hex.EncodeToString(k[:16]))
}

// Store is a key-value record store with atomic batch commits.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Commit(ctx context.Context, b *Batch) error
	Close() error
}

type op struct {
	key    Key
	value  []byte
	delete bool
}

// Batch is an ordered list of writes applied together by Commit.
type Batch struct {
	ops []op
}

// Put stages v, JSON-encoded, at key.
func (b *Batch) Put(key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	b.ops = append(b.ops, op{key: key, value: data})
	return nil
}

// Delete stages removal of key.
func (b *Batch) Delete(key Key) {
	b.ops = append(b.ops, op{key: key, delete: true})
}

func (b *Batch) Len() int { return len(b.ops) }

// Load decodes the record at key into v. It reports false if the record does
// not exist.
func Load(ctx context.Context, s Store, key Key, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return true, nil
}
