package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skycourier/internal/pkg/errs"
	"skycourier/internal/pkg/keylock"
)

// DefaultTTL is how long a recorded response stays replayable.
const DefaultTTL = 24 * time.Hour

// ErrDuplicateKey is returned by Store.Insert when a record with the same
// (scope, key) already exists. The ledger resolves the race by re-reading the
// winner.
var ErrDuplicateKey = errors.New("idempotency record already exists")

// Record is one completed execution remembered by the ledger.
type Record struct {
	Scope       string
	Key         string
	RequestHash string
	Response    []byte
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the record is past its TTL at the given instant.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store persists idempotency records. Find returns errs.ErrObjectNotFound
// when no record exists for the pair; Insert returns ErrDuplicateKey when a
// concurrent writer got there first.
type Store interface {
	Find(ctx context.Context, scope, key string) (Record, error)
	Insert(ctx context.Context, record Record) error
	Delete(ctx context.Context, scope, key string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Result is what Execute hands back: the response bytes and whether they
// came from a stored record rather than a fresh run.
type Result struct {
	Response []byte
	Replayed bool
}

// Ledger makes command execution idempotent per (scope, key). The first
// request with a given key runs the operation and records its response;
// later requests with the same key and an identical payload get the recorded
// response back verbatim; the same key with a different payload is a
// conflict.
//
// Concurrent first arrivals for one key serialize on a per-key latch, so the
// operation runs at most once per key even under races; a lost Insert race
// against another process resolves by re-reading the winner's record.
type Ledger struct {
	store Store
	ttl   time.Duration
	locks *keylock.KeyLock
}

// NewLedger creates a Ledger over the given store. ttl <= 0 selects
// DefaultTTL.
func NewLedger(store Store, ttl time.Duration) (*Ledger, error) {
	if store == nil {
		return nil, errs.NewValueIsRequiredError("store")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ledger{
		store: store,
		ttl:   ttl,
		locks: keylock.New(),
	}, nil
}

// BuildScope derives the ledger scope for a route and actor, optionally
// narrowed to one order.
func BuildScope(route, userID string, orderID string) string {
	scope := fmt.Sprintf("%s:user=%s", route, userID)
	if orderID != "" {
		scope += ":order=" + orderID
	}
	return scope
}

// HashPayload computes the canonical request hash: sha256 over JSON with
// sorted keys. Two payloads that differ only in map ordering hash the same.
func HashPayload(payload any) (string, error) {
	canonical, err := canonicalJSON(payload)
	if err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause("payload", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Execute runs fn at most once per (scope, key). A replay returns the stored
// response with Replayed set; a payload mismatch returns
// errs.ErrIdempotencyKeyConflict. When key is empty the operation runs
// unconditionally and nothing is recorded.
func (l *Ledger) Execute(
	ctx context.Context,
	scope, key string,
	payload any,
	fn func(ctx context.Context) ([]byte, error),
) (Result, error) {
	if key == "" {
		response, err := fn(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Response: response}, nil
	}
	if scope == "" {
		return Result{}, errs.NewValueIsRequiredError("scope")
	}

	requestHash, err := HashPayload(payload)
	if err != nil {
		return Result{}, err
	}

	var result Result
	lockErr := l.locks.WithLock(scope+"\x00"+key, func() error {
		result, err = l.execute(ctx, scope, key, requestHash, fn)
		return err
	})
	return result, lockErr
}

func (l *Ledger) execute(
	ctx context.Context,
	scope, key, requestHash string,
	fn func(ctx context.Context) ([]byte, error),
) (Result, error) {
	now := time.Now().UTC()

	record, err := l.store.Find(ctx, scope, key)
	switch {
	case err == nil && record.Expired(now):
		// expired records count as absent
		if err := l.store.Delete(ctx, scope, key); err != nil {
			return Result{}, err
		}
	case err == nil:
		if record.RequestHash != requestHash {
			return Result{}, errs.NewIdempotencyKeyConflictError(scope, key)
		}
		return Result{Response: record.Response, Replayed: true}, nil
	case !errors.Is(err, errs.ErrObjectNotFound):
		return Result{}, err
	}

	response, err := fn(ctx)
	if err != nil {
		return Result{}, err
	}

	insertErr := l.store.Insert(ctx, Record{
		Scope:       scope,
		Key:         key,
		RequestHash: requestHash,
		Response:    response,
		CreatedAt:   now,
		ExpiresAt:   now.Add(l.ttl),
	})
	if errors.Is(insertErr, ErrDuplicateKey) {
		// another process recorded first; hand back its response instead
		winner, findErr := l.store.Find(ctx, scope, key)
		if findErr != nil {
			return Result{}, findErr
		}
		if winner.RequestHash != requestHash {
			return Result{}, errs.NewIdempotencyKeyConflictError(scope, key)
		}
		return Result{Response: winner.Response, Replayed: true}, nil
	}
	if insertErr != nil {
		return Result{}, insertErr
	}

	return Result{Response: response}, nil
}

// PurgeExpired removes records past their TTL. The dispatch worker calls it
// opportunistically.
func (l *Ledger) PurgeExpired(ctx context.Context) (int64, error) {
	return l.store.DeleteExpired(ctx, time.Now().UTC())
}

func canonicalJSON(payload any) ([]byte, error) {
	// encoding/json already sorts map keys, but structs marshal in field
	// order; round-tripping through a generic value canonicalizes both.
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}
