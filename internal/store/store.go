package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pnw_raid_finder/internal/app"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

const (
	nationBatchPrefix = "nations:"
	pricesKey         = "prices:latest"
)

// envelope wraps a persisted payload with its write timestamp so callers
// can apply their own TTL on load.
type envelope struct {
	StoredAt time.Time       `json:"stored_at"`
	Payload  json.RawMessage `json:"payload"`
}

// Store persists API snapshots in a local badger database so restarts
// within a cache window reuse the last fetch.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the snapshot database at dir
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	opts.NumVersionsToKeep = 1
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store at %s: %w", dir, err)
	}

	log.Debug().Str("dir", dir).Msg("Opened snapshot store")
	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveNationBatch persists a candidate batch under the given key
func (s *Store) SaveNationBatch(key string, nations []app.Nation) error {
	return s.put(nationBatchPrefix+key, nations)
}

// LoadNationBatch returns a persisted candidate batch and the time it was
// stored. Returns an error when the key is absent.
func (s *Store) LoadNationBatch(key string) ([]app.Nation, time.Time, error) {
	var nations []app.Nation
	storedAt, err := s.get(nationBatchPrefix+key, &nations)
	if err != nil {
		return nil, time.Time{}, err
	}
	return nations, storedAt, nil
}

// SavePrices persists the latest market prices
func (s *Store) SavePrices(prices map[string]float64) error {
	return s.put(pricesKey, prices)
}

// LoadPrices returns the persisted market prices and the time they were
// stored.
func (s *Store) LoadPrices() (map[string]float64, time.Time, error) {
	var prices map[string]float64
	storedAt, err := s.get(pricesKey, &prices)
	if err != nil {
		return nil, time.Time{}, err
	}
	return prices, storedAt, nil
}

// put JSON-encodes value inside a timestamped envelope. Keys are
// lowercased so lookups are case-insensitive.
func (s *Store) put(key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for key %s: %w", key, err)
	}

	data, err := json.Marshal(envelope{StoredAt: time.Now(), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode envelope for key %s: %w", key, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(strings.ToLower(key)), data)
	})
}

func (s *Store) get(key string, out interface{}) (time.Time, error) {
	var env envelope
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(strings.ToLower(key)))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(val, &env)
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load key %s: %w", key, err)
	}

	if err := json.Unmarshal(env.Payload, out); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode payload for key %s: %w", key, err)
	}

	return env.StoredAt, nil
}
