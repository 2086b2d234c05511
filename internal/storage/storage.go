package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/hailam/onitama/internal/engine"
)

// Storage key prefixes
const (
	prefixProfile  = "profile/"
	prefixStanding = "standing/"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Profile is a named engine configuration.
type Profile struct {
	Name             string        `json:"name"`
	Tables           engine.Tables `json:"tables"`
	Jitter           int           `json:"jitter"`
	UseKillers       bool          `json:"use_killers"`
	UseOrderingCache bool          `json:"use_ordering_cache"`
	CreatedAt        time.Time     `json:"created_at"`
}

// DefaultProfile returns the profile matching engine.DefaultOptions.
func DefaultProfile() *Profile {
	opts := engine.DefaultOptions()
	return &Profile{
		Name:             "default",
		Tables:           opts.Tables,
		Jitter:           opts.Jitter,
		UseKillers:       opts.UseKillers,
		UseOrderingCache: opts.UseOrderingCache,
		CreatedAt:        time.Now(),
	}
}

// Options applies the profile on top of base.
func (p *Profile) Options(base engine.Options) engine.Options {
	base.Tables = p.Tables
	base.Jitter = p.Jitter
	base.UseKillers = p.UseKillers
	base.UseOrderingCache = p.UseOrderingCache
	return base
}

// Standing is the running head-to-head record of two profiles. A is always
// the name that sorts first.
type Standing struct {
	A         string    `json:"a"`
	B         string    `json:"b"`
	WinsA     int       `json:"wins_a"`
	WinsB     int       `json:"wins_b"`
	Draws     int       `json:"draws"`
	Games     int       `json:"games"`
	LastRunID uuid.UUID `json:"last_run_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScoreA returns A's score as a percentage (0-100), draws counting half.
func (s *Standing) ScoreA() float64 {
	if s.Games == 0 {
		return 0
	}
	return (float64(s.WinsA) + float64(s.Draws)/2) / float64(s.Games) * 100
}

// MatchResult is the outcome of one match run between two profiles.
type MatchResult struct {
	RunID uuid.UUID
	A     string
	B     string
	WinsA int
	WinsB int
	Draws int
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens the database under dataDir, or under the platform data
// directory when dataDir is empty.
func Open(dataDir string) (*Storage, error) {
	dbDir, err := DatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	return open(opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveProfile stores p under its name, replacing any previous version.
func (s *Storage) SaveProfile(p *Profile) error {
	if p.Name == "" {
		return errors.New("profile name is empty")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixProfile+p.Name), data)
	})
}

// LoadProfile loads the named profile.
func (s *Storage) LoadProfile(name string) (*Profile, error) {
	p := &Profile{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixProfile + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("profile %q: %w", name, ErrNotFound)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, p)
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProfiles returns the names of all stored profiles in key order.
func (s *Storage) ListProfiles() ([]string, error) {
	var names []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixProfile)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			names = append(names, strings.TrimPrefix(key, prefixProfile))
		}
		return nil
	})

	return names, err
}

// DeleteProfile removes the named profile.
func (s *Storage) DeleteProfile(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixProfile + name)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("profile %q: %w", name, ErrNotFound)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

func standingKey(a, b string) []byte {
	return []byte(prefixStanding + a + "|" + b)
}

// orderPair returns the names sorted and whether they were swapped.
func orderPair(a, b string) (string, string, bool) {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0], pair[1], pair[0] != a
}

func getStanding(txn *badger.Txn, a, b string) (*Standing, error) {
	st := &Standing{A: a, B: b}

	item, err := txn.Get(standingKey(a, b))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return st, nil // Empty record
	}
	if err != nil {
		return nil, err
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, st)
	})
	return st, err
}

// LoadStanding loads the record of a against b. The result is oriented so
// that A is a. A pair that never played returns an empty record.
func (s *Storage) LoadStanding(a, b string) (*Standing, error) {
	first, second, swapped := orderPair(a, b)

	var st *Standing
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		st, err = getStanding(txn, first, second)
		return err
	})
	if err != nil {
		return nil, err
	}

	if swapped {
		st.A, st.B = st.B, st.A
		st.WinsA, st.WinsB = st.WinsB, st.WinsA
	}
	return st, nil
}

// RecordMatch adds a match result to the pair's standing.
func (s *Storage) RecordMatch(r MatchResult) error {
	if r.A == r.B {
		return fmt.Errorf("match between %q and itself", r.A)
	}
	first, second, swapped := orderPair(r.A, r.B)
	winsFirst, winsSecond := r.WinsA, r.WinsB
	if swapped {
		winsFirst, winsSecond = winsSecond, winsFirst
	}

	return s.db.Update(func(txn *badger.Txn) error {
		st, err := getStanding(txn, first, second)
		if err != nil {
			return err
		}

		st.WinsA += winsFirst
		st.WinsB += winsSecond
		st.Draws += r.Draws
		st.Games += r.WinsA + r.WinsB + r.Draws
		st.LastRunID = r.RunID
		st.UpdatedAt = time.Now()

		data, err := json.Marshal(st)
		if err != nil {
			return err
		}
		return txn.Set(standingKey(first, second), data)
	})
}
