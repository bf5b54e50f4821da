package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// keyPrefix namespaces cache entries inside the database.
const keyPrefix = "specifiers/"

// BadgerConfig configures a Badger cache.
type BadgerConfig struct {
	// Dir holds the database files. Ignored when InMemory is true.
	Dir string

	// InMemory keeps everything in RAM. Useful for tests.
	InMemory bool

	// Logger receives Badger's internal logs. Nil disables them.
	Logger logrus.FieldLogger
}

// Badger is an on-disk cache that survives restarts.
//
// Get and Put never fail loudly: a cache that cannot be read behaves like a
// miss, and write errors are logged.
type Badger struct {
	db  *badger.DB
	log logrus.FieldLogger
}

var _ Cache = (*Badger)(nil)

// OpenBadger opens (or creates) the cache database.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("cache directory is required for a persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Dir, err)
		}
		opts = badger.DefaultOptions(cfg.Dir)
	}
	opts = opts.WithNumVersionsToKeep(1)

	log := cfg.Logger
	if log != nil {
		// logrus entries already satisfy badger.Logger.
		opts = opts.WithLogger(log.WithField("component", "badger"))
	} else {
		opts = opts.WithLogger(nil)
		log = logrus.StandardLogger()
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	return &Badger{db: db, log: log.WithField("component", "cache")}, nil
}

// Get returns the specifiers stored under key.
func (c *Badger) Get(key string) ([]string, bool) {
	var specs []string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, &specs)
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.log.WithError(err).WithField("key", key).Debug("cache read failed")
		}
		return nil, false
	}
	return specs, true
}

// Put stores specifiers under key.
func (c *Badger) Put(key string, specifiers []string) {
	if specifiers == nil {
		specifiers = []string{}
	}
	raw, err := json.Marshal(specifiers)
	if err != nil {
		c.log.WithError(err).Warn("cache encode failed")
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), raw)
	})
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// Close flushes and closes the database.
func (c *Badger) Close() error {
	return c.db.Close()
}
