// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"errors"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/incrementer/state"
)

var _ state.Database = (*Database)(nil)

type Config struct {
	CacheSize                   int64  `json:"cacheSize" yaml:"cacheSize"`
	BytesPerSync                int    `json:"bytesPerSync" yaml:"bytesPerSync"`
	WALBytesPerSync             int    `json:"walBytesPerSync" yaml:"walBytesPerSync"`
	MemTableStopWritesThreshold int    `json:"memTableStopWritesThreshold" yaml:"memTableStopWritesThreshold"`
	MemTableSize                uint64 `json:"memTableSize" yaml:"memTableSize"`
	MaxOpenFiles                int    `json:"maxOpenFiles" yaml:"maxOpenFiles"`
	ConcurrentCompactions       int    `json:"concurrentCompactions" yaml:"concurrentCompactions"`
	// Sync makes every Put and Delete wait for the WAL to reach disk.
	Sync bool `json:"sync" yaml:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   8 * 1024 * 1024,
		BytesPerSync:                1024 * 1024,
		WALBytesPerSync:             1024 * 1024,
		MemTableStopWritesThreshold: 8,
		MemTableSize:                4 * 1024 * 1024,
		MaxOpenFiles:                1_024,
		ConcurrentCompactions:       runtime.NumCPU(),
		Sync:                        true,
	}
}

// Database is a state.Database backed by a pebble store on disk.
type Database struct {
	db           *pebble.DB
	writeOptions *pebble.WriteOptions
	metrics      *metrics

	closeOnce sync.Once
	closing   chan struct{}
	closed    sync.WaitGroup
}

func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	db := &Database{
		metrics: metrics,
		closing: make(chan struct{}),
	}
	if cfg.Sync {
		db.writeOptions = pebble.Sync
	} else {
		db.writeOptions = pebble.NoSync
	}

	cache := pebble.NewCache(cfg.CacheSize)
	defer cache.Unref()
	opts := &pebble.Options{
		Cache:                       cache,
		BytesPerSync:                cfg.BytesPerSync,
		Comparer:                    pebble.DefaultComparer,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                cfg.MemTableSize,
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions:    func() int { return cfg.ConcurrentCompactions },
	}
	opts.EventListener = db.listener()
	db.db, err = pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}

	db.closed.Add(1)
	go func() {
		defer db.closed.Done()
		db.pollMetrics()
	}()
	return db, registry, nil
}

func (db *Database) Get(key []byte) ([]byte, error) {
	start := time.Now()
	defer func() {
		db.metrics.getLatency.Observe(float64(time.Since(start)))
	}()

	db.metrics.reads.Inc()
	data, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		db.metrics.misses.Inc()
	}
	if err != nil {
		return nil, updateError(err)
	}
	v := slices.Clone(data)
	return v, closer.Close()
}

func (db *Database) Put(key []byte, value []byte) error {
	db.metrics.writes.Inc()
	return updateError(db.db.Set(key, value, db.writeOptions))
}

func (db *Database) Delete(key []byte) error {
	db.metrics.deletes.Inc()
	return updateError(db.db.Delete(key, db.writeOptions))
}

func (db *Database) Close() error {
	err := database.ErrClosed
	db.closeOnce.Do(func() {
		close(db.closing)
		db.closed.Wait()
		err = updateError(db.db.Close())
	})
	return err
}

func updateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pebble.ErrNotFound):
		return database.ErrNotFound
	case errors.Is(err, pebble.ErrClosed):
		return database.ErrClosed
	default:
		return err
	}
}
