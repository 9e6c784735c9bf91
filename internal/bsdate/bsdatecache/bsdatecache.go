// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package bsdatecache provides a persistent conversion cache backed by BadgerDB.
//
// Keys are bsclient cache keys under a "conversion/" prefix. Values are the
// converted dates as google.type.Date JSON. The calendar of a value is implied
// by the direction in its key.
package bsdatecache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bufdev/bsdate/internal/pkg/bsclient"
	"github.com/bufdev/bsdate/internal/pkg/bsconv"
	"github.com/bufdev/bsdate/internal/pkg/datepb"
	"github.com/dgraph-io/badger/v4"
)

// keyPrefix is the prefix of every conversion entry.
const keyPrefix = "conversion/"

// Cache is a bsclient.Cache stored in BadgerDB.
//
// A Cache is safe for concurrent use. Callers must call Close when done.
type Cache struct {
	db *badger.DB
}

var _ bsclient.Cache = (*Cache)(nil)

// Open opens the cache stored in dirPath, creating the directory if needed.
//
// BadgerDB logs are sent to the logger. A nil logger disables them.
func Open(logger *slog.Logger, dirPath string) (*Cache, error) {
	if dirPath == "" {
		return nil, errors.New("cache directory path is required")
	}
	if err := os.MkdirAll(dirPath, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dirPath, err)
	}
	return open(logger, badger.DefaultOptions(dirPath))
}

// OpenInMemory opens a cache that is not persisted.
func OpenInMemory(logger *slog.Logger) (*Cache, error) {
	return open(logger, badger.DefaultOptions("").WithInMemory(true))
}

// Get implements bsclient.Cache.
func (c *Cache) Get(key string) (bsconv.Date, bool, error) {
	calendar, err := outputCalendar(key)
	if err != nil {
		return bsconv.Date{}, false, err
	}
	var data []byte
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return bsconv.Date{}, false, nil
	}
	if err != nil {
		return bsconv.Date{}, false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	protoDate, err := datepb.UnmarshalJSON(data)
	if err != nil {
		return bsconv.Date{}, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	output, err := datepb.ProtoToDate(calendar, protoDate)
	if err != nil {
		return bsconv.Date{}, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	return output, true, nil
}

// Set implements bsclient.Cache.
func (c *Cache) Set(key string, output bsconv.Date) error {
	calendar, err := outputCalendar(key)
	if err != nil {
		return err
	}
	if output.Calendar != calendar {
		return fmt.Errorf("cache entry %s must hold a %s date, got %s", key, calendar, output.Calendar)
	}
	protoDate, err := datepb.DateToProto(output)
	if err != nil {
		return err
	}
	data, err := datepb.MarshalJSON(protoDate)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), data)
	})
}

// Len implements bsclient.Cache.
func (c *Cache) Len() (int, error) {
	var count int
	err := c.db.View(func(txn *badger.Txn) error {
		iteratorOptions := badger.DefaultIteratorOptions
		iteratorOptions.PrefetchValues = false
		iteratorOptions.Prefix = []byte(keyPrefix)
		iterator := txn.NewIterator(iteratorOptions)
		defer iterator.Close()
		for iterator.Rewind(); iterator.Valid(); iterator.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Clear implements bsclient.Cache.
func (c *Cache) Clear() error {
	return c.db.DropPrefix([]byte(keyPrefix))
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// *** PRIVATE ***

func open(logger *slog.Logger, options badger.Options) (*Cache, error) {
	if logger != nil {
		options = options.WithLogger(&badgerLogger{logger: logger})
	} else {
		options = options.WithLogger(nil)
	}
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// outputCalendar returns the calendar of the converted date for a cache key.
func outputCalendar(key string) (bsconv.Calendar, error) {
	for _, direction := range []bsconv.Direction{bsconv.DirectionADToBS, bsconv.DirectionBSToAD} {
		if strings.HasPrefix(key, string(direction)+"-") {
			return direction.Source().Other(), nil
		}
	}
	return 0, fmt.Errorf("invalid cache key %q", key)
}

// badgerLogger adapts a *slog.Logger to the badger.Logger interface.
//
// BadgerDB is chatty at info level, so info messages are logged at debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
