// Package filestore persists each collection as one JSON document in a data
// directory. Every operation is a full read-modify-write under the
// collection's mutex; writes land in a temp file that is renamed over the
// original.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aidar/team-scheduler/internal/metrics"
)

const backend = "file"

type collection[T any] struct {
	mu   sync.Mutex
	path string
}

func newCollection[T any](dir, name string) *collection[T] {
	return &collection[T]{path: filepath.Join(dir, name)}
}

// load reads the document. A missing or empty file yields the zero value.
func (c *collection[T]) load() (T, error) {
	var doc T
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", c.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", c.path, err)
	}
	return doc, nil
}

func (c *collection[T]) save(doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", c.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}

// view runs fn over the current document without writing it back.
func (c *collection[T]) view(method string, fn func(T) error) (err error) {
	defer func(start time.Time) { metrics.ObserveStorage(backend, method, start, err) }(time.Now())

	c.mu.Lock()
	defer c.mu.Unlock()
	doc, err := c.load()
	if err != nil {
		return err
	}
	return fn(doc)
}

// update runs fn over the current document and persists the result unless fn fails.
func (c *collection[T]) update(method string, fn func(*T) error) (err error) {
	defer func(start time.Time) { metrics.ObserveStorage(backend, method, start, err) }(time.Now())

	c.mu.Lock()
	defer c.mu.Unlock()
	doc, err := c.load()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return c.save(doc)
}
