// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ledger

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// pathLocks hands out one single-slot semaphore per absolute file path.
//
// # Description
//
// Requests for different documents proceed in parallel; requests for the
// same document run their read-modify-write one at a time, in the order
// the semaphore admits them. Waiting honors context cancellation.
//
// Entries are reference counted and dropped when the last holder or waiter
// releases, so the map does not grow with the number of paths ever seen.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*pathLock)}
}

// acquire blocks until path is free or ctx is done. On success the caller
// must invoke the returned release exactly once.
func (p *pathLocks) acquire(ctx context.Context, path string) (func(), error) {
	p.mu.Lock()
	l, ok := p.locks[path]
	if !ok {
		l = &pathLock{sem: semaphore.NewWeighted(1)}
		p.locks[path] = l
	}
	l.refs++
	p.mu.Unlock()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		p.unref(path, l)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.sem.Release(1)
			p.unref(path, l)
		})
	}, nil
}

func (p *pathLocks) unref(path string, l *pathLock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(p.locks, path)
	}
}

// size returns the number of tracked paths.
func (p *pathLocks) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.locks)
}
