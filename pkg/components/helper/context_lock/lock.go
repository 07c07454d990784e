/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package context_lock

import (
	"errors"
	"fmt"
	"sync"
)

type rwMutex struct {
	mu     sync.RWMutex
	rMu    sync.Mutex
	reason string
}

func (m *rwMutex) TryRLock() error {
	if !m.mu.TryRLock() {
		m.rMu.Lock()
		defer m.rMu.Unlock()
		return errors.New(m.reason)
	}
	return nil
}

func (m *rwMutex) RUnlock() {
	m.mu.RUnlock()
}

func (m *rwMutex) TryLock(reason string) error {
	if !m.mu.TryLock() {
		m.rMu.Lock()
		defer m.rMu.Unlock()
		if m.reason == "" {
			return errors.New("operation in progress")
		}
		return errors.New(m.reason)
	}
	m.rMu.Lock()
	m.reason = reason
	m.rMu.Unlock()
	return nil
}

func (m *rwMutex) Unlock() {
	m.rMu.Lock()
	m.reason = ""
	m.rMu.Unlock()
	m.mu.Unlock()
}

// Locker provides non-blocking locks per context id. TryLockAll excludes
// every per context lock and fails while one is held.
type Locker struct {
	global rwMutex
	mu     sync.Mutex
	held   map[int64]string
}

func New() *Locker {
	return &Locker{held: make(map[int64]string)}
}

func (l *Locker) TryLock(cid int64, reason string) error {
	if err := l.global.TryRLock(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.held[cid]; ok {
		l.global.RUnlock()
		return fmt.Errorf("context %d locked: %s", cid, r)
	}
	l.held[cid] = reason
	return nil
}

func (l *Locker) Unlock(cid int64) {
	l.mu.Lock()
	_, ok := l.held[cid]
	delete(l.held, cid)
	l.mu.Unlock()
	if ok {
		l.global.RUnlock()
	}
}

func (l *Locker) TryLockAll(reason string) error {
	return l.global.TryLock(reason)
}

func (l *Locker) UnlockAll() {
	l.global.Unlock()
}
