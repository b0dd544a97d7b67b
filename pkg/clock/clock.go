// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package clock

import (
	"sync"
	"time"
)

// Clock supplies "server time". Every instant it returns is in UTC.
type Clock interface {
	Now() time.Time
}

// Real reads the wall clock and shifts it by a fixed server offset.
type Real struct {
	Offset time.Duration
}

// NewReal creates a wall clock shifted by offset.
func NewReal(offset time.Duration) *Real {
	return &Real{Offset: offset}
}

// Now implements Clock.
func (r *Real) Now() time.Time {
	return time.Now().Add(r.Offset).UTC()
}

// Manual is a settable clock for tests and replays.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual creates a manual clock parked at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start.UTC()}
}

// Now implements Clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t.UTC()
}

// Advance moves the clock forward by d and returns the new instant.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}
