package common

import (
	"sync/atomic"
	"time"
)

// HeightSource tells the engine the current block height; tally expiration
// is measured in heights.
type HeightSource interface {
	Height() uint64
}

// ManualHeight is a HeightSource moved by hand, mostly for tests.
type ManualHeight struct {
	height uint64
}

func NewManualHeight(start uint64) *ManualHeight {
	return &ManualHeight{height: start}
}

func (m *ManualHeight) Height() uint64 {
	return atomic.LoadUint64(&m.height)
}

func (m *ManualHeight) Set(h uint64) {
	atomic.StoreUint64(&m.height, h)
}

func (m *ManualHeight) Advance(n uint64) uint64 {
	return atomic.AddUint64(&m.height, n)
}

// ClockHeight derives the height from wall clock time: one height per
// `BlockTime` since `Genesis`, starting at 1.
type ClockHeight struct {
	Genesis   time.Time
	BlockTime time.Duration

	now func() time.Time
}

func NewClockHeight(genesis time.Time, blockTime time.Duration) *ClockHeight {
	return &ClockHeight{
		Genesis:   genesis,
		BlockTime: blockTime,
		now:       time.Now,
	}
}

func (c *ClockHeight) Height() uint64 {
	elapsed := c.now().Sub(c.Genesis)
	if elapsed < 0 || c.BlockTime <= 0 {
		return 1
	}

	return uint64(elapsed/c.BlockTime) + 1
}
