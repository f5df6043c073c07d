package playback

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/gametrace/search"
)

const DefaultInterval = 700 * time.Millisecond

const noResultMessage = "Generate a tree to begin"

// Controller owns the playback cursor over one result. The cursor is the
// only mutable state; everything shown is re-derived with StateAt. A
// Controller is safe for concurrent use, but two controllers must never
// share a cursor.
type Controller struct {
	mu       sync.Mutex
	result   *search.Result
	cursor   int
	interval time.Duration
	// stop is non-nil while the ticker goroutine is running.
	stop     chan struct{}
	listener func(State)
}

// NewController creates a controller positioned on the first step. res may
// be nil; a non-positive interval means DefaultInterval.
func NewController(res *search.Result, interval time.Duration) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	c := &Controller{interval: interval}
	c.Load(res)
	return c
}

// Load stops playback and switches to a new result.
func (c *Controller) Load(res *search.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.result = res
	c.cursor = c.startLocked()
}

// SetListener registers fn to be called with the new state after every
// timer-driven advance. fn runs on the ticker goroutine without the lock
// held, so it may call back into the controller.
func (c *Controller) SetListener(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = fn
}

func (c *Controller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interval = d
}

// Play starts advancing one step per interval. It stops by itself on the
// last step. Calling Play while playing, or at the end, does nothing.
func (c *Controller) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil || c.result == nil || c.cursor >= c.lastLocked() {
		return
	}
	stop := make(chan struct{})
	c.stop = stop
	log.Debug().Int("cursor", c.cursor).Dur("interval", c.interval).Msg("playback-start")
	go c.run(stop, c.interval)
}

// Pause stops automatic advancement and keeps the cursor.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Step advances exactly one step, clamped at the last one.
func (c *Controller) Step() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result != nil {
		c.cursor = min(c.cursor+1, c.lastLocked())
	}
	return StateAt(c.result, c.cursor)
}

// Back moves one step backwards, clamped at the first one.
func (c *Controller) Back() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result != nil {
		c.cursor = max(c.cursor-1, c.startLocked())
	}
	return StateAt(c.result, c.cursor)
}

// Seek jumps straight to cursor k, clamped to the log.
func (c *Controller) Seek(k int) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result != nil {
		c.cursor = clamp(k, c.startLocked(), c.lastLocked())
	}
	return StateAt(c.result, c.cursor)
}

// Reset stops playback and returns to the first step.
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.cursor = c.startLocked()
	return StateAt(c.result, c.cursor)
}

func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Len is the total number of steps.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return 0
	}
	return len(c.result.Steps)
}

func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

func (c *Controller) Result() *search.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// State is the state at the current cursor.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return StateAt(c.result, c.cursor)
}

// StateAt derives the state at an arbitrary cursor without moving.
func (c *Controller) StateAt(k int) State {
	c.mu.Lock()
	res := c.result
	c.mu.Unlock()
	return StateAt(res, k)
}

// Message is the status-line text for the current step.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil || len(c.result.Steps) == 0 {
		return noResultMessage
	}
	return Describe(c.result.Steps[c.cursor])
}

// Summary is the completion text once the cursor is on the last step, and
// "" before that.
func (c *Controller) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil || c.cursor != c.lastLocked() {
		return ""
	}
	return Summary(c.result)
}

func (c *Controller) run(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			st, listener, more := c.tick(stop)
			if listener != nil {
				listener(st)
			}
			if !more {
				log.Debug().Int("cursor", st.Cursor).Msg("playback-finished")
				return
			}
		}
	}
}

func (c *Controller) tick(stop chan struct{}) (State, func(State), bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != stop {
		// paused or reset between the tick firing and taking the lock
		return State{}, nil, false
	}
	last := c.lastLocked()
	if c.cursor < last {
		c.cursor++
	}
	more := c.cursor < last
	if !more {
		c.stop = nil
	}
	return StateAt(c.result, c.cursor), c.listener, more
}

func (c *Controller) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Controller) startLocked() int {
	if c.result == nil || len(c.result.Steps) == 0 {
		return -1
	}
	return 0
}

func (c *Controller) lastLocked() int {
	if c.result == nil {
		return -1
	}
	return len(c.result.Steps) - 1
}
