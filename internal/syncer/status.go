package syncer

import "sync"

// ChannelState is the sync state of one write channel.
type ChannelState string

const (
	StateWaiting ChannelState = "waiting"
	StateLoading ChannelState = "loading"
	StateSuccess ChannelState = "success"
	StateError   ChannelState = "error"
)

// Status is the two-channel sync status pair: the primary store channel and
// the best-effort spreadsheet channel. The pair may resolve asymmetrically;
// a successful primary write with a failed mirror is {success, error}.
type Status struct {
	DB    ChannelState `json:"db"`
	Sheet ChannelState `json:"sheet"`
}

// statusTracker holds the current status pair. The coordinator rewrites it
// on every sync; readers get a snapshot.
type statusTracker struct {
	mu     sync.Mutex
	status Status
}

func newStatusTracker() *statusTracker {
	return &statusTracker{status: Status{DB: StateWaiting, Sheet: StateWaiting}}
}

func (t *statusTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{DB: StateWaiting, Sheet: StateWaiting}
}

func (t *statusTracker) SetBoth(state ChannelState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.DB = state
	t.status.Sheet = state
}

func (t *statusTracker) SetDB(state ChannelState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.DB = state
}

func (t *statusTracker) SetSheet(state ChannelState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Sheet = state
}

func (t *statusTracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}
