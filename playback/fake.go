package playback

import "sync"

// FakePlayer is a Player double for tests. Playback never produces sound;
// handles complete when the test calls Finish.
type FakePlayer struct {
	mu        sync.Mutex
	PlayCalls [][]byte
	PlayErr   error
	Handles   []*FakeHandle
	Device    *DeviceInfo
	Closed    bool
}

func NewFakePlayer() *FakePlayer {
	return &FakePlayer{}
}

func (f *FakePlayer) Play(wavData []byte) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PlayErr != nil {
		return nil, f.PlayErr
	}
	f.PlayCalls = append(f.PlayCalls, wavData)
	h := &FakeHandle{done: make(chan struct{})}
	f.Handles = append(f.Handles, h)
	return h, nil
}

func (f *FakePlayer) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "Fake Output"}}, nil
}

func (f *FakePlayer) SetDevice(d *DeviceInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Device = d
}

func (f *FakePlayer) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
}

type FakeHandle struct {
	once    sync.Once
	done    chan struct{}
	Stopped bool
}

func (h *FakeHandle) Stop() {
	h.Stopped = true
	h.once.Do(func() { close(h.done) })
}

// Finish simulates playback draining on its own.
func (h *FakeHandle) Finish() {
	h.once.Do(func() { close(h.done) })
}

func (h *FakeHandle) Done() <-chan struct{} { return h.done }
