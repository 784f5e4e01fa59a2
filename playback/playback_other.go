//go:build !linux

package playback

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"nutrinode/wav"
)

type malgoPlayer struct {
	ctx *malgo.AllocatedContext
	mu  sync.Mutex
	dev *malgo.DeviceID
}

func New() (Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoPlayer{ctx: ctx}, nil
}

func (m *malgoPlayer) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID.Pointer()[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

func (m *malgoPlayer) SetDevice(d *DeviceInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dev = nil
	if d == nil {
		return
	}
	idBytes, err := hex.DecodeString(d.ID)
	if err != nil {
		return
	}
	var devID malgo.DeviceID
	copy(devID[:], idBytes)
	m.dev = &devID
}

type malgoHandle struct {
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func (h *malgoHandle) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *malgoHandle) Done() <-chan struct{} { return h.done }

func (m *malgoPlayer) Play(wavData []byte) (Handle, error) {
	pcm := wav.PCM(wavData)
	if len(pcm) < 2 {
		return nil, fmt.Errorf("no audio samples")
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = wav.Channels
	deviceConfig.SampleRate = uint32(wav.Rate(wavData))

	m.mu.Lock()
	if m.dev != nil {
		deviceConfig.Playback.DeviceID = m.dev.Pointer()
	}
	m.mu.Unlock()

	h := &malgoHandle{stop: make(chan struct{}), done: make(chan struct{})}

	var finishOnce sync.Once
	finished := make(chan struct{})
	pos := 0
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			n := copy(out, pcm[pos:])
			pos += n
			for i := n; i < len(out); i++ {
				out[i] = 0
			}
			if pos >= len(pcm) {
				finishOnce.Do(func() { close(finished) })
			}
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, err
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return nil, err
	}

	// Uninit must happen outside the data callback.
	go func() {
		select {
		case <-finished:
		case <-h.stop:
		}
		dev.Uninit()
		close(h.done)
	}()
	return h, nil
}

func (m *malgoPlayer) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}
