//go:build linux

package playback

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"

	"nutrinode/wav"
)

type pulsePlayer struct {
	client *pulse.Client
	mu     sync.Mutex
	sink   *pulse.Sink
}

func New() (Player, error) {
	c, err := pulse.NewClient(pulse.ClientApplicationName("nutrinode"))
	if err != nil {
		return nil, fmt.Errorf("connecting to pulseaudio: %w", err)
	}
	return &pulsePlayer{client: c}, nil
}

func (p *pulsePlayer) Devices() ([]DeviceInfo, error) {
	sinks, err := p.client.ListSinks()
	if err != nil {
		return nil, fmt.Errorf("listing sinks: %w", err)
	}
	var result []DeviceInfo
	for _, s := range sinks {
		result = append(result, DeviceInfo{ID: s.ID(), Name: s.Name()})
	}
	return result, nil
}

func (p *pulsePlayer) SetDevice(d *DeviceInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = nil
	if d == nil {
		return
	}
	sinks, err := p.client.ListSinks()
	if err != nil {
		return
	}
	for _, s := range sinks {
		if s.ID() == d.ID {
			p.sink = s
			return
		}
	}
}

type pulseHandle struct {
	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

func (h *pulseHandle) Stop() {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
}

func (h *pulseHandle) Done() <-chan struct{} { return h.done }

func (p *pulsePlayer) Play(wavData []byte) (Handle, error) {
	pcm := wav.PCM(wavData)
	if len(pcm) < 2 {
		return nil, fmt.Errorf("no audio samples")
	}
	rate := wav.Rate(wavData)

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}

	h := &pulseHandle{done: make(chan struct{})}
	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		h.mu.Lock()
		stopped := h.stopped
		h.mu.Unlock()
		if stopped || pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})

	opts := []pulse.PlaybackOption{
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(rate),
		pulse.PlaybackLatency(0.1),
	}
	p.mu.Lock()
	if p.sink != nil {
		opts = append(opts, pulse.PlaybackSink(p.sink))
	}
	p.mu.Unlock()

	stream, err := p.client.NewPlayback(reader, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening playback stream: %w", err)
	}

	stream.Start()
	go func() {
		stream.Drain()
		stream.Stop()
		stream.Close()
		close(h.done)
	}()
	return h, nil
}

func (p *pulsePlayer) Close() {
	p.client.Close()
}
