package wav

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestFromSamplesLayout(t *testing.T) {
	samples := make([]int16, 2400) // 100ms at 24kHz
	for i := range samples {
		samples[i] = int16(i % 512)
	}

	data := FromSamples(samples, SampleRate)

	if got, want := len(data), HeaderSize+2*len(samples); got != want {
		t.Fatalf("container length = %d, want %d", got, want)
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if !bytes.Equal(data[12:16], []byte("fmt ")) || !bytes.Equal(data[36:40], []byte("data")) {
		t.Fatal("missing fmt/data chunk markers")
	}

	if got := binary.LittleEndian.Uint32(data[4:]); got != uint32(36+2*len(samples)) {
		t.Errorf("RIFF size = %d, want %d", got, 36+2*len(samples))
	}
	if got := binary.LittleEndian.Uint32(data[16:]); got != 16 {
		t.Errorf("fmt chunk size = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint16(data[20:]); got != 1 {
		t.Errorf("format tag = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(data[22:]); got != Channels {
		t.Errorf("channels = %d, want %d", got, Channels)
	}
	if got := binary.LittleEndian.Uint32(data[24:]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint32(data[28:]); got != SampleRate*2 {
		t.Errorf("byte rate = %d, want %d", got, SampleRate*2)
	}
	if got := binary.LittleEndian.Uint16(data[32:]); got != 2 {
		t.Errorf("block align = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:]); got != BitsPerSample {
		t.Errorf("bits per sample = %d, want %d", got, BitsPerSample)
	}
	if got := binary.LittleEndian.Uint32(data[40:]); got != uint32(2*len(samples)) {
		t.Errorf("data chunk size = %d, want %d", got, 2*len(samples))
	}
}

func TestSamplesSurviveVerbatim(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345}
	data := FromSamples(samples, SampleRate)

	pcm := PCM(data)
	if len(pcm) != 2*len(samples) {
		t.Fatalf("pcm length = %d, want %d", len(pcm), 2*len(samples))
	}
	for i, want := range samples {
		got := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		if got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}

func TestFromPCMEmpty(t *testing.T) {
	data := FromPCM(nil, SampleRate)
	if len(data) != HeaderSize {
		t.Fatalf("empty container length = %d, want %d", len(data), HeaderSize)
	}
	if got := binary.LittleEndian.Uint32(data[40:]); got != 0 {
		t.Errorf("data chunk size = %d, want 0", got)
	}
	if PCM(data) != nil {
		t.Error("PCM of empty container should be nil")
	}
}

func TestFromPCMOddRate(t *testing.T) {
	data := FromPCM(make([]byte, 32), 16000)
	if got := binary.LittleEndian.Uint32(data[24:]); got != 16000 {
		t.Errorf("sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint32(data[28:]); got != 32000 {
		t.Errorf("byte rate = %d, want 32000", got)
	}
}
