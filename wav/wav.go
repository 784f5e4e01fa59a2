// Package wav wraps raw PCM audio in a minimal uncompressed WAV container.
// The speech endpoint returns bare little-endian 16-bit mono samples at
// 24 kHz; wrapping them is all that is needed to hand the reply to an
// audio output device.
package wav

import "encoding/binary"

const (
	SampleRate    = 24000
	Channels      = 1
	BitsPerSample = 16
	HeaderSize    = 44
)

// FromPCM prepends a 44-byte WAV header to raw little-endian int16 mono
// sample bytes. Header sizes and rates are computed from the input; only
// channel count and bit depth are fixed.
func FromPCM(pcm []byte, sampleRate int) []byte {
	dataLen := len(pcm)
	buf := make([]byte, HeaderSize+dataLen)

	copy(buf[0:], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:], uint32(36+dataLen))
	copy(buf[8:], "WAVE")

	copy(buf[12:], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:], 1)  // PCM format tag
	binary.LittleEndian.PutUint16(buf[22:], Channels)
	binary.LittleEndian.PutUint32(buf[24:], uint32(sampleRate))
	byteRate := sampleRate * Channels * BitsPerSample / 8
	binary.LittleEndian.PutUint32(buf[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:], Channels*BitsPerSample/8) // block align
	binary.LittleEndian.PutUint16(buf[34:], BitsPerSample)

	copy(buf[36:], "data")
	binary.LittleEndian.PutUint32(buf[40:], uint32(dataLen))

	copy(buf[HeaderSize:], pcm)
	return buf
}

// FromSamples encodes int16 samples to bytes and wraps them.
func FromSamples(samples []int16, sampleRate int) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return FromPCM(pcm, sampleRate)
}

// PCM returns the sample bytes of a container built by FromPCM.
func PCM(wavData []byte) []byte {
	if len(wavData) <= HeaderSize {
		return nil
	}
	return wavData[HeaderSize:]
}

// Rate reads the sample rate back out of a container header. Returns the
// default rate when the header is too short.
func Rate(wavData []byte) int {
	if len(wavData) < HeaderSize {
		return SampleRate
	}
	return int(binary.LittleEndian.Uint32(wavData[24:]))
}
