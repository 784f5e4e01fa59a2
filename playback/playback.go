// Package playback plays WAV audio through the platform output device.
// Linux talks to PulseAudio directly; other platforms go through malgo.
package playback

// DeviceInfo identifies one output device.
type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

// Handle controls one in-flight playback.
type Handle interface {
	// Stop interrupts playback. Safe to call after playback finished.
	Stop()
	// Done is closed when playback ends, whether it drained or was stopped.
	Done() <-chan struct{}
}

// Player owns the audio output connection.
type Player interface {
	// Play starts asynchronous playback of a WAV container.
	Play(wavData []byte) (Handle, error)
	Devices() ([]DeviceInfo, error)
	// SetDevice routes subsequent playback to d. nil restores the default.
	SetDevice(d *DeviceInfo)
	Close()
}
