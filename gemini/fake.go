package gemini

import "context"

// Fake is a Service double for tests. Responses are consumed in order,
// repeating the last one once exhausted.
type Fake struct {
	Responses []string
	Err       error
	AudioPCM  []byte
	AudioErr  error

	GenerateCalls []Payload
	SpeakCalls    []string
}

func NewFake(responses ...string) *Fake {
	return &Fake{Responses: responses}
}

func (f *Fake) Generate(_ context.Context, p Payload) (string, error) {
	f.GenerateCalls = append(f.GenerateCalls, p)
	if f.Err != nil {
		return "", f.Err
	}
	if len(f.Responses) == 0 {
		return "", ErrNoContent
	}
	resp := f.Responses[0]
	if len(f.Responses) > 1 {
		f.Responses = f.Responses[1:]
	}
	return resp, nil
}

func (f *Fake) Speak(_ context.Context, text string) (*Audio, error) {
	f.SpeakCalls = append(f.SpeakCalls, text)
	if f.AudioErr != nil {
		return nil, f.AudioErr
	}
	pcm := f.AudioPCM
	if pcm == nil {
		pcm = make([]byte, 4800)
	}
	return &Audio{PCM: pcm, SampleRate: 24000}, nil
}
