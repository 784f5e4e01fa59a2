package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nutrinode/analysis"
	"nutrinode/clipboard"
	"nutrinode/gemini"
	"nutrinode/history"
	"nutrinode/log"
	"nutrinode/playback"
	"nutrinode/prompt"
	"nutrinode/wav"
)

type viewState int

const (
	stateIdle viewState = iota
	stateScanning
	stateAnalyzing
	stateResult
	stateError
)

const (
	scanDelay        = 1500 * time.Millisecond
	progressInterval = 1500 * time.Millisecond
)

type demoScenario struct {
	label string
	text  string
}

var demoScenarios = []demoScenario{
	{"Healthy Cereal?", "Whole grain oats, sugar, corn starch, honey, brown sugar syrup, salt, tripotassium phosphate, canola oil, natural almond flavor, vitamin E."},
	{"Energy Drink", "Carbonated water, sucrose, glucose, citric acid, taurine, sodium citrate, caffeine, glucuronolactone, inositol, niacinamide, pyridoxine hydrochloride, calcium pantothenate, Blue 1, Red 40."},
	{"Veggie Burger", "Water, pea protein isolate, expeller-pressed canola oil, refined coconut oil, rice protein, natural flavors, cocoa butter, mung bean protein, methylcellulose, potato starch, apple extract, salt, potassium chloride, vinegar, lemon juice concentrate, sunflower lecithin, beet juice extract."},
}

type model struct {
	svc    gemini.Service
	store  *history.Store
	player playback.Player
	muted  bool

	state   viewState
	profile analysis.Profile
	width   int
	height  int

	// idle input
	input     string
	imageMode bool
	note      string
	demoIdx   int
	entries   []history.Entry
	histSel   int // -1 when no history entry is highlighted

	// in-flight analysis
	seq            int
	progressSeq    int
	progressActive bool
	loadingStep    int

	// result
	active     *analysis.Result
	sourceText string
	activeCard int
	shared     bool
	errText    string

	// chat
	chatOpen    bool
	chat        []analysis.ChatMessage
	chatInput   string
	chatLoading bool

	// alternative
	alternative *analysis.Alternative
	altLoading  bool

	// audio
	audio        playback.Handle
	audioSeq     int
	audioLoading bool
}

func newModel(svc gemini.Service, store *history.Store, player playback.Player, profile analysis.Profile, muted bool) model {
	return model{
		svc:     svc,
		store:   store,
		player:  player,
		muted:   muted,
		profile: profile,
		histSel: -1,
	}
}

func (m model) Init() tea.Cmd {
	return m.loadHistoryCmd()
}

// stopProgress retires the loading ticker. Calling it when no ticker is
// active is a no-op, so a completion racing a cancellation settles on a
// single outcome.
func (m *model) stopProgress() {
	if !m.progressActive {
		return
	}
	m.progressActive = false
	m.progressSeq++
}

func progressTick(seq int) tea.Cmd {
	return tea.Tick(progressInterval, func(time.Time) tea.Msg {
		return progressTickMsg{seq: seq}
	})
}

func (m model) loadHistoryCmd() tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := store.Load()
		if err != nil {
			log.Warnf("history load: %v", err)
		}
		return historyLoadedMsg{entries: entries}
	}
}

func (m model) analyzeCmd(seq int, req prompt.Request, source string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		payload, err := prompt.Build(req)
		if err != nil {
			return analysisDoneMsg{seq: seq, err: err}
		}
		raw, err := svc.Generate(context.Background(), payload)
		if err != nil {
			return analysisDoneMsg{seq: seq, err: err}
		}
		result, err := analysis.Parse(raw)
		if err != nil {
			return analysisDoneMsg{seq: seq, err: err}
		}
		return analysisDoneMsg{seq: seq, result: result, source: source}
	}
}

func (m model) persistCmd(entry history.Entry) tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := store.Append(entry)
		return historySavedMsg{entries: entries, err: err}
	}
}

func (m model) chatCmd(req prompt.Request) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		payload, err := prompt.Build(req)
		if err != nil {
			log.Errorf("chat prompt: %v", err)
			return chatReplyMsg{text: prompt.ChatFallback}
		}
		reply, err := svc.Generate(context.Background(), payload)
		if err != nil {
			log.Errorf("chat request: %v", err)
			return chatReplyMsg{text: prompt.ChatFallback}
		}
		return chatReplyMsg{text: reply}
	}
}

func (m model) alternativeCmd(req prompt.Request) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		payload, err := prompt.Build(req)
		if err != nil {
			return alternativeMsg{err: err}
		}
		raw, err := svc.Generate(context.Background(), payload)
		if err != nil {
			return alternativeMsg{err: err}
		}
		alt, err := analysis.ParseAlternative(raw)
		return alternativeMsg{alt: alt, err: err}
	}
}

func (m model) speakCmd(seq int, text string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		audio, err := svc.Speak(context.Background(), text)
		if err != nil {
			return speechReadyMsg{seq: seq, err: err}
		}
		return speechReadyMsg{seq: seq, wavData: wav.FromPCM(audio.PCM, audio.SampleRate)}
	}
}

func watchAudio(h playback.Handle, seq int) tea.Cmd {
	return func() tea.Msg {
		<-h.Done()
		return audioDoneMsg{seq: seq}
	}
}

func shareCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return sharedMsg{err: clipboard.Copy(text)}
	}
}

// releaseAudio stops any in-flight playback and invalidates pending
// speech replies.
func (m *model) releaseAudio() {
	if m.audio != nil {
		m.audio.Stop()
		m.audio = nil
	}
	m.audioLoading = false
	m.audioSeq++
}

// startAnalysis begins a fresh request. Everything derived from the
// previous verdict is dropped before the network call goes out.
func (m *model) startAnalysis(req prompt.Request, source string) tea.Cmd {
	m.releaseAudio()
	m.chat = nil
	m.chatInput = ""
	m.chatOpen = false
	m.chatLoading = false
	m.alternative = nil
	m.altLoading = false
	m.activeCard = 0
	m.shared = false
	m.note = ""

	m.state = stateAnalyzing
	m.seq++
	m.loadingStep = 0
	m.stopProgress()
	m.progressActive = true

	return tea.Batch(
		m.analyzeCmd(m.seq, req, source),
		progressTick(m.progressSeq),
	)
}

func (m *model) reset() {
	m.releaseAudio()
	m.stopProgress()
	m.state = stateIdle
	m.input = ""
	m.imageMode = false
	m.note = ""
	m.histSel = -1
	m.active = nil
	m.sourceText = ""
	m.activeCard = 0
	m.shared = false
	m.errText = ""
	m.chat = nil
	m.chatInput = ""
	m.chatOpen = false
	m.chatLoading = false
	m.alternative = nil
	m.altLoading = false
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case scanDelayMsg:
		if msg.seq != m.seq || m.state != stateScanning {
			return m, nil
		}
		cmd := m.startAnalysis(prompt.Request{
			Kind:    prompt.KindTextAnalysis,
			Profile: m.profile,
			Text:    m.input,
		}, m.input)
		return m, cmd

	case progressTickMsg:
		if !m.progressActive || msg.seq != m.progressSeq {
			return m, nil
		}
		m.loadingStep = (m.loadingStep + 1) % len(prompt.LoadingMessages(m.profile))
		return m, progressTick(msg.seq)

	case analysisDoneMsg:
		return m.handleAnalysisDone(msg)

	case historyLoadedMsg:
		m.entries = msg.entries
		return m, nil

	case historySavedMsg:
		if msg.err != nil {
			log.Errorf("history save: %v", msg.err)
			return m, nil
		}
		m.entries = msg.entries
		return m, nil

	case chatReplyMsg:
		m.chatLoading = false
		m.chat = append(m.chat, analysis.ChatMessage{Role: analysis.RoleModel, Text: msg.text})
		return m, nil

	case alternativeMsg:
		m.altLoading = false
		if msg.err != nil {
			log.Errorf("alternative request: %v", msg.err)
			return m, nil
		}
		m.alternative = msg.alt
		return m, nil

	case speechReadyMsg:
		if msg.seq != m.audioSeq {
			return m, nil
		}
		m.audioLoading = false
		if msg.err != nil {
			log.Errorf("speech request: %v", msg.err)
			return m, nil
		}
		h, err := m.player.Play(msg.wavData)
		if err != nil {
			log.Errorf("playback: %v", err)
			return m, nil
		}
		m.audio = h
		return m, watchAudio(h, msg.seq)

	case audioDoneMsg:
		if msg.seq != m.audioSeq {
			return m, nil
		}
		m.audio = nil
		return m, nil

	case sharedMsg:
		if msg.err != nil {
			log.Errorf("clipboard copy: %v", msg.err)
			return m, nil
		}
		m.shared = true
		return m, nil
	}
	return m, nil
}

func (m model) handleAnalysisDone(msg analysisDoneMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.seq {
		return m, nil
	}
	m.stopProgress()

	if msg.err != nil {
		log.Errorf("analysis: %v", msg.err)
		m.state = stateError
		m.errText = "Analysis failed. Check your connection and API key, then try again."
		return m, nil
	}

	m.state = stateResult
	m.active = msg.result
	m.sourceText = msg.source
	m.activeCard = 0

	log.Analysis(string(m.profile), msg.result.HealthScore, msg.result.VerdictShort, len(msg.result.IngredientsBreakdown))
	log.VerdictText(fmt.Sprintf("%s (%d/100)", msg.result.VerdictShort, msg.result.HealthScore))

	entry := history.NewEntry(msg.source, m.profile, *msg.result)
	return m, m.persistCmd(entry)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.state {
	case stateIdle:
		return m.handleIdleKey(msg)
	case stateResult:
		return m.handleResultKey(msg)
	case stateError:
		switch msg.String() {
		case "esc", "enter", "n":
			m.reset()
		}
		return m, nil
	}
	// Scanning and analyzing ignore input until the request settles.
	return m, nil
}

func (m model) handleIdleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+p":
		m.profile = m.profile.Next()
		return m, nil

	case "ctrl+o":
		m.imageMode = !m.imageMode
		m.input = ""
		m.note = ""
		return m, nil

	case "ctrl+x":
		m.entries = nil
		m.histSel = -1
		if m.store != nil {
			store := m.store
			return m, func() tea.Msg {
				if err := store.Clear(); err != nil {
					log.Errorf("history clear: %v", err)
				}
				return nil
			}
		}
		return m, nil

	case "tab":
		if m.imageMode {
			return m, nil
		}
		m.input = demoScenarios[m.demoIdx].text
		m.note = "demo: " + demoScenarios[m.demoIdx].label
		m.demoIdx = (m.demoIdx + 1) % len(demoScenarios)
		return m, nil

	case "up":
		if m.input == "" && len(m.entries) > 0 {
			if m.histSel < 0 {
				m.histSel = 0
			} else if m.histSel > 0 {
				m.histSel--
			}
		}
		return m, nil

	case "down":
		if m.input == "" && len(m.entries) > 0 && m.histSel < len(m.entries)-1 {
			m.histSel++
		}
		return m, nil

	case "enter":
		return m.handleIdleEnter()

	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil

	case "esc":
		m.input = ""
		m.imageMode = false
		m.note = ""
		m.histSel = -1
		return m, nil
	}

	switch msg.Type {
	case tea.KeyRunes:
		m.histSel = -1
		m.input += string(msg.Runes)
	case tea.KeySpace:
		m.histSel = -1
		m.input += " "
	}
	return m, nil
}

func (m model) handleIdleEnter() (tea.Model, tea.Cmd) {
	// An explicit selection wins over an empty input line.
	if m.input == "" && m.histSel >= 0 && m.histSel < len(m.entries) {
		e := m.entries[m.histSel]
		m.state = stateResult
		result := e.Result
		m.active = &result
		m.sourceText = e.Source
		m.activeCard = 0
		m.shared = false
		return m, nil
	}

	if m.imageMode {
		return m.submitImage()
	}

	if len(strings.TrimSpace(m.input)) < 3 {
		m.note = "Please enter some ingredients."
		return m, nil
	}

	m.state = stateScanning
	m.seq++
	m.loadingStep = 0
	seq := m.seq
	return m, tea.Tick(scanDelay, func(time.Time) tea.Msg {
		return scanDelayMsg{seq: seq}
	})
}

func (m model) submitImage() (tea.Model, tea.Cmd) {
	path := strings.TrimSpace(m.input)
	if path == "" {
		m.note = "Enter an image path."
		return m, nil
	}

	mime := imageMime(path)
	if mime == "" {
		m.note = "Unsupported image type (use png, jpg, or webp)."
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		m.note = fmt.Sprintf("Could not read image: %v", err)
		return m, nil
	}

	// Image requests skip the scan pause and go straight to analysis.
	cmd := m.startAnalysis(prompt.Request{
		Kind:      prompt.KindImageAnalysis,
		Profile:   m.profile,
		ImageData: data,
		ImageMime: mime,
	}, "Scanned Image")
	m.imageMode = false
	return m, cmd
}

func imageMime(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return ""
}

func (m model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.chatOpen {
		return m.handleChatKey(msg)
	}

	switch msg.String() {
	case "esc", "n":
		m.reset()
		return m, nil

	case "c":
		m.chatOpen = true
		return m, nil

	case "a":
		return m.requestAlternative()

	case "s":
		return m.toggleAudio()

	case "y":
		return m, shareCmd(prompt.ShareText(m.profile, m.active))

	case "j":
		if n := len(m.active.IngredientsBreakdown); n > 0 {
			m.activeCard = (m.activeCard + 1) % n
		}
		return m, nil

	case "k":
		if n := len(m.active.IngredientsBreakdown); n > 0 {
			m.activeCard = (m.activeCard - 1 + n) % n
		}
		return m, nil

	case "1", "2", "3":
		idx := int(msg.String()[0] - '1')
		if idx < len(m.active.SuggestedQuestions) {
			return m.submitChat(m.active.SuggestedQuestions[idx])
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.chatOpen = false
		return m, nil

	case "enter":
		if strings.TrimSpace(m.chatInput) == "" {
			return m, nil
		}
		question := m.chatInput
		m.chatInput = ""
		return m.submitChat(question)

	case "backspace":
		if len(m.chatInput) > 0 {
			m.chatInput = m.chatInput[:len(m.chatInput)-1]
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyRunes:
		m.chatInput += string(msg.Runes)
	case tea.KeySpace:
		m.chatInput += " "
	}
	return m, nil
}

// submitChat sends a follow-up question. A question already in flight
// blocks new ones until its reply lands.
func (m model) submitChat(question string) (tea.Model, tea.Cmd) {
	if m.chatLoading {
		return m, nil
	}
	m.chatOpen = true
	m.chatLoading = true
	m.chat = append(m.chat, analysis.ChatMessage{Role: analysis.RoleUser, Text: question})
	return m, m.chatCmd(prompt.Request{
		Kind:     prompt.KindChat,
		Profile:  m.profile,
		Analysis: m.active,
		Question: question,
	})
}

func (m model) requestAlternative() (tea.Model, tea.Cmd) {
	// Alternatives are only offered for poor verdicts.
	if m.active.HealthScore >= 70 || m.altLoading {
		return m, nil
	}
	m.altLoading = true
	return m, m.alternativeCmd(prompt.Request{
		Kind:     prompt.KindAlternative,
		Profile:  m.profile,
		Analysis: m.active,
	})
}

func (m model) toggleAudio() (tea.Model, tea.Cmd) {
	if m.muted {
		m.note = "audio muted (-mute)"
		return m, nil
	}
	if m.audioLoading {
		return m, nil
	}
	if m.audio != nil {
		m.releaseAudio()
		return m, nil
	}
	m.audioLoading = true
	m.audioSeq++
	return m, m.speakCmd(m.audioSeq, prompt.Speech(m.active))
}
