package main

import (
	"nutrinode/analysis"
	"nutrinode/history"
)

// Messages delivered to the session model. Async results carry the
// sequence number of the request that produced them so replies from a
// superseded request can be discarded.

type scanDelayMsg struct{ seq int }

type progressTickMsg struct{ seq int }

type analysisDoneMsg struct {
	seq    int
	result *analysis.Result
	source string
	err    error
}

type historyLoadedMsg struct{ entries []history.Entry }

type historySavedMsg struct {
	entries []history.Entry
	err     error
}

type chatReplyMsg struct{ text string }

type alternativeMsg struct {
	alt *analysis.Alternative
	err error
}

type speechReadyMsg struct {
	seq     int
	wavData []byte
	err     error
}

type audioDoneMsg struct{ seq int }

type sharedMsg struct{ err error }
