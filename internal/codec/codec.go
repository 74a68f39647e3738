// Package codec implements the signaling server's wire format: one line
// per message, `VERB[ PAYLOAD]`. Parse and Format are pure functions;
// neither touches network, clock, or coordinator state.
package codec

import (
	"strings"

	"github.com/RoseWrightdev/rtc-signal/internal/types"
)

var knownVerbs = map[string]types.Verb{
	string(types.VerbWaitingForConnectionCode): types.VerbWaitingForConnectionCode,
	string(types.VerbState):                    types.VerbState,
	string(types.VerbConnection):               types.VerbConnection,
	string(types.VerbConnectionResponse):        types.VerbConnectionResponse,
	string(types.VerbStartCall):                types.VerbStartCall,
	string(types.VerbOffer):                    types.VerbOffer,
	string(types.VerbAnswer):                   types.VerbAnswer,
	string(types.VerbICE):                      types.VerbICE,
}

// Parse splits one inbound frame into (verb, payload). The first
// whitespace-delimited token is upper-cased and compared against the known
// verb set; the remainder, with leading whitespace stripped, is the
// payload. An unrecognized verb yields (types.VerbMalformed, "").
func Parse(line string) (types.Verb, string) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return types.VerbMalformed, ""
	}

	idx := strings.IndexAny(trimmed, " \t")
	var tag, rest string
	if idx < 0 {
		tag = trimmed
	} else {
		tag = trimmed[:idx]
		rest = strings.TrimLeft(trimmed[idx+1:], " \t")
	}

	verb, ok := knownVerbs[strings.ToUpper(tag)]
	if !ok {
		return types.VerbMalformed, ""
	}
	return verb, rest
}

// Format renders one outbound message as "VERB payload" (or just "VERB"
// when payload is empty). The single-space separator matches what Parse
// accepts, and Parse also tolerates a trailing space with empty payload.
func Format(verb types.Verb, payload string) []byte {
	if payload == "" {
		return []byte(string(verb))
	}
	return []byte(string(verb) + " " + payload)
}
