package codec

import (
	"testing"

	"github.com/RoseWrightdev/rtc-signal/internal/types"
)

func TestParse_KnownVerbs(t *testing.T) {
	tests := []struct {
		line        string
		wantVerb    types.Verb
		wantPayload string
	}{
		{"STATE", types.VerbState, ""},
		{"STATE ", types.VerbState, ""},
		{"CONNECTION ABCD23", types.VerbConnection, "ABCD23"},
		{"connection abcd23", types.VerbConnection, "abcd23"},
		{"OFFER v=0 some sdp text", types.VerbOffer, "v=0 some sdp text"},
		{"ICE   candidate:1 udp", types.VerbICE, "candidate:1 udp"},
		{"START_CALL", types.VerbStartCall, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			verb, payload := Parse(tt.line)
			if verb != tt.wantVerb {
				t.Errorf("Parse(%q) verb = %q, want %q", tt.line, verb, tt.wantVerb)
			}
			if payload != tt.wantPayload {
				t.Errorf("Parse(%q) payload = %q, want %q", tt.line, payload, tt.wantPayload)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{"", "   ", "FOO bar", "BOGUSVERB"}
	for _, line := range tests {
		verb, payload := Parse(line)
		if verb != types.VerbMalformed {
			t.Errorf("Parse(%q) = %q, want Malformed", line, verb)
		}
		if payload != "" {
			t.Errorf("Parse(%q) payload = %q, want empty", line, payload)
		}
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	tests := []struct {
		verb    types.Verb
		payload string
		want    string
	}{
		{types.VerbState, "Ready", "STATE Ready"},
		{types.VerbStartCall, "", "START_CALL"},
		{types.VerbConnectionResponse, "CONNECTED ABCD23", "CONNECTION_RESPONSE CONNECTED ABCD23"},
	}

	for _, tt := range tests {
		got := string(Format(tt.verb, tt.payload))
		if got != tt.want {
			t.Errorf("Format(%q, %q) = %q, want %q", tt.verb, tt.payload, got, tt.want)
		}
		verb, payload := Parse(got)
		if verb != tt.verb || payload != tt.payload {
			t.Errorf("round-trip Parse(Format(%q, %q)) = (%q, %q)", tt.verb, tt.payload, verb, payload)
		}
	}
}
