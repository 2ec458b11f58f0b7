package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Audit actions recorded by the QA services.
const (
	ActionVerifyCompleted     = "verify.completed"
	ActionSweepCompleted      = "sweep.completed"
	ActionCalibrationAdjusted = "calibration.adjusted"
	ActionProfilesInitialized = "profiles.initialized"
	ActionRunCompleted        = "run.completed"
)

// Event is one entry of the hash-chained audit trail.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	Actor     string         `json:"actor"` // "cli", "mcp" or "watch"
	Metadata  map[string]any `json:"metadata,omitempty"`
	PrevHash  string         `json:"prev_hash,omitempty"`
	Hash      string         `json:"hash,omitempty"`
}

// CalculateHash is sha256 over PrevHash, ID, Timestamp, Action, Actor and the
// canonical metadata, in that order.
func (e *Event) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.Format(time.RFC3339Nano)))
	h.Write([]byte(e.Action))
	h.Write([]byte(e.Actor))
	h.Write([]byte(canonicalJSON(e.Metadata)))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON renders metadata with sorted keys.
func canonicalJSON(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]byte, 0, 256)
	out = append(out, '{')
	for i, k := range keys {
		if i > 0 {
			out = append(out, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		out = append(out, keyJSON...)
		out = append(out, ':')
		out = append(out, valJSON...)
	}
	out = append(out, '}')
	return string(out)
}

// VerifyChain walks events in order and returns one line per broken link.
// An empty result means the trail is intact.
func VerifyChain(events []Event) []string {
	var violations []string
	prev := ""
	for i := range events {
		ev := &events[i]
		if ev.PrevHash != prev {
			violations = append(violations, fmt.Sprintf("event %d (%s): previous hash mismatch", i, ev.ID))
		}
		if ev.CalculateHash() != ev.Hash {
			violations = append(violations, fmt.Sprintf("event %d (%s): content hash mismatch", i, ev.ID))
		}
		prev = ev.Hash
	}
	return violations
}
