package quality

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/ntoledo319/HELLDECK/internal/jsonorder"
)

// IssueCount is one histogram bucket.
type IssueCount struct {
	Kind  string
	Count int
}

func (c IssueCount) String() string {
	return fmt.Sprintf("%s×%d", c.Kind, c.Count)
}

// Histogram counts issue kinds and remembers the order kinds were first seen,
// which breaks ties when ranking. It serializes as a JSON object in that order.
type Histogram struct {
	buckets []IssueCount
	index   map[string]int
}

// Add increments kind by n.
func (h *Histogram) Add(kind string, n int) {
	if h.index == nil {
		h.index = make(map[string]int)
	}
	if i, ok := h.index[kind]; ok {
		h.buckets[i].Count += n
		return
	}
	h.index[kind] = len(h.buckets)
	h.buckets = append(h.buckets, IssueCount{Kind: kind, Count: n})
}

// Count returns the count for kind.
func (h *Histogram) Count(kind string) int {
	if i, ok := h.index[kind]; ok {
		return h.buckets[i].Count
	}
	return 0
}

// Len is the number of distinct kinds.
func (h *Histogram) Len() int {
	return len(h.buckets)
}

// Buckets returns the buckets in first-seen order.
func (h *Histogram) Buckets() []IssueCount {
	return slices.Clone(h.buckets)
}

// Merge adds other's counts into h, appending kinds h has not seen.
func (h *Histogram) Merge(other *Histogram) {
	if other == nil {
		return
	}
	for _, b := range other.buckets {
		h.Add(b.Kind, b.Count)
	}
}

// Clone returns an independent copy.
func (h *Histogram) Clone() *Histogram {
	out := &Histogram{}
	out.Merge(h)
	return out
}

// Ranked orders buckets by count, highest first. Equal counts keep first-seen
// order.
func (h *Histogram) Ranked() []IssueCount {
	out := h.Buckets()
	slices.SortStableFunc(out, func(a, b IssueCount) int {
		return b.Count - a.Count
	})
	return out
}

// Top returns at most k ranked buckets. k <= 0 returns all of them.
func (h *Histogram) Top(k int) []IssueCount {
	ranked := h.Ranked()
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// FormatTop renders the top k buckets as "kind×count" joined by ", ".
func FormatTop(counts []IssueCount) string {
	if len(counts) == 0 {
		return "(none)"
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func (h Histogram) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range h.buckets {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Kind)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", b.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (h *Histogram) UnmarshalJSON(data []byte) error {
	*h = Histogram{}
	if jsonorder.IsNull(data) {
		return nil
	}
	members, err := jsonorder.Members(data)
	if err != nil {
		return fmt.Errorf("topIssues: %w", err)
	}
	for _, m := range members {
		var n float64
		if err := json.Unmarshal(m.Value, &n); err != nil {
			return fmt.Errorf("topIssues[%s]: %w", m.Key, err)
		}
		h.Add(m.Key, int(n))
	}
	return nil
}
