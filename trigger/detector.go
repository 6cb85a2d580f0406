package trigger

import (
	"bytes"
	"strings"
)

// DefaultKeyword is the keyword a KeywordDetector matches when none is given.
const DefaultKeyword = "malware"

// Detector inspects an ingested event message and reports whether it should
// cause a flush, and with which reason.
type Detector interface {
	Detect(msg []byte) (reason string, ok bool)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(msg []byte) (string, bool)

// Detect calls f(msg).
func (f DetectorFunc) Detect(msg []byte) (string, bool) {
	return f(msg)
}

// KeywordDetector fires when a message contains one of its keywords, ignoring
// case. The reason is the matching keyword in lower case.
type KeywordDetector struct {
	keywords [][]byte
}

// NewKeywordDetector creates a detector for keywords. Empty keywords are ignored;
// with no usable keyword the detector matches DefaultKeyword.
func NewKeywordDetector(keywords ...string) *KeywordDetector {
	d := &KeywordDetector{}
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			d.keywords = append(d.keywords, []byte(kw))
		}
	}
	if len(d.keywords) == 0 {
		d.keywords = [][]byte{[]byte(DefaultKeyword)}
	}

	return d
}

// Keywords returns the lower-cased keywords in match order.
func (d *KeywordDetector) Keywords() []string {
	out := make([]string, len(d.keywords))
	for i, kw := range d.keywords {
		out[i] = string(kw)
	}

	return out
}

// Detect reports the first keyword found in msg.
func (d *KeywordDetector) Detect(msg []byte) (string, bool) {
	lower := bytes.ToLower(msg)
	for _, kw := range d.keywords {
		if bytes.Contains(lower, kw) {
			return string(kw), true
		}
	}

	return "", false
}
