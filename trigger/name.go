package trigger

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	namePrefix = "flush_"
	nameSuffix = ".ttfr"

	// TimeLayout formats the instant part of an artifact name.
	TimeLayout = "2006-01-02_15-04-05"
)

// NameFor returns the artifact name for a flush with the given reason at now.
func NameFor(reason string, now time.Time) string {
	var sb strings.Builder
	sb.Grow(len(namePrefix) + len(reason) + 1 + len(TimeLayout) + len(nameSuffix))
	sb.WriteString(namePrefix)
	sb.WriteString(strings.ReplaceAll(reason, " ", "_"))
	sb.WriteByte('_')
	sb.WriteString(now.Format(TimeLayout))
	sb.WriteString(nameSuffix)

	return sb.String()
}

// namerRetainSeconds is how far behind the newest second a Namer still remembers
// issued names. Flushes running concurrently may ask for names out of order.
const namerRetainSeconds = 60

// Namer issues artifact names that are unique within its lifetime for any one
// second: the first flush keeps the plain NameFor result, later flushes with the
// same name get _2, _3, ... inserted before the extension. Names are remembered for
// namerRetainSeconds behind the newest second seen.
//
// Namer is safe for concurrent use. The zero value is ready to use.
type Namer struct {
	mu     sync.Mutex
	newest int64
	issued map[int64]map[string]int
}

// NewNamer returns an empty Namer.
func NewNamer() *Namer {
	return &Namer{}
}

// Name returns a collision-free name for reason at now.
func (n *Namer) Name(reason string, now time.Time) string {
	base := NameFor(reason, now)
	sec := now.Unix()

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.issued == nil {
		n.issued = make(map[int64]map[string]int)
		n.newest = sec
	}
	if sec > n.newest {
		n.newest = sec
		for s := range n.issued {
			if s < sec-namerRetainSeconds {
				delete(n.issued, s)
			}
		}
	}

	names, ok := n.issued[sec]
	if !ok {
		names = make(map[string]int)
		n.issued[sec] = names
	}
	names[base]++
	count := names[base]
	if count == 1 {
		return base
	}

	return strings.TrimSuffix(base, nameSuffix) + "_" + strconv.Itoa(count) + nameSuffix
}
