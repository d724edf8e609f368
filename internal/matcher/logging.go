package matcher

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/logging"
)

type LogMode int

const (
	LogModeQuiet LogMode = iota
	LogModeSummary
	LogModeVerbose
)

func ParseLogMode(input string) LogMode {
	switch strings.ToLower(input) {
	case "summary":
		return LogModeSummary
	case "verbose":
		return LogModeVerbose
	default:
		return LogModeQuiet
	}
}

// Logger reports match outcomes and appends matched pairs to a JSON lines file.
type Logger struct {
	mode LogMode
	path string
	mu   sync.Mutex
}

// NewLogger builds a logger; an empty path disables the match file.
func NewLogger(mode LogMode, path string) *Logger {
	return &Logger{mode: mode, path: path}
}

func (l *Logger) Enabled() bool {
	return l != nil && l.mode != LogModeQuiet
}

func (l *Logger) LogOutcome(target collectors.Event, out Outcome) {
	if !l.Enabled() {
		return
	}
	switch out.Status {
	case StatusMatched:
		m := out.Match
		if l.mode == LogModeVerbose {
			logging.WithFields(logging.Fields{
				"target":    target,
				"candidate": m.Candidate,
				"swapped":   m.Swapped,
			}).Info("[matcher] matched")
		} else {
			logging.Infof("[matcher] matched %s -> %s swapped=%v", Describe(target), Describe(m.Candidate), m.Swapped)
		}
		l.appendToFile(out)
	case StatusAmbiguous:
		ids := make([]string, 0, len(out.Candidates))
		for _, c := range out.Candidates {
			ids = append(ids, c.Candidate.ID)
		}
		logging.Warnf("[matcher] ambiguous %s: %d candidates %v", Describe(target), len(ids), ids)
	default:
		if l.mode == LogModeVerbose {
			logging.Infof("[matcher] no match for %s", Describe(target))
		}
	}
}

func (l *Logger) appendToFile(out Outcome) {
	if l.path == "" {
		return
	}
	entry := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"target":    out.Match.Target,
		"candidate": out.Match.Candidate,
		"swapped":   out.Match.Swapped,
	}
	if out.Verdict != nil {
		entry["verdict"] = out.Verdict
	}
	data, err := json.Marshal(entry)
	if err != nil {
		logging.Errorf("[matcher] log file marshal error: %v", err)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logging.Errorf("[matcher] log file open error: %v", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		logging.Errorf("[matcher] log file write error: %v", err)
	}
}
