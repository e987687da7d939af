package domain

// Level is the single-character severity classifier carried in the second
// bracket of a wire record.
type Level rune

const (
	LevelError   Level = 'E'
	LevelWarning Level = 'W'
	LevelInfo    Level = 'I'
	LevelDebug   Level = 'D'
	LevelVerbose Level = 'V'
	LevelUnknown Level = '?'
)

// Rank orders levels from most severe (0) to least severe. Anything outside
// the known set ranks last.
func (l Level) Rank() int {
	switch l {
	case LevelError:
		return 0
	case LevelWarning:
		return 1
	case LevelInfo:
		return 2
	case LevelDebug:
		return 3
	case LevelVerbose:
		return 4
	default:
		return 5
	}
}

// AtLeast reports whether l is at least as severe as min.
func (l Level) AtLeast(min Level) bool {
	return l.Rank() <= min.Rank()
}

func (l Level) String() string {
	return string(rune(l))
}

// ParseLevel returns the level named by the first rune of s.
func ParseLevel(s string) Level {
	for _, r := range s {
		return Level(r)
	}
	return LevelUnknown
}

// Record is one received log line. Raw is kept verbatim so export and text
// search never depend on the structured fields.
type Record struct {
	Raw             string `json:"raw"`
	Level           Level  `json:"level"`
	TimestampMillis uint64 `json:"timestamp_ms"`
	Task            string `json:"task,omitempty"`
	Tag             string `json:"tag,omitempty"`
	Message         string `json:"message"`
	// WellFormed is false when any of the four bracketed prefix fields could
	// not be recovered and defaults were used instead.
	WellFormed bool `json:"well_formed"`
}

// MarshalText lets Level encode as a one-character JSON string.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts any string; only the first rune is kept.
func (l *Level) UnmarshalText(text []byte) error {
	*l = ParseLevel(string(text))
	return nil
}
