package usecase

import (
	"testing"

	"github.com/V4T54L/udp-logview/internal/domain"
)

func visibleRaw(h *History, cfg domain.FilterConfig) []string {
	var out []string
	for r := range Visible(h, cfg) {
		out = append(out, r.Raw)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVisible(t *testing.T) {
	h := NewHistory(100, 10)
	h.Append(
		domain.Record{Raw: "[1][E][main][wifi] connect failed", Level: domain.LevelError, Task: "main", Tag: "wifi"},
		domain.Record{Raw: "[2][W][can][obd] slow PID", Level: domain.LevelWarning, Task: "can", Tag: "obd"},
		domain.Record{Raw: "[3][I][main][net] Started", Level: domain.LevelInfo, Task: "main", Tag: "net"},
		domain.Record{Raw: "[4][D][mqtt][net] publish", Level: domain.LevelDebug, Task: "mqtt", Tag: "net"},
		domain.Record{Raw: "[5][V][can][obd] frame", Level: domain.LevelVerbose, Task: "can", Tag: "obd"},
		domain.Record{Raw: "garbage STARTED", Level: domain.LevelUnknown},
	)

	tests := []struct {
		name    string
		min     domain.Level
		pattern string
		search  string
		want    []string
	}{
		{
			name: "error only",
			min:  domain.LevelError,
			want: []string{"[1][E][main][wifi] connect failed"},
		},
		{
			name: "info and above",
			min:  domain.LevelInfo,
			want: []string{"[1][E][main][wifi] connect failed", "[2][W][can][obd] slow PID", "[3][I][main][net] Started"},
		},
		{
			name: "unknown threshold shows everything",
			min:  domain.LevelUnknown,
			want: []string{"[1][E][main][wifi] connect failed", "[2][W][can][obd] slow PID", "[3][I][main][net] Started", "[4][D][mqtt][net] publish", "[5][V][can][obd] frame", "garbage STARTED"},
		},
		{
			name:    "pattern matches tag or task",
			min:     domain.LevelVerbose,
			pattern: "^(net|can)$",
			want:    []string{"[2][W][can][obd] slow PID", "[3][I][main][net] Started", "[4][D][mqtt][net] publish", "[5][V][can][obd] frame"},
		},
		{
			name:   "search is case insensitive on raw",
			min:    domain.LevelUnknown,
			search: "started",
			want:   []string{"[3][I][main][net] Started", "garbage STARTED"},
		},
		{
			name:    "invalid pattern behaves as absent",
			min:     domain.LevelWarning,
			pattern: "([",
			want:    []string{"[1][E][main][wifi] connect failed", "[2][W][can][obd] slow PID"},
		},
		{
			name:    "all predicates together",
			min:     domain.LevelDebug,
			pattern: "net",
			search:  "PUB",
			want:    []string{"[4][D][mqtt][net] publish"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.NewFilterConfig(tt.min)
			cfg.SetPattern(tt.pattern)
			cfg.SetSearch(tt.search)

			got := visibleRaw(h, cfg)
			if !equalStrings(got, tt.want) {
				t.Errorf("Visible() = %q, want %q", got, tt.want)
			}
			if n := CountVisible(h, cfg); n != len(tt.want) {
				t.Errorf("CountVisible() = %d, want %d", n, len(tt.want))
			}
		})
	}
}

func TestVisible_OrderIndependent(t *testing.T) {
	h := NewHistory(100, 10)
	levels := []domain.Level{domain.LevelError, domain.LevelWarning, domain.LevelInfo, domain.LevelDebug, domain.LevelVerbose, domain.LevelUnknown}
	tags := []string{"net", "obd", "wifi"}
	for i := 0; i < 60; i++ {
		tag := tags[i%len(tags)]
		h.Append(domain.Record{
			Raw:   "line " + tag + string(rune('a'+i%7)),
			Level: levels[i%len(levels)],
			Tag:   tag,
			Task:  "main",
		})
	}

	min := domain.LevelDebug
	pattern := "net|wifi"
	search := "C"

	all := domain.NewFilterConfig(min)
	all.SetPattern(pattern)
	all.SetSearch(search)
	want := visibleRaw(h, all)

	// Apply the predicates one at a time, in every order, through
	// intermediate buffers.
	steps := map[string]func() domain.FilterConfig{
		"level": func() domain.FilterConfig {
			return domain.NewFilterConfig(min)
		},
		"pattern": func() domain.FilterConfig {
			c := domain.NewFilterConfig(domain.LevelUnknown)
			c.SetPattern(pattern)
			return c
		},
		"search": func() domain.FilterConfig {
			c := domain.NewFilterConfig(domain.LevelUnknown)
			c.SetSearch(search)
			return c
		},
	}
	orders := [][]string{
		{"level", "pattern", "search"},
		{"level", "search", "pattern"},
		{"pattern", "level", "search"},
		{"pattern", "search", "level"},
		{"search", "level", "pattern"},
		{"search", "pattern", "level"},
	}

	for _, order := range orders {
		current := h
		for _, step := range order {
			next := NewHistory(100, 10)
			for r := range Visible(current, steps[step]()) {
				next.Append(r)
			}
			current = next
		}
		got := visibleRaw(current, domain.NewFilterConfig(domain.LevelUnknown))
		if !equalStrings(got, want) {
			t.Errorf("order %v: got %q, want %q", order, got, want)
		}
	}
}

func TestVisible_Restartable(t *testing.T) {
	h := NewHistory(100, 10)
	h.Append(domain.Record{Raw: "a", Level: domain.LevelError})
	cfg := domain.NewFilterConfig(domain.LevelInfo)

	seq := Visible(h, cfg)
	first := 0
	for range seq {
		first++
	}

	h.Append(domain.Record{Raw: "b", Level: domain.LevelWarning})
	second := 0
	for range seq {
		second++
	}

	if first != 1 || second != 2 {
		t.Errorf("expected the sequence to re-read the buffer, got %d then %d", first, second)
	}
}
