package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Source reads settings from the process environment, then from Fallback.
// The zero value reads the environment only.
type Source struct {
	Fallback map[string]string
}

func (s Source) raw(name string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return strings.TrimSpace(s.Fallback[name])
}

func (s Source) Int(name string, def int) int {
	v := s.raw(name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func (s Source) Float(name string, def float64) float64 {
	v := s.raw(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func (s Source) String(name, def string) string {
	if v := s.raw(name); v != "" {
		return v
	}
	return def
}

func (s Source) Bool(name string, def bool) bool {
	switch strings.ToLower(s.raw(name)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func (s Source) Seconds(name string, def time.Duration) time.Duration {
	n := s.Int(name, -1)
	if n < 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

// List splits a comma separated setting, dropping empty entries.
func (s Source) List(name string, def []string) []string {
	raw := s.raw(name)
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// Package-level helpers read the process environment only.

func Int(name string, def int) int { return Source{}.Int(name, def) }

func String(name, def string) string { return Source{}.String(name, def) }

func Bool(name string, def bool) bool { return Source{}.Bool(name, def) }

func Seconds(name string, def time.Duration) time.Duration { return Source{}.Seconds(name, def) }

func List(name string, def []string) []string { return Source{}.List(name, def) }
