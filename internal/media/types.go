// Package media defines shared types for the vidresolve engine.
package media

import (
	"fmt"
	"strings"
)

// HostKind identifies the video host family a source URL belongs to.
type HostKind int

const (
	Generic HostKind = iota
	CDA
	VK
	Sibnet
	GoogleDrive
	Mega
	Dailymotion
	Luluvdo
	Lycrois
)

var hostNames = map[HostKind]string{
	Generic:     "generic",
	CDA:         "cda",
	VK:          "vk",
	Sibnet:      "sibnet",
	GoogleDrive: "gdrive",
	Mega:        "mega",
	Dailymotion: "dailymotion",
	Luluvdo:     "luluvdo",
	Lycrois:     "lycrois",
}

func (h HostKind) String() string {
	if name, ok := hostNames[h]; ok {
		return name
	}
	return "unknown"
}

// ParseHostKind is the inverse of String.
func ParseHostKind(s string) (HostKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for kind, name := range hostNames {
		if name == s {
			return kind, nil
		}
	}
	return Generic, fmt.Errorf("unknown host kind %q", s)
}

func (h HostKind) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HostKind) UnmarshalText(b []byte) error {
	kind, err := ParseHostKind(string(b))
	if err != nil {
		return err
	}
	*h = kind
	return nil
}
