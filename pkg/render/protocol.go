// Package render turns image files into terminal escape sequences for the
// photos widget. It picks the best graphics protocol the terminal
// supports (Kitty, iTerm2, Sixel) and falls back to Unicode halfblocks
// with true color everywhere else.
package render

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// Protocol identifies a terminal graphics protocol.
type Protocol int

const (
	ProtocolHalfblocks Protocol = iota
	ProtocolKitty
	ProtocolITerm2
	ProtocolSixel
	ProtocolNone
)

func (p Protocol) String() string {
	switch p {
	case ProtocolHalfblocks:
		return "halfblocks"
	case ProtocolKitty:
		return "kitty"
	case ProtocolITerm2:
		return "iterm2"
	case ProtocolSixel:
		return "sixel"
	default:
		return "none"
	}
}

// DetectProtocol inspects the environment for the richest protocol the
// terminal supports. Over SSH the pixel protocols are unreliable, so it
// degrades to halfblocks there.
func DetectProtocol() Protocol {
	if isSSH() {
		return ProtocolHalfblocks
	}

	term := os.Getenv("TERM")
	program := os.Getenv("TERM_PROGRAM")

	switch {
	case os.Getenv("KITTY_WINDOW_ID") != "" || strings.Contains(term, "kitty"):
		return ProtocolKitty
	case program == "iTerm.app" || program == "WezTerm":
		return ProtocolITerm2
	case program == "ghostty" || strings.Contains(term, "ghostty"):
		return ProtocolKitty
	case strings.Contains(term, "foot") || strings.Contains(term, "mlterm"):
		return ProtocolSixel
	}

	if termenv.EnvColorProfile() == termenv.TrueColor {
		return ProtocolHalfblocks
	}
	return ProtocolNone
}

// ParseProtocol maps a config override string to a Protocol. "auto" and
// unknown strings return ok=false so the caller falls back to detection.
func ParseProtocol(s string) (Protocol, bool) {
	switch strings.ToLower(s) {
	case "kitty":
		return ProtocolKitty, true
	case "iterm2":
		return ProtocolITerm2, true
	case "sixel":
		return ProtocolSixel, true
	case "halfblocks":
		return ProtocolHalfblocks, true
	case "none":
		return ProtocolNone, true
	default:
		return ProtocolHalfblocks, false
	}
}

func isSSH() bool {
	return os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != ""
}
