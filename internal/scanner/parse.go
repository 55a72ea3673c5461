package scanner

import (
	"regexp"
	"strconv"
	"strings"
)

// Unicode bidi control characters that Travian's client wraps digit runs
// in for right-to-left-safe rendering. They must be stripped before any
// numeric parse.
const (
	bidiPopDirectionalFormatting = "‬"
	bidiLeftToRightOverride      = "‭"
)

var thousandsSeparators = strings.NewReplacer(
	bidiPopDirectionalFormatting, "",
	bidiLeftToRightOverride, "",
	",", "",
	".", "",
	" ", "",
	" ", "",
)

// parseInt extracts the first signed integer found in s, after stripping
// bidi controls and thousand separators. Returns ok=false if none is
// found.
func parseInt(s string) (int, bool) {
	cleaned := thousandsSeparators.Replace(s)
	cleaned = strings.TrimSpace(cleaned)
	m := intPattern.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

var intPattern = regexp.MustCompile(`-?\d+`)

var (
	gidPattern          = regexp.MustCompile(`\bg(\d+)\b`)
	buildingSlotPattern = regexp.MustCompile(`buildingSlot(\d+)`)
	levelPattern        = regexp.MustCompile(`level(\d+)`)
)

// extractGID pulls a building gid out of a space-separated class token
// list, e.g. "buildingSlot3 g19 level5" -> 19.
func extractGID(classes string) (int, bool) {
	m := gidPattern.FindStringSubmatch(classes)
	if m == nil {
		return 0, false
	}
	return strconv.Atoi(m[1])
}

// extractSlotID pulls a building slot id out of a class token list.
func extractSlotID(classes string) (int, bool) {
	m := buildingSlotPattern.FindStringSubmatch(classes)
	if m == nil {
		return 0, false
	}
	return strconv.Atoi(m[1])
}

// extractLevel pulls a building level out of a class token list.
func extractLevel(classes string) (int, bool) {
	m := levelPattern.FindStringSubmatch(classes)
	if m == nil {
		return 0, false
	}
	return strconv.Atoi(m[1])
}

var bidiOnly = strings.NewReplacer(
	bidiPopDirectionalFormatting, "",
	bidiLeftToRightOverride, "",
)

// parseFloat extracts the first decimal number found in s, after stripping
// bidi controls only — unlike parseInt, "." must survive as a decimal
// point.
func parseFloat(s string) (float64, bool) {
	cleaned := bidiOnly.Replace(s)
	cleaned = strings.TrimSpace(cleaned)
	m := floatPattern.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var floatPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

// parseHMSSeconds parses an "HH:MM:SS" duration string into total seconds.
func parseHMSSeconds(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return h*3600 + m*60 + sec, true
}
