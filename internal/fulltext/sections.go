// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fulltext

import (
	"fmt"
	"regexp"
	"strings"
)

// sectionState identifies which target section, if any, is being accumulated.
type sectionState int

const (
	stateNone sectionState = iota
	stateIntroduction
	stateRelatedWork
	stateMethod
	stateConclusion
)

// sectionOrder fixes the output order of extracted sections.
var sectionOrder = []sectionState{stateIntroduction, stateRelatedWork, stateMethod, stateConclusion}

// sectionNames maps states to their report banner names.
var sectionNames = map[sectionState]string{
	stateIntroduction: "Introduction",
	stateRelatedWork:  "Related Work",
	stateMethod:       "Method",
	stateConclusion:   "Conclusion",
}

// sectionPatterns matches heading lines for each target section. Extracted
// text is noisy, so headings appear in many shapes: "Introduction",
// "1. Introduction", "2 Related Works", "BACKGROUND", and so on.
var sectionPatterns = map[sectionState][]*regexp.Regexp{
	stateIntroduction: {
		regexp.MustCompile(`(?i)^\s*(?:1\.?\s*)?introduction\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:1\.?\s*)?intro\s*$`),
	},
	stateRelatedWork: {
		regexp.MustCompile(`(?i)^\s*(?:2\.?\s*)?related\s+works?\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:2\.?\s*)?related\s+literature\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:2\.?\s*)?background\s*$`),
	},
	stateMethod: {
		regexp.MustCompile(`(?i)^\s*(?:3\.?\s*)?methods?\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:3\.?\s*)?methodology\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:3\.?\s*)?approach\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:3\.?\s*)?proposed\s+method\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:3\.?\s*)?our\s+method\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:3\.?\s*)?methodology\s+and\s+approach\s*$`),
	},
	stateConclusion: {
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?conclusions?\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?summary\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?discussion\s+and\s+conclusion\s*$`),
	},
}

// numberedHeading matches generic numbered headings like "4 Experiments".
// Hitting one closes the open section, unless that section is Conclusion.
var numberedHeading = regexp.MustCompile(`^\s*\d+\.?\s+[A-Z]`)

// sectionCharCap bounds each extracted section.
const sectionCharCap = 8000

const truncationMarker = "\n\n[Note: section truncated]"

// matchSection returns the target section a line opens, or stateNone.
// Banner wrapping from a previous extraction pass ("=== Introduction ===")
// is stripped before matching, so extraction is stable over its own output.
func matchSection(line string) sectionState {
	probe := strings.Trim(line, "= \t")
	for _, state := range sectionOrder {
		for _, p := range sectionPatterns[state] {
			if p.MatchString(probe) {
				return state
			}
		}
	}
	return stateNone
}

// ExtractSections locates the Introduction, Related Work, Method, and
// Conclusion sections in noisy extracted document text. It is a heuristic
// line-oriented state machine: a heading match opens a section, a later
// heading (target or generic numbered) closes it, and Conclusion absorbs
// everything to end of input since it is normally last and a premature
// close would drop content. The second return is false when no target
// section was found. Output is advisory, not a guaranteed parse.
func ExtractSections(fullText string) (string, bool) {
	lines := strings.Split(fullText, "\n")
	found := make(map[sectionState]string)

	state := stateNone
	var buf []string

	flush := func() {
		for len(buf) > 0 && strings.TrimSpace(buf[len(buf)-1]) == "" {
			buf = buf[:len(buf)-1]
		}
		if state != stateNone && len(buf) > 0 {
			found[state] = strings.Join(buf, "\n")
		}
		buf = nil
	}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		next := matchSection(line)
		if next == stateNone && i+1 < len(lines) {
			// Section titles sometimes wrap onto the following line.
			if n := matchSection(strings.TrimSpace(lines[i+1])); n != stateNone {
				next = n
				i++
				line = strings.TrimSpace(lines[i])
			}
		}

		if next != stateNone {
			flush()
			state = next
			buf = []string{line}
			continue
		}

		if state == stateNone {
			continue
		}

		if numberedHeading.MatchString(line) && state != stateConclusion {
			// A numbered heading that is not a target section ends the
			// current section; the heading line itself is dropped.
			flush()
			state = stateNone
			continue
		}

		buf = append(buf, lines[i])
	}
	flush()

	if len(found) == 0 {
		return "", false
	}

	var parts []string
	for _, s := range sectionOrder {
		text, ok := found[s]
		if !ok {
			continue
		}
		if len(text) > sectionCharCap {
			text = text[:sectionCharCap] + truncationMarker
		}
		parts = append(parts, fmt.Sprintf("=== %s ===\n%s", sectionNames[s], text))
	}
	return strings.Join(parts, "\n\n"), true
}
