package ports

import (
	"bufio"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ExtractedPort is one port-valued field found in a template.
type ExtractedPort struct {
	Key     string `json:"key"`
	Section string `json:"section"`
	Value   int    `json:"value"`
	Offset  int    `json:"offset"`
}

var (
	sectionHeaderRe = regexp.MustCompile(`^\[\[?\s*([A-Za-z0-9_.\-"]+)\s*\]\]?`)
	portFieldRe     = regexp.MustCompile(`(?i)^([A-Za-z0-9_\-]*port[A-Za-z0-9_\-]*)\s*=\s*(\d+)`)
)

// Extract returns every port field in templateText sorted ascending by value.
// Fields are only recognised when the key starts the trimmed line, so
// commented-out assignments are ignored.
func Extract(templateText string) []ExtractedPort {
	var found []ExtractedPort
	section := ""

	scanner := bufio.NewScanner(strings.NewReader(templateText))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if m := sectionHeaderRe.FindStringSubmatch(line); m != nil {
			section = strings.ReplaceAll(m[1], `"`, "")
			continue
		}
		m := portFieldRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		found = append(found, ExtractedPort{
			Key:     m[1],
			Section: section,
			Value:   value,
		})
	}

	if len(found) == 0 {
		return found
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Value < found[j].Value
	})
	lowest := found[0].Value
	for i := range found {
		found[i].Offset = found[i].Value - lowest
	}
	return found
}

// MinPort returns the lowest extracted value, or 0 when there are none.
func MinPort(extracted []ExtractedPort) int {
	if len(extracted) == 0 {
		return 0
	}
	lowest := extracted[0].Value
	for _, p := range extracted[1:] {
		if p.Value < lowest {
			lowest = p.Value
		}
	}
	return lowest
}

// QualifiedKey returns section.key, or just key for top-level fields.
func (p ExtractedPort) QualifiedKey() string {
	if p.Section == "" {
		return p.Key
	}
	return p.Section + "." + p.Key
}
