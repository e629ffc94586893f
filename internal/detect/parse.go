package detect

import (
	"regexp"
	"strconv"
	"strings"
)

// recordPat matches one detection line: "[DETECTED] <label>: <percent>%".
// Labels may contain spaces and colons; the last ": <n>%" wins.
var recordPat = regexp.MustCompile(`^\[DETECTED\] (.+): ([0-9]+)%$`)

// ParseRecords extracts detection records from the tool's merged output.
// Lines that do not match the marker grammar are ignored; the tool is chatty
// and interleaves layer dumps and timing noise with the lines we want.
func ParseRecords(output string) []Record {
	var records []Record
	for _, line := range strings.Split(output, "\n") {
		m := recordPat.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		pct, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		records = append(records, Record{Label: m[1], Confidence: pct})
	}
	return records
}
