package evidence

import (
	"regexp"
	"strconv"
	"time"
)

// Filename-derived dates are tried in three parser families, first success
// wins: numeric date patterns, a Korean calendar phrase, then bare epoch
// numbers. All of them only ever contribute the year.

var numericDate = regexp.MustCompile(
	`((?:19|20)[0-9]{2})([-._ ]?)(0[1-9]|1[0-2])([-._ ]?)(0[1-9]|[12][0-9]|3[01])`)

// koreanDate matches calendar phrases like "2014년 5월 12일 오전 10:00".
var koreanDate = regexp.MustCompile(
	`((?:19|20)[0-9]{2})년\s*([0-9]{1,2})월\s*([0-9]{1,2})일(?:\s*(오전|오후)\s*([0-9]{1,2})(?::([0-9]{2}))?)?`)

var digitRun = regexp.MustCompile(`[0-9]+`)

// yearFromFilename extracts a capture year from a file name, or reports
// absence. currentYear bounds the plausibility gates on epoch numbers.
func yearFromFilename(name string, currentYear int) (int, bool) {
	if year, ok := numericDateYear(name); ok {
		return year, true
	}
	if year, ok := koreanDateYear(name); ok {
		return year, true
	}
	return epochYear(name, currentYear)
}

func numericDateYear(name string) (int, bool) {
	for _, loc := range numericDate.FindAllStringSubmatchIndex(name, -1) {
		sub := func(i int) string { return name[loc[2*i]:loc[2*i+1]] }
		// Separators must agree: 2014-05_12 is an ID, not a date.
		if sub(2) != sub(4) {
			continue
		}
		// The year must not continue a longer digit run.
		if start := loc[2]; start > 0 && isDigit(name[start-1]) {
			continue
		}
		// After the day only a non-digit, the end, or a 4/6-digit time
		// block may follow; anything else is a longer numeric ID.
		if !timeOrBoundaryFollows(name, loc[1]) {
			continue
		}
		year, _ := strconv.Atoi(sub(1))
		month, _ := strconv.Atoi(sub(3))
		day, _ := strconv.Atoi(sub(5))
		if validDate(year, month, day) {
			return year, true
		}
	}
	return 0, false
}

func koreanDateYear(name string) (int, bool) {
	m := koreanDate.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if !validDate(year, month, day) {
		return 0, false
	}
	if m[4] != "" && m[5] != "" {
		// Morning/afternoon markers map the 12-hour clock onto 24 hours;
		// only validity matters here since the year is the output.
		hour, _ := strconv.Atoi(m[5])
		if hour < 1 || hour > 12 {
			return 0, false
		}
	}
	return year, true
}

func epochYear(name string, currentYear int) (int, bool) {
	for _, run := range digitRun.FindAllString(name, -1) {
		switch len(run) {
		case 13:
			millis, err := strconv.ParseInt(run, 10, 64)
			if err != nil {
				continue
			}
			year := time.UnixMilli(millis).UTC().Year()
			if year >= 2000 && year <= currentYear+1 {
				return year, true
			}
		case 10:
			secs, err := strconv.ParseInt(run, 10, 64)
			if err != nil {
				continue
			}
			// Tight gate: 10-digit runs are mostly sequence numbers and
			// device IDs, so only recent, non-future instants count.
			year := time.Unix(secs, 0).UTC().Year()
			if year >= 2010 && year <= currentYear+1 {
				return year, true
			}
		}
	}
	return 0, false
}

func validDate(year, month, day int) bool {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

func timeOrBoundaryFollows(name string, end int) bool {
	if end >= len(name) || !isDigit(name[end]) {
		return true
	}
	run := 0
	for i := end; i < len(name) && isDigit(name[i]); i++ {
		run++
	}
	return run == 4 || run == 6
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
