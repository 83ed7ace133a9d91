package evidence

import "testing"

func TestYearFromFilenameNumeric(t *testing.T) {
	cases := []struct {
		name string
		year int
		ok   bool
	}{
		{"IMG_20140512_1000.jpg", 2014, true},
		{"2016-08-01 13.44.15.jpg", 2016, true},
		{"2016_08_01.png", 2016, true},
		{"20140512103045.mp4", 2014, true},
		{"VID_19991231.avi", 1999, true},
		// Mixed separators mark an ID, not a date.
		{"2014-05_12.jpg", 0, false},
		// Month 13 is not a date.
		{"20141301.jpg", 0, false},
		// Date digits embedded in a longer run must not match.
		{"320140512.jpg", 0, false},
		{"IMG_201405123.jpg", 0, false},
		{"holiday.jpg", 0, false},
	}
	for _, tc := range cases {
		year, ok := yearFromFilename(tc.name, 2026)
		if ok != tc.ok || (ok && year != tc.year) {
			t.Fatalf("yearFromFilename(%q) = %d, %v; want %d, %v", tc.name, year, ok, tc.year, tc.ok)
		}
	}
}

func TestYearFromFilenameKoreanPhrase(t *testing.T) {
	cases := []struct {
		name string
		year int
		ok   bool
	}{
		{"2014년 5월 12일 오전 10:00.jpg", 2014, true},
		{"2014년 5월 12일 오후 3:22.jpg", 2014, true},
		{"2021년12월3일.jpg", 2021, true},
		// Hour 13 cannot carry a morning/afternoon marker.
		{"2014년 5월 12일 오후 13:00.jpg", 0, false},
		{"2014년 13월 1일.jpg", 0, false},
	}
	for _, tc := range cases {
		year, ok := yearFromFilename(tc.name, 2026)
		if ok != tc.ok || (ok && year != tc.year) {
			t.Fatalf("yearFromFilename(%q) = %d, %v; want %d, %v", tc.name, year, ok, tc.year, tc.ok)
		}
	}
}

func TestYearFromFilenameEpoch(t *testing.T) {
	cases := []struct {
		name string
		year int
		ok   bool
	}{
		// 2023-11-14 in epoch seconds.
		{"1700000000.jpg", 2023, true},
		// Same instant in milliseconds.
		{"1700000000000.mp4", 2023, true},
		// 2009 predates the epoch-second gate.
		{"1230768000.jpg", 0, false},
		// Far-future instants are IDs.
		{"4102444800.jpg", 0, false},
		// 9-digit runs are never epochs.
		{"123456789.jpg", 0, false},
	}
	for _, tc := range cases {
		year, ok := yearFromFilename(tc.name, 2026)
		if ok != tc.ok || (ok && year != tc.year) {
			t.Fatalf("yearFromFilename(%q) = %d, %v; want %d, %v", tc.name, year, ok, tc.year, tc.ok)
		}
	}
}

func TestNumericPatternBeatsEpoch(t *testing.T) {
	year, ok := yearFromFilename("20160801_1444_1700000000.jpg", 2026)
	if !ok || year != 2016 {
		t.Fatalf("got %d, %v; numeric family must win", year, ok)
	}
}
