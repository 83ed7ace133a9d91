package evidence

import (
	"testing"
	"time"

	"shoebox/internal/media"
	"shoebox/internal/sidecar"
)

type fakeTags struct {
	ts time.Time
	ok bool
}

func (f fakeTags) TryExtractCaptureTime(string) (time.Time, bool) {
	return f.ts, f.ok
}

type fakeProbe struct {
	ts time.Time
	ok bool
}

func (f fakeProbe) MediaCreationTime(string) (time.Time, bool) {
	return f.ts, f.ok
}

func candidate(name string, modYear int) media.Candidate {
	return media.Candidate{
		Path:    "/in/" + name,
		Kind:    media.KindImage,
		ModTime: time.Date(modYear, time.March, 4, 12, 0, 0, 0, time.UTC),
	}
}

func TestResolvePrimaryMetadataWins(t *testing.T) {
	r := NewResolver(Options{SuspectYear: 2026})
	doc := &sidecar.Document{PhotoTaken: &sidecar.TimeField{Timestamp: "1700000000"}}

	// The misleading 10-digit number in the name must not matter.
	d := r.Resolve(candidate("IMG_1577836800.jpg", 2026), doc)

	if !d.Confirmed() || d.Source != SourcePrimaryMetadata || d.Year != "2023" {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if d.FsYear != "2026" {
		t.Fatalf("fs year = %q", d.FsYear)
	}
}

func TestResolveEmbeddedTagSecondPriority(t *testing.T) {
	r := NewResolver(Options{
		Tags:        fakeTags{ts: time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC), ok: true},
		SuspectYear: 2026,
	})

	d := r.Resolve(candidate("IMG_20140512_1000.jpg", 2026), nil)

	if !d.Confirmed() || d.Source != SourceEmbeddedTag || d.Year != "2019" {
		t.Fatalf("embedded tag should preempt filename: %+v", d)
	}
}

func TestResolveFilenameScenario(t *testing.T) {
	r := NewResolver(Options{SuspectYear: 2026})

	d := r.Resolve(candidate("IMG_20140512_1000.jpg", 2026), nil)

	if !d.Confirmed() || d.Source != SourceFilename || d.Year != "2014" {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestResolveContaminationGuardDowngrades(t *testing.T) {
	suspect := 2026
	r := NewResolver(Options{
		Tags:        fakeTags{ts: time.Date(suspect, 1, 2, 0, 0, 0, 0, time.UTC), ok: true},
		SuspectYear: suspect,
	})

	d := r.Resolve(candidate("IMG_0001.jpg", suspect), nil)

	if d.Confirmed() {
		t.Fatalf("suspect-year evidence must not confirm: %+v", d)
	}
	if d.Source != SourceContaminationGuard || d.Year != "2026" {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestResolveSecondaryMetadataStaysUncertain(t *testing.T) {
	r := NewResolver(Options{SuspectYear: 2026})
	doc := &sidecar.Document{Creation: &sidecar.TimeField{Timestamp: "1400000000"}}

	d := r.Resolve(candidate("IMG_0001.jpg", 2022), doc)

	if d.Confirmed() {
		t.Fatalf("secondary metadata must never confirm: %+v", d)
	}
	if d.Source != SourceSecondaryMetadata || d.Year != "2014" {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestResolveFilesystemFallbackNeverConfirms(t *testing.T) {
	r := NewResolver(Options{SuspectYear: 2026})

	d := r.Resolve(candidate("holiday.jpg", 2018), nil)

	if d.Confirmed() {
		t.Fatalf("fs fallback must never confirm: %+v", d)
	}
	if d.Source != SourceFilesystemFallback || d.Year != "2018" || d.FsYear != "2018" {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestResolveMediaPropertySwitch(t *testing.T) {
	probe := fakeProbe{ts: time.Date(2017, 9, 9, 0, 0, 0, 0, time.UTC), ok: true}
	cand := candidate("IMG_20140512.jpg", 2026)

	enabled := NewResolver(Options{Probe: probe, UseProbe: true, SuspectYear: 2026})
	d := enabled.Resolve(cand, nil)
	if !d.Confirmed() || d.Source != SourceMediaProperty || d.Year != "2017" {
		t.Fatalf("enabled probe should outrank filename: %+v", d)
	}

	disabled := NewResolver(Options{Probe: probe, UseProbe: false, SuspectYear: 2026})
	d = disabled.Resolve(cand, nil)
	if d.Source != SourceFilename || d.Year != "2014" {
		t.Fatalf("disabled probe must be ignored: %+v", d)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewResolver(Options{SuspectYear: 2026})
	doc := &sidecar.Document{PhotoTaken: &sidecar.TimeField{Timestamp: "1700000000"}}
	cand := candidate("IMG_0001.jpg", 2026)

	first := r.Resolve(cand, doc)
	second := r.Resolve(cand, doc)
	if first != second {
		t.Fatalf("resolver not idempotent: %+v vs %+v", first, second)
	}
}
