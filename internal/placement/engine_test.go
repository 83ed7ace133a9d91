package placement

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"shoebox/internal/evidence"
	"shoebox/internal/healer"
	"shoebox/internal/index"
	"shoebox/internal/logging"
	"shoebox/internal/media"
	"shoebox/internal/sidecar"
)

type fixture struct {
	source string
	root   string
	ix     *index.Index
	engine *Engine
}

func newFixture(t *testing.T, dryRun bool) *fixture {
	t.Helper()
	base := t.TempDir()
	source := filepath.Join(base, "source")
	root := filepath.Join(base, "library")
	for _, dir := range []string{source, root} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	ix, err := index.Open(filepath.Join(base, "index.tsv"), logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ix.Close() })

	resolver := evidence.NewResolver(evidence.Options{SuspectYear: time.Now().Year()})
	matcher := sidecar.NewMatcher("supplemental-metadata", logging.NewNop())
	heal := healer.New(root, resolver, matcher, ix, logging.NewNop())
	return &fixture{
		source: source,
		root:   root,
		ix:     ix,
		engine: NewEngine(root, matcher, resolver, heal, ix, dryRun, logging.NewNop()),
	}
}

func (f *fixture) addMedia(t *testing.T, name, content string) media.Candidate {
	t.Helper()
	path := filepath.Join(f.source, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	mod := time.Date(2018, time.July, 1, 10, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
	kind, ok := media.ClassifyExtension(name, nil)
	if !ok {
		t.Fatalf("not a media name: %q", name)
	}
	return media.Candidate{Path: path, Kind: kind, ModTime: mod}
}

func (f *fixture) addSidecar(t *testing.T, mediaName, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.source, mediaName+".json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestProcessPlacesConfirmedFilenameDate(t *testing.T) {
	f := newFixture(t, false)
	cand := f.addMedia(t, "IMG_20140512_1000.jpg", "bytes-a")

	out, err := f.engine.Process(context.Background(), cand)
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != ActionPlaced {
		t.Fatalf("action = %q", out.Action)
	}
	want := filepath.Join("2014", "IMG_20140512_1000.jpg")
	if out.DestPath != want {
		t.Fatalf("dest = %q, want %q", out.DestPath, want)
	}
	if _, err := os.Stat(filepath.Join(f.root, want)); err != nil {
		t.Fatalf("media not placed: %v", err)
	}
	if _, err := os.Stat(cand.Path); !os.IsNotExist(err) {
		t.Fatalf("source not consumed: %v", err)
	}
	record, ok := f.ix.Lookup(out.Hash)
	if !ok || record.Path != want || record.Score != sidecar.ScoreAbsent {
		t.Fatalf("unexpected index record: %+v ok=%v", record, ok)
	}
}

func TestProcessMovesSidecarRenamed(t *testing.T) {
	f := newFixture(t, false)
	cand := f.addMedia(t, "beach.jpg", "bytes-b")
	f.addSidecar(t, "beach.jpg", `{"title":"beach.jpg","photoTakenTime":{"timestamp":"1700000000"}}`)

	out, err := f.engine.Process(context.Background(), cand)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("2023", "beach.jpg")
	if out.DestPath != want {
		t.Fatalf("dest = %q", out.DestPath)
	}
	if _, err := os.Stat(filepath.Join(f.root, want+".json")); err != nil {
		t.Fatalf("sidecar not moved alongside: %v", err)
	}
	if record, _ := f.ix.Lookup(out.Hash); record.Score != 100 {
		t.Fatalf("sidecar score not recorded: %+v", record)
	}
}

func TestProcessQuarantineBuckets(t *testing.T) {
	suspect := strconv.Itoa(time.Now().Year())

	cases := []struct {
		name    string
		media   string
		sidecar string
		wantDir string
	}{
		{
			name:    "filesystem fallback",
			media:   "holiday.jpg",
			wantDir: filepath.Join("Uncertain", "FS_2018"),
		},
		{
			name:    "weak secondary metadata",
			media:   "upload.jpg",
			sidecar: `{"title":"upload.jpg","creationTime":{"timestamp":"1400000000"}}`,
			wantDir: filepath.Join("Uncertain", "JSONC_2014"),
		},
		{
			name:    "contamination guard",
			media:   "IMG_" + suspect + "0102_1200.jpg",
			wantDir: filepath.Join("Uncertain", suspect+"_suspects"),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, false)
			cand := f.addMedia(t, tc.media, "bytes-"+tc.name)
			if tc.sidecar != "" {
				f.addSidecar(t, tc.media, tc.sidecar)
			}

			out, err := f.engine.Process(context.Background(), cand)
			if err != nil {
				t.Fatal(err)
			}
			if out.Decision.Confirmed() {
				t.Fatalf("decision unexpectedly confirmed: %+v", out.Decision)
			}
			if got := filepath.Dir(out.DestPath); got != tc.wantDir {
				t.Fatalf("bucket = %q, want %q", got, tc.wantDir)
			}
		})
	}
}

func TestProcessDeduplicatesIdenticalBytes(t *testing.T) {
	f := newFixture(t, false)
	first := f.addMedia(t, "IMG_20140512.jpg", "same-bytes")
	second := f.addMedia(t, "copy of IMG_20140512.jpg", "same-bytes")
	ctx := context.Background()

	out1, err := f.engine.Process(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	out2, err := f.engine.Process(ctx, second)
	if err != nil {
		t.Fatal(err)
	}

	if out1.Action != ActionPlaced || out2.Action != ActionDuplicate {
		t.Fatalf("actions = %q, %q", out1.Action, out2.Action)
	}
	if out1.Hash != out2.Hash {
		t.Fatalf("hashes differ for identical bytes")
	}
	// Exactly one physical copy in the destination tree.
	count := 0
	err = filepath.WalkDir(f.root, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && filepath.Ext(path) == ".jpg" {
			count++
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one copy, found %d", count)
	}
	// The duplicate's bytes stay at the source; they are never copied.
	if _, err := os.Stat(second.Path); err != nil {
		t.Fatalf("duplicate source touched: %v", err)
	}
}

func TestProcessUpgradesRepresentativeSidecar(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	// First sighting carries only a weak sidecar.
	first := f.addMedia(t, "IMG_20140512.jpg", "shared")
	f.addSidecar(t, "IMG_20140512.jpg", `{"title":"IMG_20140512.jpg","creationTime":{"timestamp":"1400000000"}}`)
	out1, err := f.engine.Process(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if record, _ := f.ix.Lookup(out1.Hash); record.Score != 60 {
		t.Fatalf("first score = %d", record.Score)
	}

	// The duplicate brings a sidecar with a primary timestamp (2014, same
	// year, so no relocation happens).
	second := f.addMedia(t, "IMG_20140512 (1).jpg", "shared")
	f.addSidecar(t, "IMG_20140512 (1).jpg", `{"title":"IMG_20140512 (1).jpg","photoTakenTime":{"timestamp":"1399900000"}}`)
	out2, err := f.engine.Process(ctx, second)
	if err != nil {
		t.Fatal(err)
	}
	if !out2.SidecarUpgraded {
		t.Fatalf("sidecar not upgraded: %+v", out2)
	}
	record, _ := f.ix.Lookup(out2.Hash)
	if record.Score != 100 {
		t.Fatalf("score not raised: %+v", record)
	}
	if record.Path != out1.DestPath {
		t.Fatalf("representative moved without cause: %+v", record)
	}

	// The representative's sidecar now carries the primary timestamp.
	doc, err := sidecar.ParseFile(filepath.Join(f.root, record.Path) + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.PrimaryTime(); !ok {
		t.Fatal("replacement sidecar lacks primary timestamp")
	}
}

func TestProcessHealsFutureYearRepresentative(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	future := strconv.Itoa(time.Now().Year() + 1)

	// A bad filename year lands the first sighting in a future folder.
	first := f.addMedia(t, "IMG_"+future+"0101.jpg", "heal-me")
	out1, err := f.engine.Process(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(out1.DestPath) != future {
		t.Fatalf("setup: placed at %q", out1.DestPath)
	}

	// A duplicate arrives with a high-scoring sidecar whose primary
	// timestamp says 2021; the upgrade lets the representative's own
	// re-derivation see it, and the future-year trigger relocates.
	second := f.addMedia(t, "other name.jpg", "heal-me")
	f.addSidecar(t, "other name.jpg", `{"title":"other name.jpg","photoTakenTime":{"timestamp":"1622505600"}}`)
	out2, err := f.engine.Process(ctx, second)
	if err != nil {
		t.Fatal(err)
	}
	if out2.Healed == nil || !out2.Healed.Relocated {
		t.Fatalf("expected healing relocation: %+v", out2.Healed)
	}
	record, _ := f.ix.Lookup(out2.Hash)
	if filepath.Dir(record.Path) != "2021" {
		t.Fatalf("representative not under 2021: %+v", record)
	}
	if _, err := os.Stat(filepath.Join(f.root, record.Path)); err != nil {
		t.Fatalf("representative missing after healing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(f.root, record.Path+".json")); err != nil {
		t.Fatalf("sidecar did not travel with healing: %v", err)
	}
}

func TestProcessDryRunMutatesNothing(t *testing.T) {
	f := newFixture(t, true)
	cand := f.addMedia(t, "IMG_20140512.jpg", "dry")

	out, err := f.engine.Process(context.Background(), cand)
	if err != nil {
		t.Fatal(err)
	}
	if out.Action != ActionPlaced || filepath.Dir(out.DestPath) != "2014" {
		t.Fatalf("dry run should report the intended placement: %+v", out)
	}
	if _, err := os.Stat(cand.Path); err != nil {
		t.Fatalf("dry run moved the source: %v", err)
	}
	if f.ix.Len() != 0 {
		t.Fatalf("dry run mutated the index: %d records", f.ix.Len())
	}
}
