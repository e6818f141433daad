package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

const (
	presentationXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><p:sldIdLst><p:sldId id="256" r:id="rId1"/><p:sldId id="257" r:id="rId2"/></p:sldIdLst></p:presentation>`

	presentationRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/><Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide2.xml"/></Relationships>`

	slide1XML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:rPr b="1"/><a:t>Jesus wept.</a:t></a:r></a:p></p:txBody></p:sp><p:sp><p:txBody><a:p><a:r><a:t>John 11:35</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`

	slide2XML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>Grace </a:t></a:r><a:r><a:rPr i="1"/><a:t>and truth</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`

	slide1Rels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide" Target="../notesSlides/notesSlide1.xml"/></Relationships>`

	notesSlide1XML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><p:cSld><p:spTree><p:sp><p:nvSpPr><p:nvPr><p:ph type="sldNum"/></p:nvPr></p:nvSpPr><p:txBody><a:p><a:r><a:t>1</a:t></a:r></a:p></p:txBody></p:sp><p:sp><p:nvSpPr><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr><p:txBody><a:p><a:r><a:t>Pause here for prayer.</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:notes>`
)

func basicDeckParts() map[string]string {
	return map[string]string{
		"ppt/presentation.xml":             presentationXML,
		"ppt/_rels/presentation.xml.rels":  presentationRels,
		"ppt/slides/slide1.xml":            slide1XML,
		"ppt/slides/slide2.xml":            slide2XML,
		"ppt/slides/_rels/slide1.xml.rels": slide1Rels,
		"ppt/notesSlides/notesSlide1.xml":  notesSlide1XML,
		"ppt/theme/theme1.xml":             `<a:theme/>`,
		"docProps/core.xml":                `<cp:coreProperties/>`,
	}
}

// writeDeck packs parts into a .pptx file under a test temp dir.
func writeDeck(t *testing.T, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(parts[name])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func openDeck(t *testing.T, parts map[string]string) *Presentation {
	t.Helper()
	p, err := Open(writeDeck(t, parts))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return p
}

func TestOpenCountsSlides(t *testing.T) {
	p := openDeck(t, basicDeckParts())
	if got := p.SlideCount(); got != 2 {
		t.Fatalf("SlideCount = %d, want 2", got)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pptx"))
	if !os.IsNotExist(err) {
		t.Fatalf("err = %v, want os.IsNotExist", err)
	}
}

func TestOpenNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
}

func TestOpenZipWithoutPresentation(t *testing.T) {
	path := writeDeck(t, map[string]string{"readme.txt": "hi"})
	_, err := Open(path)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
}

// Decks reordered in the editor keep slideN.xml numbering out of sync
// with the display order; the sldIdLst is authoritative.
func TestSlideOrderFollowsSlideIDList(t *testing.T) {
	parts := basicDeckParts()
	parts["ppt/presentation.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><p:sldIdLst><p:sldId id="257" r:id="rId2"/><p:sldId id="256" r:id="rId1"/></p:sldIdLst></p:presentation>`
	p := openDeck(t, parts)

	text, err := p.SlideText(1)
	if err != nil {
		t.Fatalf("SlideText: %v", err)
	}
	if text != "Grace and truth" {
		t.Fatalf("slide 1 text = %q, want slide2's content first", text)
	}
}

func TestSlideOrderNumericFallback(t *testing.T) {
	parts := basicDeckParts()
	delete(parts, "ppt/_rels/presentation.xml.rels")
	p := openDeck(t, parts)
	if got := p.SlideCount(); got != 2 {
		t.Fatalf("SlideCount = %d, want 2", got)
	}
	text, err := p.SlideText(1)
	if err != nil {
		t.Fatalf("SlideText: %v", err)
	}
	if text == "" {
		t.Fatal("slide 1 text empty")
	}
}

func TestSlideTextOutOfRange(t *testing.T) {
	p := openDeck(t, basicDeckParts())
	for _, n := range []int{0, 3, -1} {
		if _, err := p.SlideText(n); err != ErrNoSlide {
			t.Errorf("SlideText(%d) err = %v, want ErrNoSlide", n, err)
		}
	}
}

// A save that cannot complete must leave the previous output file
// exactly as it was.
func TestSaveFailureKeepsExistingFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind root")
	}
	p := openDeck(t, basicDeckParts())
	dir := t.TempDir()
	out := filepath.Join(dir, "out.pptx")
	if err := p.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	prior, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o755)

	if err := p.Save(out); err == nil {
		t.Fatal("expected error saving into read-only directory")
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, prior) {
		t.Fatal("previous output was modified by a failed save")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	p := openDeck(t, basicDeckParts())
	dir := t.TempDir()
	if err := p.Save(filepath.Join(dir, "out.pptx")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.pptx" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	p := openDeck(t, basicDeckParts())
	out := filepath.Join(t.TempDir(), "out.pptx")
	if err := p.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}

	re, err := Open(out)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if re.SlideCount() != p.SlideCount() {
		t.Fatalf("slide count changed: %d -> %d", p.SlideCount(), re.SlideCount())
	}
	// Untouched parts survive byte-for-byte.
	if string(re.parts["ppt/theme/theme1.xml"]) != `<a:theme/>` {
		t.Errorf("theme part changed: %q", re.parts["ppt/theme/theme1.xml"])
	}
	text, err := re.SlideText(1)
	if err != nil {
		t.Fatalf("SlideText: %v", err)
	}
	want := "Jesus wept.\nJohn 11:35\nNotes:\nPause here for prayer."
	if text != want {
		t.Fatalf("slide 1 text = %q, want %q", text, want)
	}
}
