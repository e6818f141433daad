// Package pptx reads and rewrites PowerPoint files by operating on the
// slide XML parts inside the ZIP archive. Only text content is ever
// touched; every other part (styling, layouts, media) is carried
// through byte-for-byte on save.
package pptx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// MediaType is the pptx MIME type used for downloads.
const MediaType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// ErrFormat indicates the file is not a PowerPoint archive.
var ErrFormat = errors.New("not a valid pptx file")

// ErrNoSlide indicates a slide number past the end of the deck.
var ErrNoSlide = errors.New("no such slide")

type slideRef struct {
	part      string // e.g. "ppt/slides/slide3.xml"
	notesPart string // e.g. "ppt/notesSlides/notesSlide3.xml", "" when absent
}

// Presentation is a fully loaded .pptx archive.
type Presentation struct {
	names  []string // archive entry order, preserved on save
	parts  map[string][]byte
	slides []slideRef // display order, index 0 = slide 1
}

// Open loads a presentation from disk.
func Open(filePath string) (*Presentation, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer r.Close()

	p := &Presentation{parts: make(map[string][]byte)}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrFormat, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrFormat, f.Name, err)
		}
		p.names = append(p.names, f.Name)
		p.parts[f.Name] = data
	}

	if _, ok := p.parts["ppt/presentation.xml"]; !ok {
		return nil, fmt.Errorf("%w: ppt/presentation.xml not found in archive", ErrFormat)
	}

	for _, part := range p.slideOrder() {
		p.slides = append(p.slides, slideRef{
			part:      part,
			notesPart: p.notesPartFor(part),
		})
	}
	return p, nil
}

// Save writes the presentation to filePath, replacing any existing
// file. The archive is written to a temp file in the same directory
// and renamed into place, so a failed save leaves any previous file
// untouched.
func (p *Presentation) Save(filePath string) error {
	f, err := os.CreateTemp(filepath.Dir(filePath), ".pptx-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := p.writeArchive(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (p *Presentation) writeArchive(f *os.File) error {
	w := zip.NewWriter(f)
	for _, name := range p.names {
		entry, err := w.Create(name)
		if err != nil {
			return err
		}
		if _, err := entry.Write(p.parts[name]); err != nil {
			return err
		}
	}
	return w.Close()
}

// SlideCount returns the number of slides in display order.
func (p *Presentation) SlideCount() int { return len(p.slides) }

func (p *Presentation) slide(n int) (slideRef, error) {
	if n < 1 || n > len(p.slides) {
		return slideRef{}, ErrNoSlide
	}
	return p.slides[n-1], nil
}

type relationships struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// slideOrder resolves the display order from presentation.xml's slide
// id list; decks that reorder slides do not keep the part numbering in
// sync with the display order. Falls back to numbered part names when
// the relationship walk comes up empty.
func (p *Presentation) slideOrder() []string {
	relsRaw, okRels := p.parts["ppt/_rels/presentation.xml.rels"]
	presRaw, okPres := p.parts["ppt/presentation.xml"]
	if okRels && okPres {
		var rels relationships
		if err := xml.Unmarshal(relsRaw, &rels); err == nil {
			byID := make(map[string]string, len(rels.Rels))
			for _, rel := range rels.Rels {
				byID[rel.ID] = rel.Target
			}
			var order []string
			dec := xml.NewDecoder(strings.NewReader(string(presRaw)))
			for {
				tok, err := dec.Token()
				if err != nil {
					break
				}
				start, ok := tok.(xml.StartElement)
				if !ok || start.Name.Local != "sldId" {
					continue
				}
				for _, attr := range start.Attr {
					if attr.Name.Local != "id" || !strings.Contains(attr.Name.Space, "relationships") {
						continue
					}
					part := resolveTarget("ppt", byID[attr.Value])
					if _, exists := p.parts[part]; exists {
						order = append(order, part)
					}
				}
			}
			if len(order) > 0 {
				return order
			}
		}
	}

	// Fallback: slide parts sorted by their number.
	rx := regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	type numbered struct {
		part string
		n    int
	}
	var found []numbered
	for _, name := range p.names {
		if m := rx.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			found = append(found, numbered{name, n})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })
	order := make([]string, len(found))
	for i, f := range found {
		order[i] = f.part
	}
	return order
}

// notesPartFor resolves a slide's notes part through the slide's rels.
func (p *Presentation) notesPartFor(slidePart string) string {
	relsName := path.Join(path.Dir(slidePart), "_rels", path.Base(slidePart)+".rels")
	raw, ok := p.parts[relsName]
	if !ok {
		return ""
	}
	var rels relationships
	if err := xml.Unmarshal(raw, &rels); err != nil {
		return ""
	}
	for _, rel := range rels.Rels {
		if strings.HasSuffix(rel.Type, "/notesSlide") {
			part := resolveTarget(path.Dir(slidePart), rel.Target)
			if _, exists := p.parts[part]; exists {
				return part
			}
		}
	}
	return ""
}

func resolveTarget(baseDir, target string) string {
	if target == "" {
		return ""
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}
