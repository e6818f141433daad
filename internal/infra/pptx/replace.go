package pptx

import "strings"

// Replacement is one original→replacement substitution.
type Replacement struct {
	Original    string
	Replacement string
}

// ApplyReplacements rewrites slide n's text so every occurrence of
// each original becomes its replacement, in list order, across every
// shape's text frame and the notes frame.
//
// Replacement is attempted run-locally first so per-run styling
// survives; when a match straddles run boundaries the paragraph is
// re-rendered through its first run instead, trading style fidelity
// inside that paragraph for the substitution taking effect.
func (p *Presentation) ApplyReplacements(n int, repls []Replacement) error {
	ref, err := p.slide(n)
	if err != nil {
		return err
	}
	if len(repls) == 0 {
		return nil
	}

	doc := string(p.parts[ref.part])
	p.parts[ref.part] = []byte(replaceInBodies(doc, elementSpans(doc, "p:txBody"), repls))

	if ref.notesPart != "" {
		notes := string(p.parts[ref.notesPart])
		if body := notesBodySpan(notes); body != nil {
			p.parts[ref.notesPart] = []byte(replaceInBodies(notes, []span{*body}, repls))
		}
	}
	return nil
}

// replaceInBodies rebuilds doc with the substitutions applied inside
// the given text-body spans.
func replaceInBodies(doc string, bodies []span, repls []Replacement) string {
	var b strings.Builder
	last := 0
	for _, body := range bodies {
		b.WriteString(doc[last:body.innerStart])
		b.WriteString(replaceInFrame(doc[body.innerStart:body.innerEnd], repls))
		last = body.innerEnd
	}
	b.WriteString(doc[last:])
	return b.String()
}

func replaceInFrame(frame string, repls []Replacement) string {
	var b strings.Builder
	last := 0
	for _, para := range elementSpans(frame, "a:p") {
		b.WriteString(frame[last:para.innerStart])
		b.WriteString(replaceInParagraph(frame[para.innerStart:para.innerEnd], repls))
		last = para.innerEnd
	}
	b.WriteString(frame[last:])
	return b.String()
}

// replaceInParagraph applies each substitution to one paragraph's
// content. Substitutions run sequentially, so a later one can match
// text introduced by an earlier one.
func replaceInParagraph(para string, repls []Replacement) string {
	for _, r := range repls {
		if r.Original == "" {
			continue
		}
		full := paragraphText(para)
		if !strings.Contains(full, r.Original) {
			continue
		}

		// Run-local pass: rewrite only the runs that contain the whole
		// original; runs without a match stay byte-identical.
		replaced := false
		var b strings.Builder
		last := 0
		for _, t := range elementSpans(para, "a:t") {
			text := unescapeText(para[t.innerStart:t.innerEnd])
			if !strings.Contains(text, r.Original) {
				continue
			}
			b.WriteString(para[last:t.innerStart])
			b.WriteString(escapeText(strings.ReplaceAll(text, r.Original, r.Replacement)))
			last = t.innerEnd
			replaced = true
		}
		b.WriteString(para[last:])

		if replaced {
			para = b.String()
			continue
		}

		// The match straddles run boundaries: collapse the paragraph
		// text into its first run.
		para = setParagraphText(para, strings.ReplaceAll(full, r.Original, r.Replacement))
	}
	return para
}

// setParagraphText writes text into the paragraph's first run and
// empties the rest, so the paragraph renders as a single run.
func setParagraphText(para, text string) string {
	spans := elementSpans(para, "a:t")
	if len(spans) == 0 {
		return para
	}
	var b strings.Builder
	last := 0
	for i, t := range spans {
		val := ""
		if i == 0 {
			val = text
		}
		if t.selfClosing() {
			// Expand <a:t/> so it can carry content.
			b.WriteString(para[last:t.start])
			b.WriteString("<a:t>")
			b.WriteString(escapeText(val))
			b.WriteString("</a:t>")
		} else {
			b.WriteString(para[last:t.innerStart])
			b.WriteString(escapeText(val))
		}
		last = t.innerEnd
		if t.selfClosing() {
			last = t.end
		}
	}
	b.WriteString(para[last:])
	return b.String()
}
