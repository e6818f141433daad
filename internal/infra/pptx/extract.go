package pptx

import "strings"

// SlideText extracts the visible text of slide n (1-based): every
// text-bearing shape's text in shape order, trimmed and skipped when
// empty, followed by the speaker notes prefixed with "Notes:\n" when
// present. Notes extraction failures are treated as empty notes.
func (p *Presentation) SlideText(n int) (string, error) {
	ref, err := p.slide(n)
	if err != nil {
		return "", err
	}

	doc := string(p.parts[ref.part])
	var chunks []string
	for _, body := range elementSpans(doc, "p:txBody") {
		text := strings.TrimSpace(frameText(doc[body.innerStart:body.innerEnd]))
		if text != "" {
			chunks = append(chunks, text)
		}
	}

	if notes := strings.TrimSpace(p.notesText(ref)); notes != "" {
		chunks = append(chunks, "Notes:\n"+notes)
	}

	return strings.TrimSpace(strings.Join(chunks, "\n")), nil
}

// frameText renders a text frame: paragraphs joined by newlines, each
// paragraph the concatenation of its run texts.
func frameText(frame string) string {
	var paragraphs []string
	for _, para := range elementSpans(frame, "a:p") {
		paragraphs = append(paragraphs, paragraphText(frame[para.innerStart:para.innerEnd]))
	}
	return strings.Join(paragraphs, "\n")
}

func paragraphText(para string) string {
	var b strings.Builder
	for _, t := range elementSpans(para, "a:t") {
		b.WriteString(unescapeText(para[t.innerStart:t.innerEnd]))
	}
	return b.String()
}

// notesText returns the notes body text for a slide, or "" when the
// slide has no notes part or the body placeholder cannot be located.
func (p *Presentation) notesText(ref slideRef) string {
	if ref.notesPart == "" {
		return ""
	}
	doc := string(p.parts[ref.notesPart])
	body := notesBodySpan(doc)
	if body == nil {
		return ""
	}
	return frameText(doc[body.innerStart:body.innerEnd])
}

// notesBodySpan finds the txBody of the notes slide's body placeholder
// (the shape carrying <p:ph type="body"/>); the slide-number and
// header placeholders on the notes slide are not speaker notes.
func notesBodySpan(doc string) *span {
	for _, sp := range elementSpans(doc, "p:sp") {
		shape := doc[sp.innerStart:sp.innerEnd]
		if !strings.Contains(shape, `type="body"`) {
			continue
		}
		bodies := elementSpans(shape, "p:txBody")
		if len(bodies) == 0 {
			return nil
		}
		body := bodies[0]
		body.start += sp.innerStart
		body.end += sp.innerStart
		body.innerStart += sp.innerStart
		body.innerEnd += sp.innerStart
		return &body
	}
	return nil
}
