package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	contentTypesPath    = "[Content_Types].xml"
	docxDefaultMainPath = "word/document.xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	odfContentPath      = "content.xml"
)

// The main part of a DOCX may be renamed; [Content_Types].xml names it. Attribute
// order varies between producers, so both orders are tried.
var (
	docxPartName    = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	docxPartNameRev = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
	pptxSlideName   = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
)

// textLayout says which XML elements carry text and which end a line.
type textLayout struct {
	text      map[string]bool
	paragraph map[string]bool
}

var (
	wordLayout  = textLayout{text: map[string]bool{"t": true}, paragraph: map[string]bool{"p": true}}
	slideLayout = wordLayout
	odfLayout   = textLayout{text: map[string]bool{"p": true, "h": true}, paragraph: map[string]bool{"p": true, "h": true}}
)

func extractDOCX(content []byte) (string, error) {
	zr, err := openZip(content, "DOCX")
	if err != nil {
		return "", err
	}
	mainPath := docxDefaultMainPath
	if types, err := readZipEntry(zr, contentTypesPath); err == nil {
		if m := docxPartName.FindSubmatch(types); m != nil {
			mainPath = strings.TrimPrefix(string(m[1]), "/")
		} else if m := docxPartNameRev.FindSubmatch(types); m != nil {
			mainPath = strings.TrimPrefix(string(m[1]), "/")
		}
	}
	body, err := readZipEntry(zr, mainPath)
	if err != nil {
		return "", fmt.Errorf("DOCX: %w", err)
	}
	return xmlText(body, wordLayout)
}

// extractPPTX returns slide text in slide order, one line per paragraph.
func extractPPTX(content []byte) (string, error) {
	zr, err := openZip(content, "PPTX")
	if err != nil {
		return "", err
	}
	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		if m := pptxSlideName.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{num: n, file: f})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var parts []string
	for _, s := range slides {
		data, err := readZipFile(s.file)
		if err != nil {
			return "", fmt.Errorf("PPTX: %w", err)
		}
		text, err := xmlText(data, slideLayout)
		if err != nil {
			return "", fmt.Errorf("PPTX %s: %w", s.file.Name, err)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// extractODF handles OpenDocument text, spreadsheets, and presentations, which all
// keep their text in content.xml as text:p and text:h elements.
func extractODF(content []byte) (string, error) {
	zr, err := openZip(content, "OpenDocument")
	if err != nil {
		return "", err
	}
	body, err := readZipEntry(zr, odfContentPath)
	if err != nil {
		return "", fmt.Errorf("OpenDocument: %w", err)
	}
	return xmlText(body, odfLayout)
}

func openZip(content []byte, format string) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%s: not a zip: %w", format, err)
	}
	return zr, nil
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return readZipFile(f)
		}
	}
	return nil, fmt.Errorf("%s not found", name)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

// xmlText collects character data inside layout.text elements and ends a line at
// the close of each layout.paragraph element. Blank lines are dropped.
func xmlText(data []byte, layout textLayout) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		lines []string
		cur   strings.Builder
		depth int
	)
	flush := func() {
		if line := strings.TrimSpace(cur.String()); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if layout.text[t.Name.Local] {
				depth++
			}
		case xml.EndElement:
			if layout.text[t.Name.Local] && depth > 0 {
				depth--
			}
			if layout.paragraph[t.Name.Local] {
				flush()
			}
		case xml.CharData:
			if depth > 0 {
				cur.Write(t)
			}
		}
	}
	flush()
	return strings.Join(lines, "\n"), nil
}
