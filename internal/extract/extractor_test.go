package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		name string
		in   []byte
		ext  string
		want string
	}{
		{"txt", []byte("Hello world\nLine 2"), ".txt", "Hello world\nLine 2"},
		{"markdown utf8", []byte("caf\xc3\xa9"), ".md", "café"},
		{"unknown extension", []byte("some text"), ".log", "some text"},
		{"no extension", []byte("x"), "", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(tt.in, tt.ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBytes_invalidUTF8(t *testing.T) {
	content := []byte("hello\x80world")
	if _, err := NewExtractor().ExtractBytes(content, ".txt"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("strict extractor error = %v, want ErrInvalidUTF8", err)
	}
	got, err := NewExtractor(WithLenientEncoding(true)).ExtractBytes(content, ".txt")
	if err != nil {
		t.Fatalf("lenient ExtractBytes: %v", err)
	}
	if got != "hello�world" {
		t.Errorf("lenient got %q", got)
	}
}

func TestExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "Value 2")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := NewExtractor().ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Title\nValue 1\tValue 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docx(t *testing.T) {
	body := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p w:rsidR="00A1"><w:r><w:t>Rust:</w:t></w:r></w:p>
<w:p><w:r><w:t>safe, fast,</w:t></w:r><w:r><w:t xml:space="preserve"> productive.</w:t></w:r></w:p>
<w:p></w:p>
</w:body></w:document>`
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"default path", map[string]string{"word/document.xml": body}},
		{"content types", map[string]string{
			"[Content_Types].xml": `<Types><Override PartName="/word/document2.xml" ContentType="` + docxMainContentType + `"/></Types>`,
			"word/document2.xml":  body,
		}},
		{"content types reversed", map[string]string{
			"[Content_Types].xml": `<Types><Override ContentType="` + docxMainContentType + `" PartName="/word/main.xml"/></Types>`,
			"word/main.xml":       body,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExtractor().ExtractBytes(zipOf(t, tt.files), ".docx")
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != "Rust:\nsafe, fast, productive." {
				t.Errorf("got %q", got)
			}
		})
	}
}

func TestExtractBytes_docxMissingBody(t *testing.T) {
	_, err := NewExtractor().ExtractBytes(zipOf(t, map[string]string{"other.xml": "<x/>"}), ".docx")
	if err == nil {
		t.Fatal("expected error for missing document.xml")
	}
}

func TestExtractBytes_pptx(t *testing.T) {
	slide := func(text string) string {
		return `<p:sld xmlns:p="p" xmlns:a="a"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` +
			text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
	}
	files := map[string]string{
		"ppt/slides/slide10.xml": slide("Tenth"),
		"ppt/slides/slide2.xml":  slide("Second"),
		"ppt/slides/slide1.xml":  slide("First"),
		"ppt/slides/_rels/slide1.xml.rels": "<Relationships/>",
	}
	got, err := NewExtractor().ExtractBytes(zipOf(t, files), ".pptx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "First\nSecond\nTenth" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_pptxNotZip(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes([]byte("not a zip"), ".pptx"); err == nil {
		t.Error("expected error for non-zip pptx")
	}
}

func TestExtractBytes_odf(t *testing.T) {
	content := `<office:document-content xmlns:office="o" xmlns:text="t" xmlns:table="tb"><office:body>
<text:h>Heading</text:h>
<text:p>Hello <text:span>World</text:span></text:p>
<table:table-cell><text:p>cell</text:p></table:table-cell>
</office:body></office:document-content>`
	for _, ext := range []string{".odp", ".ods", ".odt"} {
		t.Run(ext, func(t *testing.T) {
			got, err := NewExtractor().ExtractBytes(zipOf(t, map[string]string{"content.xml": content}), ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != "Heading\nHello World\ncell" {
				t.Errorf("got %q", got)
			}
		})
	}
}

func TestExtractBytes_odfContentNotFound(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes(zipOf(t, map[string]string{"meta.xml": "<m/>"}), ".ods"); err == nil {
		t.Error("expected error when content.xml is missing")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poem.TXT")
	if err := os.WriteFile(path, []byte("Rust:\nsafe"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := NewExtractor().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "Rust:\nsafe" {
		t.Errorf("got %q", got)
	}
}

func TestLoad_nonexistent(t *testing.T) {
	if _, err := NewExtractor().Load(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}
