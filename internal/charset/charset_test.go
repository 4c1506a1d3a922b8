package charset

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestDecode_UTF8Passthrough(t *testing.T) {
	body := []byte("<html><body>hello world</body></html>")
	got, err := Decode(body, "text/html; charset=utf-8")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != string(body) {
		t.Errorf("got %q, want %q", got, string(body))
	}
}

func TestDecode_HeaderDeclaredGBK(t *testing.T) {
	const text = "<html><body>你好世界</body></html>"
	encoded, err := simplifiedchinese.GBK.NewEncoder().String(text)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	got, err := Decode([]byte(encoded), "text/html; charset=gbk")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !strings.Contains(got, "你好世界") {
		t.Errorf("decoded output missing expected text: %q", got)
	}
}

func TestDecode_MetaSniffedGBK(t *testing.T) {
	// Pure ASCII round-trips identically through GBK, so this exercises the
	// "valid UTF-8 body but meta tag claims GB" redecode branch without
	// needing bytes that are simultaneously valid UTF-8 and meaningful GBK.
	const body = `<html><head><meta charset="gbk"></head><body>hello world</body></html>`

	got, err := Decode([]byte(body), "text/html")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !strings.Contains(got, "hello world") {
		t.Errorf("decoded output missing expected text: %q", got)
	}
}

func TestDecode_MalformedContentType(t *testing.T) {
	body := []byte("<html><body>plain</body></html>")
	got, err := Decode(body, "text/html; charset")
	if err != nil {
		t.Fatalf("Decode should tolerate a malformed Content-Type: %v", err)
	}
	if got != string(body) {
		t.Errorf("got %q, want passthrough of original body", got)
	}
}
