// Package charset decodes HTTP response bodies to UTF-8, handling the CJK
// sites that still serve legacy GBK/GB2312 encodings without misclassifying
// UTF-8 content that merely references legacy charsets in unrelated
// contexts (e.g. a copy-pasted snippet mentioning "charset=gb2312" inside
// an otherwise UTF-8 article).
package charset

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// metaSniffWindow is how much of the decoded body we scan for a meta-charset
// hint when the header didn't already tell us the encoding.
const metaSniffWindow = 1024

// Decode converts raw response bytes to a UTF-8 string, given the
// Content-Type header value (which may carry a charset parameter).
//
// Algorithm (spec.md §4.3):
//  1. If the header's charset label starts with "gb", decode as GBK.
//  2. Else attempt strict UTF-8; if it succeeds and the first 1 KiB of the
//     decoded text contains "charset=gb" (quoted or not) in a meta tag,
//     redecode as GBK.
//  3. If strict UTF-8 fails, decode as GBK.
func Decode(body []byte, contentType string) (string, error) {
	if label := headerCharsetLabel(contentType); strings.HasPrefix(label, "gb") {
		return decodeGBK(body)
	}

	if utf8.Valid(body) {
		text := string(body)
		window := text
		if len(window) > metaSniffWindow {
			window = window[:metaSniffWindow]
		}
		if metaClaimsGB(window) {
			if gbk, err := decodeGBK(body); err == nil {
				return gbk, nil
			}
		}
		return text, nil
	}

	return decodeGBK(body)
}

// headerCharsetLabel extracts and lowercases the charset parameter from a
// Content-Type header value, e.g. "text/html; charset=GB2312" -> "gb2312".
func headerCharsetLabel(contentType string) string {
	_, params, _ := mimeParseMediaTypeSafe(contentType)
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}

// mimeParseMediaTypeSafe is a lenient hand-rolled split of a Content-Type
// value into its media type and key=value parameters (parameters without
// '=' are skipped), since production HTML in the wild frequently sends
// malformed Content-Type values that mime.ParseMediaType rejects outright.
// It never returns an error.
func mimeParseMediaTypeSafe(contentType string) (string, map[string]string, error) {
	params := map[string]string{}
	parts := strings.Split(contentType, ";")
	mediaType := strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.Trim(strings.TrimSpace(kv[1]), `"`)
		params[key] = val
	}
	return mediaType, params, nil
}

// metaClaimsGB reports whether text contains a meta-charset declaration
// naming a GB-family encoding, quoted or not (e.g. charset="gb2312",
// charset=gbk, charset='gb18030'). Only charset= inside a <meta ...> tag
// counts.
func metaClaimsGB(text string) bool {
	lower := strings.ToLower(text)
	for {
		start := strings.Index(lower, "<meta")
		if start == -1 {
			return false
		}
		lower = lower[start:]
		end := strings.IndexByte(lower, '>')
		if end == -1 {
			end = len(lower)
		}
		if idx := strings.Index(lower[:end], "charset="); idx != -1 {
			rest := strings.TrimLeft(lower[idx+len("charset="):end], `"'`)
			if strings.HasPrefix(rest, "gb") {
				return true
			}
		}
		lower = lower[end:]
	}
}

// decodeGBK decodes body as GBK, the encoding golang.org/x/net/html/charset
// resolves the "gbk" label to (falling back to golang.org/x/text's
// simplifiedchinese.GBK). Every GB-family label (GBK, GB2312, GB18030) is
// decoded with this same GBK decoder.
func decodeGBK(body []byte) (string, error) {
	enc, _ := charset.Lookup("gbk")
	if enc == nil {
		enc = simplifiedchinese.GBK
	}
	return decodeWith(enc, body)
}

func decodeWith(enc encoding.Encoding, body []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
