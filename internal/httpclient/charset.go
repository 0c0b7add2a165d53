package httpclient

import (
	"mime"
	"net/http"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// responseEncoding picks the charset to decode a body with. A charset label in
// Content-Encoding takes precedence over the Content-Type charset parameter.
// Unknown or missing labels mean UTF-8, reported as a nil encoding.
func responseEncoding(h http.Header) encoding.Encoding {
	if enc := lookupCharset(h.Get("Content-Encoding")); enc != nil {
		return enc
	}
	if _, params, err := mime.ParseMediaType(h.Get("Content-Type")); err == nil {
		return lookupCharset(params["charset"])
	}
	return nil
}

func lookupCharset(label string) encoding.Encoding {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil
	}
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		return nil
	}
	return enc
}

func decodeCharset(h http.Header, body []byte) ([]byte, error) {
	enc := responseEncoding(h)
	if enc == nil {
		return body, nil
	}
	return enc.NewDecoder().Bytes(body)
}
