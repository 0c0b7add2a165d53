package httpclient

import (
	"net/http"
	"testing"

	"golang.org/x/text/encoding/htmlindex"
)

func TestResponseEncoding(t *testing.T) {
	tests := []struct {
		name        string
		encoding    string
		contentType string
		want        string
	}{
		{"no headers", "", "", ""},
		{"utf-8 content type", "", "application/json; charset=utf-8", ""},
		{"latin1 content type", "", "application/json; charset=ISO-8859-1", "windows-1252"},
		{"latin1 content encoding", "ISO-8859-1", "application/json", "windows-1252"},
		{"content encoding first", "ISO-8859-1", "application/json; charset=utf-16", "windows-1252"},
		{"gzip falls back to content type", "gzip", "application/json; charset=utf-16", "utf-16le"},
		{"gzip without charset", "gzip", "application/json", ""},
		{"unknown charset", "", "application/json; charset=klingon", ""},
		{"malformed content type", "", "application/json; charset", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.encoding != "" {
				h.Set("Content-Encoding", tt.encoding)
			}
			if tt.contentType != "" {
				h.Set("Content-Type", tt.contentType)
			}
			enc := responseEncoding(h)
			if tt.want == "" {
				if enc != nil {
					name, _ := htmlindex.Name(enc)
					t.Fatalf("responseEncoding() = %s, want utf-8", name)
				}
				return
			}
			if enc == nil {
				t.Fatalf("responseEncoding() = utf-8, want %s", tt.want)
			}
			if name, _ := htmlindex.Name(enc); name != tt.want {
				t.Errorf("responseEncoding() = %s, want %s", name, tt.want)
			}
		})
	}
}
