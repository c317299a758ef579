package sheets

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	docIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	gidPattern   = regexp.MustCompile(`[#&?]gid=([0-9]+)`)
)

// ExportURL converts a Google Sheets sharing URL into its export endpoint
// for the given format, keeping the sheet tab (gid, default 0). URLs that
// are not Google Sheets documents, or that already point at an export or a
// published CSV, are returned unchanged.
func ExportURL(raw string, format Format) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host != "docs.google.com" {
		return raw
	}
	if strings.Contains(u.Path, "/export") || strings.Contains(u.Path, "/pub") {
		return raw
	}
	m := docIDPattern.FindStringSubmatch(u.Path)
	if m == nil {
		return raw
	}
	gid := "0"
	if g := gidPattern.FindStringSubmatch(raw); g != nil {
		gid = g[1]
	}
	if format == "" {
		format = CSV
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=%s&gid=%s", m[1], format, gid)
}
