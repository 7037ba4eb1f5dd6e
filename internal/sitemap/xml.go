package sitemap

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// WriteXML serialises records into the sitemap protocol format, including
// xhtml alternate links for the locale variants.
func WriteXML(records []Record) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:xhtml="http://www.w3.org/1999/xhtml">` + "\n")

	for _, record := range records {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escape(record.URL)))
		if !record.LastModified.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", record.LastModified.UTC().Format(time.RFC3339)))
		}
		if record.ChangeFrequency != "" {
			builder.WriteString(fmt.Sprintf("    <changefreq>%s</changefreq>\n", record.ChangeFrequency))
		}
		if record.Priority != "" {
			builder.WriteString(fmt.Sprintf("    <priority>%s</priority>\n", record.Priority))
		}

		for _, hreflang := range sortedAlternateKeys(record.Alternates) {
			builder.WriteString(fmt.Sprintf("    <xhtml:link rel=\"alternate\" hreflang=\"%s\" href=\"%s\"/>\n",
				escape(hreflang), escape(record.Alternates[hreflang])))
		}
		builder.WriteString("  </url>\n")
	}

	builder.WriteString("</urlset>\n")
	return builder.String()
}

func sortedAlternateKeys(alternates map[string]string) []string {
	if len(alternates) == 0 {
		return nil
	}
	keys := make([]string, 0, len(alternates))
	for key := range alternates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func escape(value string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(value)
}
