package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxErrorDetail = 300

// errorDetail condenses an error response body into one line. JSON bodies
// yield their error message; HTML pages (proxies, gateways) yield their title
// and visible text.
func errorDetail(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "empty response body"
	}

	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(trimmed, &payload) == nil && len(payload.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "" {
			return truncate(nested.Message)
		}
		var flat string
		if json.Unmarshal(payload.Error, &flat) == nil && flat != "" {
			return truncate(flat)
		}
	}

	if strings.Contains(contentType, "html") || bytes.HasPrefix(trimmed, []byte("<")) {
		if text := htmlText(trimmed); text != "" {
			return truncate(text)
		}
	}
	return truncate(string(trimmed))
}

func htmlText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, head").Remove()
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")

	switch {
	case title != "" && text != "" && !strings.HasPrefix(text, title):
		return title + ": " + text
	case title != "":
		return title
	default:
		return text
	}
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxErrorDetail {
		return s
	}
	return string([]rune(s)[:maxErrorDetail]) + "..."
}
