package appcast

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/scarabhk/releasetools/pkg/config"
)

// PubDateLayout is the RFC-822 style timestamp used in pubDate, always UTC
const PubDateLayout = "Mon, 02 Jan 2006 15:04:05 +0000"

// FeedData contains all fields needed to render the update feed.
// Values are inserted verbatim, without XML escaping.
type FeedData struct {
	Title           string
	Link            string
	Language        string
	ItemTitle       string
	ReleaseNotesURL string
	PubDate         string
	DownloadURL     string
	Version         string // bare version without v prefix
	OS              string
	Length          int64
	Type            string
}

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:sparkle="http://www.andymatuschak.org/xml-namespaces/sparkle" version="2.0">
    <channel>
        <title>{{.Title}}</title>
        <link>{{.Link}}</link>
        <language>{{.Language}}</language>
        <item>
            <title>{{.ItemTitle}}</title>
            <sparkle:releaseNotesLink>
            {{.ReleaseNotesURL}}
            </sparkle:releaseNotesLink>
            <pubDate>{{.PubDate}}</pubDate>
            <enclosure url="{{.DownloadURL}}"
                       sparkle:version="{{.Version}}"
                       sparkle:os="{{.OS}}"
                       length="{{.Length}}"
                       type="{{.Type}}"
                        />
        </item>
    </channel>
</rss>
`

var feed = template.Must(template.New("appcast").Parse(feedTemplate))

// StripVersionPrefix removes a single leading "v". Nothing else is checked.
func StripVersionPrefix(version string) string {
	return strings.TrimPrefix(version, "v")
}

// PubDate formats t in UTC for the pubDate element
func PubDate(t time.Time) string {
	return t.UTC().Format(PubDateLayout)
}

// NewFeedData builds the feed for version (already stripped) published at
// now. The item title and both URLs in cfg are expanded as templates.
func NewFeedData(cfg config.FeedConfig, version string, now time.Time) (FeedData, error) {
	vars := struct{ Version string }{Version: version}

	itemTitle, err := expand("feed.item_title", cfg.ItemTitle, vars)
	if err != nil {
		return FeedData{}, err
	}
	notes, err := expand("feed.release_notes_url", cfg.ReleaseNotesURL, vars)
	if err != nil {
		return FeedData{}, err
	}
	download, err := expand("feed.download_url", cfg.DownloadURL, vars)
	if err != nil {
		return FeedData{}, err
	}

	return FeedData{
		Title:           cfg.Title,
		Link:            cfg.Link,
		Language:        cfg.Language,
		ItemTitle:       itemTitle,
		ReleaseNotesURL: notes,
		PubDate:         PubDate(now),
		DownloadURL:     download,
		Version:         version,
		OS:              cfg.OS,
		Length:          cfg.Length,
		Type:            cfg.Type,
	}, nil
}

// CheckTemplate reports whether a templated feed field parses and only
// refers to {{.Version}}.
func CheckTemplate(field, text string) error {
	_, err := expand(field, text, struct{ Version string }{Version: "0.0.0"})
	return err
}

func expand(field, text string, vars any) (string, error) {
	tmpl, err := template.New(field).Parse(text)
	if err != nil {
		return "", fmt.Errorf("invalid %s template: %w", field, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", field, err)
	}
	return buf.String(), nil
}

// RenderFeed renders the update feed document
func RenderFeed(data FeedData) (string, error) {
	var buf bytes.Buffer
	if err := feed.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render appcast template: %w", err)
	}
	return buf.String(), nil
}

// WriteFeed writes content to path, replacing any existing file
func WriteFeed(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
