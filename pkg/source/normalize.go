package source

import (
	"crypto/md5"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DescriptionLimit is the character budget for normalized descriptions.
const DescriptionLimit = 300

// DeriveID returns the stable identifier for a canonical URL. The same
// URL always yields the same id across runs.
func DeriveID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])[:12]
}

// StripMarkup removes HTML tags and decodes entities, collapsing
// whitespace runs left behind by block elements.
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}
	text := s
	if strings.ContainsRune(s, '<') {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			text = doc.Text()
		}
	}
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// Truncate caps s at maxLen characters, appending an ellipsis when cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// timeFormats is the ordered list of timestamp layouts seen across feeds
// and APIs. First match wins.
var timeFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime resolves raw through the known layouts. When every layout
// fails (or raw is empty) it returns now with guessed=true so the scorer
// can apply neutral recency credit instead of full or zero.
func ParseTime(raw string, now time.Time) (t time.Time, guessed bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, true
	}
	for _, layout := range timeFormats {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), false
		}
	}
	return now, true
}

// ExtractThumbnail scans embedded markup for the first image reference.
func ExtractThumbnail(htmlContent string) string {
	if !strings.Contains(htmlContent, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return src
}

var youtubeIDPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]+)`)

// YouTubeVideoID extracts the video id from a recognized video-sharing
// URL, or returns "" when the link is not one.
func YouTubeVideoID(link string) string {
	m := youtubeIDPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return m[1]
}

// YouTubeThumbnail derives the deterministic thumbnail URL for a video
// link, or returns "" when the link is not a recognized video URL.
func YouTubeThumbnail(link string) string {
	id := YouTubeVideoID(link)
	if id == "" {
		return ""
	}
	return "https://img.youtube.com/vi/" + id + "/hqdefault.jpg"
}
