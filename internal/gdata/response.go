package gdata

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const videoPathMarker = "videos/"

var titlePattern = regexp.MustCompile(`(?is)<title>(.*?)</title>`)

type errorsDocument struct {
	XMLName xml.Name        `xml:"errors"`
	Errors  []errorDocument `xml:"error"`
}

type errorDocument struct {
	Domain   string `xml:"domain"`
	Code     string `xml:"code"`
	Location string `xml:"location"`
}

type entryDocument struct {
	XMLName   xml.Name `xml:"entry"`
	ID        string   `xml:"id"`
	Published string   `xml:"published"`
	Updated   string   `xml:"updated"`
	Group     struct {
		Title       string    `xml:"title"`
		Description string    `xml:"description"`
		Category    string    `xml:"category"`
		Keywords    string    `xml:"keywords"`
		Private     *struct{} `xml:"private"`
		VideoID     string    `xml:"videoid"`
	} `xml:"group"`
}

// VideoEntry is the server's representation of an uploaded video.
type VideoEntry struct {
	ID          string
	VideoID     string
	Title       string
	Description string
	Category    string
	Keywords    []string
	Private     bool
	Published   string
	Updated     string
	Raw         []byte
}

// Classify maps a response to nil on success, an AuthenticationError on 403
// and an UploadError for anything else.
func Classify(status int, body []byte) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	if status == http.StatusForbidden {
		msg := pageTitle(body)
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &AuthenticationError{StatusCode: status, Message: msg}
	}

	faults := parseFaults(body)
	if len(faults) > 0 {
		return &UploadError{StatusCode: status, Message: faultMessage(faults), Faults: faults}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &UploadError{StatusCode: status, Message: msg}
}

func pageTitle(body []byte) string {
	m := titlePattern.FindSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(string(m[1]))
}

func parseFaults(body []byte) []Fault {
	var doc errorsDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil
	}

	faults := make([]Fault, 0, len(doc.Errors))
	for _, e := range doc.Errors {
		loc := strings.TrimSpace(e.Location)
		faults = append(faults, Fault{
			Domain:   strings.TrimSpace(e.Domain),
			Code:     strings.TrimSpace(e.Code),
			Location: loc,
			Field:    locationField(loc),
		})
	}
	return faults
}

// locationField isolates the metadata field named by a fault location,
// e.g. "media:group/media:title/text()" yields "title". Predicates are
// ignored.
func locationField(location string) string {
	path := stripPredicates(strings.TrimSuffix(location, "/text()"))
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.LastIndex(path, ":"); i >= 0 {
		path = path[i+1:]
	}
	return path
}

// stripPredicates drops xpath predicates such as [@scheme='http://...'],
// whose contents may hold slashes and colons of their own.
func stripPredicates(path string) string {
	var b strings.Builder
	depth := 0
	for _, r := range path {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// VideoID extracts the identifier from an upload response entry.
func VideoID(body []byte) (string, error) {
	entry, err := ParseEntry(body)
	if err != nil {
		return "", err
	}
	if entry.VideoID == "" {
		return "", fmt.Errorf("no video id in response")
	}
	return entry.VideoID, nil
}

func ParseEntry(body []byte) (*VideoEntry, error) {
	var doc entryDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse entry: %w", err)
	}

	id := strings.TrimSpace(doc.ID)
	videoID := trailingVideoID(id)
	if videoID == "" {
		videoID = strings.TrimSpace(doc.Group.VideoID)
	}

	entry := &VideoEntry{
		ID:          id,
		VideoID:     videoID,
		Title:       doc.Group.Title,
		Description: doc.Group.Description,
		Category:    strings.TrimSpace(doc.Group.Category),
		Keywords:    splitKeywords(doc.Group.Keywords),
		Private:     doc.Group.Private != nil,
		Published:   strings.TrimSpace(doc.Published),
		Updated:     strings.TrimSpace(doc.Updated),
		Raw:         bytes.Clone(body),
	}
	return entry, nil
}

func trailingVideoID(id string) string {
	i := strings.LastIndex(id, videoPathMarker)
	if i < 0 {
		return ""
	}
	return strings.Trim(id[i+len(videoPathMarker):], "/")
}

func splitKeywords(s string) []string {
	keywords := []string{}
	for _, k := range strings.Split(s, keywordsSeparator) {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}
