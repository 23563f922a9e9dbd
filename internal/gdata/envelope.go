package gdata

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	atomNamespace     = "http://www.w3.org/2005/Atom"
	mediaNamespace    = "http://search.yahoo.com/mrss/"
	youtubeNamespace  = "http://gdata.youtube.com/schemas/2007"
	categoryScheme    = "http://gdata.youtube.com/schemas/2007/categories.cat"
	defaultMIMEType   = "video/mp4"
	plainText         = "plain"
	keywordsSeparator = ","
)

// Metadata describes a video. Upload merges it over DefaultMetadata; Update
// sends it exactly as given.
type Metadata struct {
	Title       string
	Description string
	Category    string
	Keywords    []string
	MIMEType    string
	Filename    string
	Private     bool
}

func DefaultMetadata() Metadata {
	return Metadata{
		MIMEType: defaultMIMEType,
		Keywords: []string{},
	}
}

func (m Metadata) WithDefaults() Metadata {
	merged := DefaultMetadata()
	merged.Title = m.Title
	merged.Description = m.Description
	merged.Category = m.Category
	merged.Filename = m.Filename
	merged.Private = m.Private
	if m.Keywords != nil {
		merged.Keywords = m.Keywords
	}
	if m.MIMEType != "" {
		merged.MIMEType = m.MIMEType
	}
	return merged
}

type entryEnvelope struct {
	XMLName    xml.Name      `xml:"entry"`
	Xmlns      string        `xml:"xmlns,attr"`
	XmlnsMedia string        `xml:"xmlns:media,attr"`
	XmlnsYT    string        `xml:"xmlns:yt,attr"`
	Group      groupEnvelope `xml:"media:group"`
}

type groupEnvelope struct {
	Title       typedText    `xml:"media:title"`
	Description typedText    `xml:"media:description"`
	Category    categoryText `xml:"media:category"`
	Keywords    string       `xml:"media:keywords"`
	Private     *struct{}    `xml:"yt:private,omitempty"`
}

type typedText struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type categoryText struct {
	Scheme string `xml:"scheme,attr"`
	Value  string `xml:",chardata"`
}

// Envelope renders the atom entry sent alongside the video.
func (m Metadata) Envelope() ([]byte, error) {
	entry := entryEnvelope{
		Xmlns:      atomNamespace,
		XmlnsMedia: mediaNamespace,
		XmlnsYT:    youtubeNamespace,
		Group: groupEnvelope{
			Title:       typedText{Type: plainText, Value: m.Title},
			Description: typedText{Type: plainText, Value: m.Description},
			Category:    categoryText{Scheme: categoryScheme, Value: m.Category},
			Keywords:    strings.Join(m.Keywords, keywordsSeparator),
		},
	}
	if m.Private {
		entry.Group.Private = &struct{}{}
	}

	data, err := xml.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return append([]byte(xml.Header), data...), nil
}
