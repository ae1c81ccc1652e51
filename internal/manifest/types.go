package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context is the IIIF Presentation API v3 JSON-LD context.
const Context = "http://iiif.io/api/presentation/3/context.json"

// LangMap maps a language tag to value strings, the IIIF v3 form of
// localized text. The "none" tag marks language-neutral values.
type LangMap map[string][]string

// Add appends value under lang.
func (m LangMap) Add(lang, value string) {
	if lang == "" {
		lang = "none"
	}
	m[lang] = append(m[lang], value)
}

// LabeledValue pairs a localized label with a localized value, used
// for descriptive metadata and the required statement.
type LabeledValue struct {
	Label LangMap `json:"label"`
	Value LangMap `json:"value"`
}

// Provider describes an organization that contributed the object.
type Provider struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Label LangMap `json:"label"`
}

// Thumbnail references a representative image for the manifest.
type Thumbnail struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Service describes the IIIF Image API endpoint behind a body.
type Service struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Profile string `json:"profile"`
}

// Body is the painted image resource of an annotation.
type Body struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Format  string    `json:"format,omitempty"`
	Height  int       `json:"height,omitempty"`
	Width   int       `json:"width,omitempty"`
	Service []Service `json:"service,omitempty"`
}

// Annotation paints a body onto a canvas.
type Annotation struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Motivation string `json:"motivation"`
	Body       Body   `json:"body"`
	Target     string `json:"target"`
}

// AnnotationPage groups the annotations of a canvas.
type AnnotationPage struct {
	ID    string       `json:"id"`
	Type  string       `json:"type"`
	Items []Annotation `json:"items"`
}

// Canvas is one logical page of the manifest. Canvas order is page
// order and always mirrors builder input order.
type Canvas struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Label    LangMap          `json:"label,omitempty"`
	Height   int              `json:"height"`
	Width    int              `json:"width"`
	Metadata []LabeledValue   `json:"metadata,omitempty"`
	Items    []AnnotationPage `json:"items"`
}

// Manifest is the top-level IIIF Presentation v3 document. Optional
// sections are pointers or nilable slices so that absent blocks are
// omitted from JSON entirely rather than emitted empty.
type Manifest struct {
	Context           string         `json:"@context"`
	ID                string         `json:"id"`
	Type              string         `json:"type"`
	Label             LangMap        `json:"label"`
	Behavior          []string       `json:"behavior,omitempty"`
	Metadata          []LabeledValue `json:"metadata,omitempty"`
	Rights            string         `json:"rights,omitempty"`
	RequiredStatement *LabeledValue  `json:"requiredStatement,omitempty"`
	Summary           LangMap        `json:"summary,omitempty"`
	Provider          []Provider     `json:"provider,omitempty"`
	Thumbnail         []Thumbnail    `json:"thumbnail,omitempty"`
	Items             []Canvas       `json:"items"`
}

// JSON serializes the manifest without HTML escaping, matching the
// URIs-in-ids usage of IIIF documents.
func (m *Manifest) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("manifest: encode: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Text is a possibly-localized string. It unmarshals from either a
// plain JSON string or an object carrying lang plus value (or label,
// the manifest-level alias), so callers can pass either shape
// interchangeably.
type Text struct {
	Lang  string `json:"lang,omitempty"`
	Value string `json:"value"`
}

// Plain wraps a string into a Text with no language, which the
// builder resolves to its default language.
func Plain(value string) Text {
	return Text{Value: value}
}

// TextList is a list of Texts that also unmarshals from a single
// string or object, the shorthand callers use for one-value labels
// and summaries.
type TextList []Text

func (l *TextList) UnmarshalJSON(data []byte) error {
	var many []Text
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one Text
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("manifest: expected text or list of texts: %w", err)
	}
	*l = TextList{one}
	return nil
}

func (t *Text) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = Text{Value: plain}
		return nil
	}
	var obj struct {
		Lang  string `json:"lang"`
		Value string `json:"value"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("manifest: text must be a string or a lang/value object: %w", err)
	}
	value := obj.Value
	if value == "" {
		value = obj.Label
	}
	*t = Text{Lang: obj.Lang, Value: value}
	return nil
}
