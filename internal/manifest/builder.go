package manifest

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"iiifingest/internal/errs"
)

// Defaults applied when Params leaves the corresponding field unset.
const (
	DefaultLang           = "en"
	DefaultServiceType    = "ImageService2"
	DefaultServiceProfile = "level2"
)

var defaultBehaviors = []string{"paged"}

// Entry is one descriptive metadata or required-statement pair in the
// flat caller-facing form.
type Entry struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	LabelLang string `json:"label_lang,omitempty"`
	ValueLang string `json:"value_lang,omitempty"`
}

// CanvasSource describes one canvas to synthesize, in page order.
type CanvasSource struct {
	AssetID  string
	Width    int
	Height   int
	Label    Text
	Metadata []Entry
	// ImageURL is the public delivery URL of the image and doubles as
	// the service id. ImageSuffix is the Image API path appended to
	// form the body id, e.g. "/full/max/0/default.jpg".
	ImageURL    string
	ImageSuffix string
	Format      string
}

// ProviderSource describes a contributing organization.
type ProviderSource struct {
	ID     string `json:"id"`
	Labels []Text `json:"labels"`
}

// Params carries everything Build needs. Optional fields left at
// their zero value are omitted from the output, not emitted empty.
type Params struct {
	BaseURL           string
	Labels            []Text
	Canvases          []CanvasSource
	Behaviors         []string
	DefaultLang       string
	ServiceType       string
	ServiceProfile    string
	Metadata          []Entry
	Rights            string
	RequiredStatement []Entry
	Summary           []Text
	Providers         []ProviderSource
	Thumbnails        []Thumbnail
}

// Build assembles a complete manifest tree as plain data. The child
// resources (canvas, annotation page, annotation) compose their ids
// against the base URL with a trailing slash, while the manifest's
// own id is the base URL with no trailing slash; the two forms are
// normalized explicitly here rather than left to string formatting.
func Build(p Params) (*Manifest, error) {
	if strings.TrimSpace(p.BaseURL) == "" {
		return nil, errs.Wrap(errs.ErrValidation, nil, "manifest", "base url is required")
	}
	if len(p.Labels) == 0 {
		return nil, errs.Wrap(errs.ErrValidation, nil, "manifest", "at least one label is required")
	}

	defaultLang := p.DefaultLang
	if defaultLang == "" {
		defaultLang = DefaultLang
	}
	if err := validateLang(defaultLang); err != nil {
		return nil, err
	}
	serviceType := p.ServiceType
	if serviceType == "" {
		serviceType = DefaultServiceType
	}
	serviceProfile := p.ServiceProfile
	if serviceProfile == "" {
		serviceProfile = DefaultServiceProfile
	}
	behaviors := p.Behaviors
	if behaviors == nil {
		behaviors = defaultBehaviors
	}

	id := strings.TrimSuffix(p.BaseURL, "/")
	childBase := id + "/"

	m := &Manifest{
		Context:  Context,
		ID:       id,
		Type:     "Manifest",
		Label:    LangMap{},
		Behavior: behaviors,
		Rights:   p.Rights,
		Items:    make([]Canvas, 0, len(p.Canvases)),
	}

	for _, label := range p.Labels {
		if err := addText(m.Label, label, defaultLang); err != nil {
			return nil, err
		}
	}

	if len(p.Metadata) > 0 {
		metadata, err := labeledValues(p.Metadata, defaultLang)
		if err != nil {
			return nil, err
		}
		m.Metadata = metadata
	}

	if len(p.RequiredStatement) > 0 {
		statement, err := mergedLabeledValue(p.RequiredStatement, defaultLang)
		if err != nil {
			return nil, err
		}
		m.RequiredStatement = statement
	}

	if len(p.Summary) > 0 {
		m.Summary = LangMap{}
		for _, s := range p.Summary {
			if err := addText(m.Summary, s, defaultLang); err != nil {
				return nil, err
			}
		}
	}

	for _, src := range p.Providers {
		provider := Provider{ID: src.ID, Type: "Agent", Label: LangMap{}}
		for _, label := range src.Labels {
			if err := addText(provider.Label, label, defaultLang); err != nil {
				return nil, err
			}
		}
		m.Provider = append(m.Provider, provider)
	}

	m.Thumbnail = append(m.Thumbnail, p.Thumbnails...)

	for _, src := range p.Canvases {
		canvas, err := buildCanvas(childBase, src, defaultLang, serviceType, serviceProfile)
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, canvas)
	}

	return m, nil
}

func buildCanvas(childBase string, src CanvasSource, defaultLang, serviceType, serviceProfile string) (Canvas, error) {
	canvasID := fmt.Sprintf("%scanvas/canvas:%s", childBase, src.AssetID)
	pageID := fmt.Sprintf("%sannotationPage/annopage:%s", childBase, src.AssetID)
	annotationID := fmt.Sprintf("%sannotation/annotation:%s", childBase, src.AssetID)

	canvas := Canvas{
		ID:     canvasID,
		Type:   "Canvas",
		Label:  LangMap{},
		Height: src.Height,
		Width:  src.Width,
	}
	if err := addText(canvas.Label, src.Label, defaultLang); err != nil {
		return Canvas{}, err
	}
	if len(src.Metadata) > 0 {
		metadata, err := labeledValues(src.Metadata, defaultLang)
		if err != nil {
			return Canvas{}, err
		}
		canvas.Metadata = metadata
	}

	annotation := Annotation{
		ID:         annotationID,
		Type:       "Annotation",
		Motivation: "painting",
		Target:     canvasID,
		Body: Body{
			ID:     src.ImageURL + src.ImageSuffix,
			Type:   "Image",
			Format: src.Format,
			Height: src.Height,
			Width:  src.Width,
			Service: []Service{{
				ID:      src.ImageURL,
				Type:    serviceType,
				Profile: serviceProfile,
			}},
		},
	}

	canvas.Items = []AnnotationPage{{
		ID:    pageID,
		Type:  "AnnotationPage",
		Items: []Annotation{annotation},
	}}
	return canvas, nil
}

func labeledValues(entries []Entry, defaultLang string) ([]LabeledValue, error) {
	out := make([]LabeledValue, 0, len(entries))
	for _, e := range entries {
		lv, err := labeledValue(e, defaultLang)
		if err != nil {
			return nil, err
		}
		out = append(out, lv)
	}
	return out, nil
}

// mergedLabeledValue folds multiple entries into the single
// requiredStatement object the Presentation API allows.
func mergedLabeledValue(entries []Entry, defaultLang string) (*LabeledValue, error) {
	merged := LabeledValue{Label: LangMap{}, Value: LangMap{}}
	for _, e := range entries {
		lv, err := labeledValue(e, defaultLang)
		if err != nil {
			return nil, err
		}
		for lang, values := range lv.Label {
			merged.Label[lang] = append(merged.Label[lang], values...)
		}
		for lang, values := range lv.Value {
			merged.Value[lang] = append(merged.Value[lang], values...)
		}
	}
	return &merged, nil
}

func labeledValue(e Entry, defaultLang string) (LabeledValue, error) {
	labelLang := e.LabelLang
	if labelLang == "" {
		labelLang = defaultLang
	}
	valueLang := e.ValueLang
	if valueLang == "" {
		valueLang = defaultLang
	}
	for _, lang := range []string{labelLang, valueLang} {
		if err := validateLang(lang); err != nil {
			return LabeledValue{}, err
		}
	}
	return LabeledValue{
		Label: LangMap{labelLang: {e.Label}},
		Value: LangMap{valueLang: {e.Value}},
	}, nil
}

func addText(m LangMap, t Text, defaultLang string) error {
	lang := t.Lang
	if lang == "" {
		lang = defaultLang
	}
	if err := validateLang(lang); err != nil {
		return err
	}
	m.Add(lang, t.Value)
	return nil
}

func validateLang(lang string) error {
	if lang == "" || lang == "none" {
		return nil
	}
	if _, err := language.Parse(lang); err != nil {
		return errs.Wrap(errs.ErrValidation, err, "manifest", fmt.Sprintf("invalid language tag %q", lang))
	}
	return nil
}
