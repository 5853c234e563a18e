package visualization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"pypln-web/internal/mail"
)

var (
	ErrUnknownVisualization = errors.New("visualization not found")
	ErrFormatNotSupported   = errors.New("visualization format not supported")
)

// Input carries the properties a visualization requires. Log receives
// warnings that must not fail the rendering; nil means slog.Default.
type Input struct {
	Data   map[string]json.RawMessage
	Mailer mail.AdminMailer
	Log    *slog.Logger
}

type ProcessFunc func(ctx context.Context, in Input) (map[string]any, error)

// Visualization renders a set of pipeline properties in one or more formats.
type Visualization struct {
	Slug     string
	Label    string
	Requires []string
	Formats  []string
	Process  ProcessFunc
}

func (v *Visualization) Supports(format string) bool {
	return slices.Contains(v.Formats, format)
}

// Ready reports whether every required property is in available.
func (v *Visualization) Ready(available []string) bool {
	for _, r := range v.Requires {
		if !slices.Contains(available, r) {
			return false
		}
	}
	return true
}

var (
	PlainText = &Visualization{
		Slug:     "text",
		Label:    "Plain text",
		Requires: []string{"text"},
		Formats:  []string{"html", "txt"},
		Process:  passThrough,
	}
	PartOfSpeech = &Visualization{
		Slug:     "part-of-speech",
		Label:    "Part-of-speech",
		Requires: []string{"pos", "tokens", "tagset"},
		Formats:  []string{"html", "csv"},
		Process:  partOfSpeech,
	}
	TokenFrequency = &Visualization{
		Slug:     "token-frequency-histogram",
		Label:    "Token frequency histogram",
		Requires: []string{"freqdist", "momentum_1", "momentum_2", "momentum_3", "momentum_4"},
		Formats:  []string{"html", "csv"},
		Process:  tokenFrequency,
	}
	WordCloud = &Visualization{
		Slug:     "word-cloud",
		Label:    "Word cloud",
		Requires: []string{"freqdist", "language"},
		Formats:  []string{"html"},
		Process:  wordCloud,
	}
	Statistics = &Visualization{
		Slug:     "statistics",
		Label:    "Statistics",
		Requires: []string{"tokens", "sentences", "repertoire", "average_sentence_repertoire", "average_sentence_length"},
		Formats:  []string{"html"},
		Process:  statistics,
	}
)

// All lists the visualizations in display order.
var All = []*Visualization{PlainText, PartOfSpeech, TokenFrequency, WordCloud, Statistics}

func Lookup(slug string) (*Visualization, error) {
	for _, v := range All {
		if v.Slug == slug {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownVisualization, slug)
}

// Available returns the visualizations whose requirements are all present.
func Available(properties []string) []*Visualization {
	out := make([]*Visualization, 0, len(All))
	for _, v := range All {
		if v.Ready(properties) {
			out = append(out, v)
		}
	}
	return out
}

func decode[T any](in Input, key string) (T, error) {
	var v T
	raw, ok := in.Data[key]
	if !ok {
		return v, fmt.Errorf("missing property %q", key)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode property %q failed: %w", key, err)
	}
	return v, nil
}

func passThrough(_ context.Context, in Input) (map[string]any, error) {
	out := make(map[string]any, len(in.Data))
	for k, raw := range in.Data {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode property %q failed: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
