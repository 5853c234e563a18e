package visualization

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

func formatFloat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func statistics(_ context.Context, in Input) (map[string]any, error) {
	repertoire, err := decode[float64](in, "repertoire")
	if err != nil {
		return nil, err
	}
	sentenceRepertoire, err := decode[float64](in, "average_sentence_repertoire")
	if err != nil {
		return nil, err
	}
	sentenceLength, err := decode[float64](in, "average_sentence_length")
	if err != nil {
		return nil, err
	}
	tokens, err := decode[[]string](in, "tokens")
	if err != nil {
		return nil, err
	}
	sentences, err := decode[[][]string](in, "sentences")
	if err != nil {
		return nil, err
	}

	uniqueTokens := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		uniqueTokens[t] = struct{}{}
	}
	uniqueSentences := make(map[string]struct{}, len(sentences))
	for _, s := range sentences {
		uniqueSentences[strings.Join(s, " ")] = struct{}{}
	}

	return map[string]any{
		"tokens":                      tokens,
		"sentences":                   sentences,
		"repertoire":                  formatFloat(repertoire * 100),
		"average_sentence_repertoire": formatFloat(sentenceRepertoire * 100),
		"average_sentence_length":     formatFloat(sentenceLength),
		"number_of_tokens":            len(tokens),
		"number_of_unique_tokens":     len(uniqueTokens),
		"number_of_sentences":         len(sentences),
		"number_of_unique_sentences":  len(uniqueSentences),
		"percentual_tokens":           percentage(len(uniqueTokens), len(tokens)),
		"percentual_sentences":        percentage(len(uniqueSentences), len(sentences)),
	}, nil
}

// percentage truncates to a whole percent before formatting.
func percentage(part, total int) string {
	if total == 0 {
		return formatFloat(0)
	}
	return formatFloat(float64(100 * part / total))
}

// FreqEntry is one [token, count] pair of a frequency distribution.
type FreqEntry struct {
	Token string
	Count int
}

func (e *FreqEntry) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("frequency entry must have 2 items, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Token); err != nil {
		return err
	}
	var count float64
	if err := json.Unmarshal(pair[1], &count); err != nil {
		return err
	}
	e.Count = int(count)
	return nil
}

func (e FreqEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Token, e.Count})
}

func wordCloud(_ context.Context, in Input) (map[string]any, error) {
	freqdist, err := decode[[]FreqEntry](in, "freqdist")
	if err != nil {
		return nil, err
	}
	language, err := decode[string](in, "language")
	if err != nil {
		return nil, err
	}

	stop := Stopwords(strings.ToLower(Languages[language]))
	filtered := make([]FreqEntry, 0, len(freqdist))
	for _, e := range freqdist {
		if len(e.Token) == 1 && strings.Contains(punctuation, e.Token) {
			continue
		}
		if _, ok := stop[e.Token]; ok {
			continue
		}
		filtered = append(filtered, e)
	}
	return map[string]any{
		"freqdist": filtered,
		"language": language,
	}, nil
}

// ValueCount says how many distinct tokens occur Frequency times.
type ValueCount struct {
	Frequency int
	Tokens    int
}

func tokenFrequency(_ context.Context, in Input) (map[string]any, error) {
	freqdist, err := decode[[]FreqEntry](in, "freqdist")
	if err != nil {
		return nil, err
	}

	counter := make(map[int]int)
	for _, e := range freqdist {
		counter[e.Count]++
	}
	values := make([]ValueCount, 0, len(counter))
	for freq, n := range counter {
		values = append(values, ValueCount{Frequency: freq, Tokens: n})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Tokens != values[j].Tokens {
			return values[i].Tokens > values[j].Tokens
		}
		return values[i].Frequency < values[j].Frequency
	})

	out := map[string]any{
		"freqdist": freqdist,
		"values":   values,
	}
	for _, key := range []string{"momentum_1", "momentum_2", "momentum_3", "momentum_4"} {
		m, err := decode[float64](in, key)
		if err != nil {
			return nil, err
		}
		out[key] = formatFloat(m)
	}
	return out, nil
}

// TaggedToken is a token with the coarse category of its tag.
type TaggedToken struct {
	Slug  string
	Token string
}

type TokenListEntry struct {
	Position int
	Token    string
	Tag      string
}

type tagError struct {
	token, tag, tagset string
}

func partOfSpeech(ctx context.Context, in Input) (map[string]any, error) {
	tagsetName := DefaultTagset
	if raw, ok := in.Data["tagset"]; ok {
		var name *string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, fmt.Errorf("decode property %q failed: %w", "tagset", err)
		}
		if name != nil && *name != "" {
			tagsetName = *name
		}
	}
	tagset := Tagsets[tagsetName]

	items, err := decode[[][]json.RawMessage](in, "pos")
	if err != nil {
		return nil, err
	}

	pos := make([]TaggedToken, 0, len(items))
	tokenList := make([]TokenListEntry, 0, len(items))
	var errs []tagError
	for idx, item := range items {
		if len(item) < 2 {
			continue
		}
		var token, tagName string
		if err := json.Unmarshal(item[0], &token); err != nil {
			return nil, fmt.Errorf("decode pos token failed: %w", err)
		}
		if err := json.Unmarshal(item[1], &tagName); err != nil {
			return nil, fmt.Errorf("decode pos tag failed: %w", err)
		}
		tag, ok := tagset[tagName]
		if !ok {
			errs = append(errs, tagError{token: token, tag: tagName, tagset: tagsetName})
			continue
		}
		pos = append(pos, TaggedToken{Slug: tag.Slug, Token: token})
		tokenList = append(tokenList, TokenListEntry{Position: idx, Token: token, Tag: tagName})
	}

	if len(errs) > 0 && in.Mailer != nil {
		if err := in.Mailer.MailAdmins(ctx, "Tags not in tagset", unknownTagsMessage(errs)); err != nil {
			log := in.Log
			if log == nil {
				log = slog.Default()
			}
			log.WarnContext(ctx, "mail unknown tags to admins failed", "tags", len(errs), "error", err)
		}
	}

	mostCommon := CommonTags
	if len(mostCommon) > 20 {
		mostCommon = mostCommon[:20]
	}
	return map[string]any{
		"pos":         pos,
		"tagset":      tagset,
		"tagset_name": tagsetName,
		"most_common": mostCommon,
		"token_list":  tokenList,
	}, nil
}

func unknownTagsMessage(errs []tagError) string {
	var b strings.Builder
	for _, e := range errs {
		fmt.Fprintf(&b, "Tag %s was assigned to token %q, but was not found in tagset %s.\n\n", e.tag, e.token, e.tagset)
	}
	return b.String()
}
