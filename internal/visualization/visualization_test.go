package visualization

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pypln-web/internal/mail"
)

func input(t *testing.T, values map[string]any) Input {
	t.Helper()
	data := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		data[k] = raw
	}
	return Input{Data: data}
}

func TestLookup(t *testing.T) {
	v, err := Lookup("word-cloud")
	require.NoError(t, err)
	assert.Same(t, WordCloud, v)

	_, err = Lookup("unicorns")
	assert.ErrorIs(t, err, ErrUnknownVisualization)
}

func TestAvailableRequiresEveryProperty(t *testing.T) {
	got := Available([]string{"text", "freqdist", "language", "momentum_1"})

	slugs := make([]string, 0, len(got))
	for _, v := range got {
		slugs = append(slugs, v.Slug)
	}
	assert.Equal(t, []string{"text", "word-cloud"}, slugs)
	assert.Empty(t, Available(nil))
}

func TestStatistics(t *testing.T) {
	in := input(t, map[string]any{
		"tokens":                      []string{"The", "sun", "is", "the", "sun", "."},
		"sentences":                   [][]string{{"The", "sun", "."}, {"The", "sun", "."}, {"Hi"}},
		"repertoire":                  0.5,
		"average_sentence_repertoire": 0.123456,
		"average_sentence_length":     2.3333,
	})

	out, err := Statistics.Process(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "50.00", out["repertoire"])
	assert.Equal(t, "12.35", out["average_sentence_repertoire"])
	assert.Equal(t, "2.33", out["average_sentence_length"])
	assert.Equal(t, 6, out["number_of_tokens"])
	assert.Equal(t, 5, out["number_of_unique_tokens"])
	assert.Equal(t, 3, out["number_of_sentences"])
	assert.Equal(t, 2, out["number_of_unique_sentences"])
	assert.Equal(t, "83.00", out["percentual_tokens"])
	assert.Equal(t, "66.00", out["percentual_sentences"])
}

func TestStatisticsEmptyDocument(t *testing.T) {
	in := input(t, map[string]any{
		"tokens":                      []string{},
		"sentences":                   [][]string{},
		"repertoire":                  0,
		"average_sentence_repertoire": 0,
		"average_sentence_length":     0,
	})

	out, err := Statistics.Process(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "0.00", out["percentual_tokens"])
	assert.Equal(t, "0.00", out["percentual_sentences"])
}

func TestWordCloudFiltersStopwordsAndPunctuation(t *testing.T) {
	in := input(t, map[string]any{
		"freqdist": [][]any{{"the", 10}, {",", 8}, {"shrubbery", 3}, {"knights", 2}, {"...", 1}},
		"language": "en",
	})

	out, err := WordCloud.Process(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []FreqEntry{{"shrubbery", 3}, {"knights", 2}, {"...", 1}}, out["freqdist"])
}

func TestWordCloudUnknownLanguageKeepsWords(t *testing.T) {
	in := input(t, map[string]any{
		"freqdist": [][]any{{"the", 10}, {"!", 1}},
		"language": "xx",
	})

	out, err := WordCloud.Process(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []FreqEntry{{"the", 10}}, out["freqdist"])
}

func TestTokenFrequency(t *testing.T) {
	in := input(t, map[string]any{
		"freqdist":   [][]any{{"a", 3}, {"b", 1}, {"c", 1}, {"d", 2}, {"e", 2}, {"f", 1}},
		"momentum_1": 1.0,
		"momentum_2": 2.555,
		"momentum_3": 3.0,
		"momentum_4": 4.1289,
	})

	out, err := TokenFrequency.Process(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []ValueCount{{1, 3}, {2, 2}, {3, 1}}, out["values"])
	assert.Equal(t, "1.00", out["momentum_1"])
	assert.Equal(t, "3.00", out["momentum_3"])
	assert.Equal(t, "4.13", out["momentum_4"])
}

func TestPartOfSpeech(t *testing.T) {
	in := input(t, map[string]any{
		"pos":    [][]string{{"The", "DT"}, {"sun", "NN"}, {"shines", "VBZ"}, {".", "."}},
		"tokens": []string{"The", "sun", "shines", "."},
		"tagset": nil,
	})

	out, err := PartOfSpeech.Process(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "en-nltk", out["tagset_name"])
	assert.Equal(t, []TaggedToken{
		{Slug: "determiner", Token: "The"},
		{Slug: "noun", Token: "sun"},
		{Slug: "verb", Token: "shines"},
		{Slug: "punctuation", Token: "."},
	}, out["pos"])
	assert.Len(t, out["token_list"], 4)
	assert.Equal(t, CommonTags, out["most_common"])
}

func TestPartOfSpeechMailsUnknownTags(t *testing.T) {
	mailer := mail.NewConsoleMailer([]string{"admin@example.com"}, nil)
	in := input(t, map[string]any{
		"pos":    [][]string{{"The", "DT"}, {"grail", "XX"}, {"!", "."}},
		"tokens": []string{"The", "grail", "!"},
		"tagset": "en-nltk",
	})
	in.Mailer = mailer

	out, err := PartOfSpeech.Process(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []TokenListEntry{{0, "The", "DT"}, {2, "!", "."}}, out["token_list"])

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "[PyPLN] Tags not in tagset", sent[0].Subject)
	assert.Equal(t, "Tag XX was assigned to token \"grail\", but was not found in tagset en-nltk.\n\n", sent[0].Body)
}

type failingMailer struct{}

func (failingMailer) MailAdmins(context.Context, string, string) error {
	return errors.New("smtp: connection refused")
}

func TestPartOfSpeechIgnoresMailFailure(t *testing.T) {
	in := input(t, map[string]any{
		"pos":    [][]string{{"The", "DT"}, {"grail", "NOT-A-TAG"}},
		"tokens": []string{"The", "grail"},
		"tagset": "en-nltk",
	})
	in.Mailer = failingMailer{}

	out, err := PartOfSpeech.Process(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []TokenListEntry{{0, "The", "DT"}}, out["token_list"])
}

func TestRenderHTML(t *testing.T) {
	out, err := PlainText.Process(context.Background(), input(t, map[string]any{"text": "<b>Ni!</b>"}))
	require.NoError(t, err)

	r, err := Render(PlainText, "html", 42, out)
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", r.ContentType)
	assert.Empty(t, r.Filename)
	assert.Contains(t, string(r.Body), "&lt;b&gt;Ni!&lt;/b&gt;")
	assert.Contains(t, string(r.Body), "/documents/42/visualization/text.txt")
}

func TestRenderText(t *testing.T) {
	r, err := Render(PlainText, "txt", 42, map[string]any{"text": "Bring us a shrubbery!"})
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", r.ContentType)
	assert.Equal(t, "42-text.txt", r.Filename)
	assert.Equal(t, "Bring us a shrubbery!", string(r.Body))
}

func TestRenderCSVQuotesFields(t *testing.T) {
	data := map[string]any{
		"token_list": []TokenListEntry{{0, "Hello, world", "NN"}, {1, "x", "DT"}},
	}

	r, err := Render(PartOfSpeech, "csv", 7, data)
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", r.ContentType)
	assert.Equal(t, "7-part-of-speech.csv", r.Filename)
	assert.Equal(t, "Position,Token,Tag\n0,\"Hello, world\",NN\n1,x,DT\n", string(r.Body))
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := Render(WordCloud, "csv", 1, nil)
	assert.True(t, errors.Is(err, ErrFormatNotSupported))
}
