package visualization

import (
	"embed"
	"strings"
	"sync"
)

// Languages maps the ISO 639-1 codes produced by language detection to names.
var Languages = map[string]string{
	"ar": "Arabic",
	"da": "Danish",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fi": "Finnish",
	"fr": "French",
	"hu": "Hungarian",
	"it": "Italian",
	"nl": "Dutch",
	"no": "Norwegian",
	"pt": "Portuguese",
	"ru": "Russian",
	"sv": "Swedish",
	"tr": "Turkish",
}

// LanguageName returns the name for code, or "Unknown".
func LanguageName(code string) string {
	if name, ok := Languages[code]; ok {
		return name
	}
	return "Unknown"
}

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

//go:embed stopwords/*.txt
var stopwordFiles embed.FS

var (
	stopwordsOnce sync.Once
	stopwordSets  map[string]map[string]struct{}
)

// Stopwords returns the stopword set for a lower-case language name such
// as "english". Unknown languages yield nil.
func Stopwords(language string) map[string]struct{} {
	stopwordsOnce.Do(loadStopwords)
	return stopwordSets[language]
}

func loadStopwords() {
	stopwordSets = make(map[string]map[string]struct{})
	entries, err := stopwordFiles.ReadDir("stopwords")
	if err != nil {
		return
	}
	for _, e := range entries {
		raw, err := stopwordFiles.ReadFile("stopwords/" + e.Name())
		if err != nil {
			continue
		}
		set := make(map[string]struct{})
		for _, w := range strings.Fields(string(raw)) {
			set[w] = struct{}{}
		}
		stopwordSets[strings.TrimSuffix(e.Name(), ".txt")] = set
	}
}
