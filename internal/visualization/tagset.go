package visualization

// Tag describes one part-of-speech tag. Slug groups tags into the coarse
// categories used for colouring.
type Tag struct {
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

const DefaultTagset = "en-nltk"

type Category struct {
	Slug  string
	Label string
}

// CommonTags lists the coarse categories in legend order.
var CommonTags = []Category{
	{"noun", "Noun"},
	{"verb", "Verb"},
	{"adjective", "Adjective"},
	{"adverb", "Adverb"},
	{"pronoun", "Pronoun"},
	{"proper-noun", "Proper noun"},
	{"determiner", "Determiner"},
	{"preposition", "Preposition"},
	{"conjunction", "Conjunction"},
	{"numeral", "Numeral"},
	{"particle", "Particle"},
	{"interjection", "Interjection"},
	{"punctuation", "Punctuation"},
	{"symbol", "Symbol"},
	{"foreign-word", "Foreign word"},
	{"other", "Other"},
}

var Tagsets = map[string]map[string]Tag{
	"en-nltk": {
		"CC":   {"conjunction", "Coordinating conjunction"},
		"CD":   {"numeral", "Cardinal number"},
		"DT":   {"determiner", "Determiner"},
		"EX":   {"other", "Existential there"},
		"FW":   {"foreign-word", "Foreign word"},
		"IN":   {"preposition", "Preposition or subordinating conjunction"},
		"JJ":   {"adjective", "Adjective"},
		"JJR":  {"adjective", "Adjective, comparative"},
		"JJS":  {"adjective", "Adjective, superlative"},
		"LS":   {"other", "List item marker"},
		"MD":   {"verb", "Modal"},
		"NN":   {"noun", "Noun, singular or mass"},
		"NNS":  {"noun", "Noun, plural"},
		"NNP":  {"proper-noun", "Proper noun, singular"},
		"NNPS": {"proper-noun", "Proper noun, plural"},
		"PDT":  {"determiner", "Predeterminer"},
		"POS":  {"particle", "Possessive ending"},
		"PRP":  {"pronoun", "Personal pronoun"},
		"PRP$": {"pronoun", "Possessive pronoun"},
		"RB":   {"adverb", "Adverb"},
		"RBR":  {"adverb", "Adverb, comparative"},
		"RBS":  {"adverb", "Adverb, superlative"},
		"RP":   {"particle", "Particle"},
		"SYM":  {"symbol", "Symbol"},
		"TO":   {"particle", "to"},
		"UH":   {"interjection", "Interjection"},
		"VB":   {"verb", "Verb, base form"},
		"VBD":  {"verb", "Verb, past tense"},
		"VBG":  {"verb", "Verb, gerund or present participle"},
		"VBN":  {"verb", "Verb, past participle"},
		"VBP":  {"verb", "Verb, non-3rd person singular present"},
		"VBZ":  {"verb", "Verb, 3rd person singular present"},
		"WDT":  {"determiner", "Wh-determiner"},
		"WP":   {"pronoun", "Wh-pronoun"},
		"WP$":  {"pronoun", "Possessive wh-pronoun"},
		"WRB":  {"adverb", "Wh-adverb"},
		"$":    {"symbol", "Dollar sign"},
		"#":    {"symbol", "Pound sign"},
		"``":   {"punctuation", "Opening quotation mark"},
		"''":   {"punctuation", "Closing quotation mark"},
		"(":    {"punctuation", "Opening parenthesis"},
		")":    {"punctuation", "Closing parenthesis"},
		",":    {"punctuation", "Comma"},
		".":    {"punctuation", "Sentence terminator"},
		":":    {"punctuation", "Colon or ellipsis"},
	},
	"pt-palavras": {
		"N":    {"noun", "Substantivo"},
		"PROP": {"proper-noun", "Nome próprio"},
		"SPEC": {"pronoun", "Especificador"},
		"DET":  {"determiner", "Determinante"},
		"PERS": {"pronoun", "Pronome pessoal"},
		"ADJ":  {"adjective", "Adjetivo"},
		"ADV":  {"adverb", "Advérbio"},
		"V":    {"verb", "Verbo"},
		"NUM":  {"numeral", "Numeral"},
		"PRP":  {"preposition", "Preposição"},
		"KS":   {"conjunction", "Conjunção subordinativa"},
		"KC":   {"conjunction", "Conjunção coordenativa"},
		"IN":   {"interjection", "Interjeição"},
		"EC":   {"other", "Prefixo separado por hífen"},
		"PU":   {"punctuation", "Pontuação"},
		"$":    {"symbol", "Símbolo"},
	},
}
