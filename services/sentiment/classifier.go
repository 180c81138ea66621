// Package sentiment scores diary entry text and maps the resulting polarity
// to one of five wellbeing levels. Scoring is a deterministic lexicon
// average; the level mapping is the contract the rest of the system depends
// on.
package sentiment

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"

	"daybook/models"
)

// negationWindow is how many tokens after a negator have their valence
// inverted.
const negationWindow = 3

// negators invert the valence of the tokens that follow them.
var negators = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"nothing": true,
	"cant":    true,
	"cannot":  true,
	"dont":    true,
	"didnt":   true,
	"wont":    true,
	"isnt":    true,
	"wasnt":   true,
	"arent":   true,
	"werent":  true,
	"hardly":  true,
	"without": true,
}

// lexicon assigns a valence in [-1, 1] to sentiment-bearing words. The
// entry polarity is the average valence of the matched tokens.
var lexicon = map[string]float64{
	// strongly negative
	"miserable":   -0.9,
	"hopeless":    -0.8,
	"devastated":  -0.9,
	"awful":       -0.8,
	"terrible":    -0.8,
	"horrible":    -0.8,
	"depressed":   -0.8,
	"despair":     -0.8,
	"worthless":   -0.8,
	"grief":       -0.7,
	"crying":      -0.7,
	"hate":        -0.7,
	"dreadful":    -0.7,
	"exhausted":   -0.6,
	"heartbroken": -0.9,

	// mildly negative
	"sad":          -0.5,
	"unhappy":      -0.5,
	"anxious":      -0.4,
	"worried":      -0.4,
	"stressed":     -0.4,
	"tired":        -0.4,
	"lonely":       -0.4,
	"upset":        -0.5,
	"angry":        -0.5,
	"annoyed":      -0.4,
	"frustrated":   -0.4,
	"gloomy":       -0.5,
	"bored":        -0.3,
	"sick":         -0.4,
	"hurt":         -0.5,
	"bad":          -0.4,
	"rough":        -0.3,
	"difficult":    -0.3,
	"hard":         -0.3,
	"disappointed": -0.5,

	// neutral-ish
	"okay":     0.1,
	"ok":       0.1,
	"fine":     0.1,
	"alright":  0.1,
	"normal":   0.0,
	"average":  0.0,
	"ordinary": 0.0,
	"usual":    0.0,
	"calm":     0.2,
	"quiet":    0.1,

	// mildly positive
	"good":      0.4,
	"nice":      0.4,
	"happy":     0.5,
	"glad":      0.5,
	"pleased":   0.4,
	"content":   0.3,
	"grateful":  0.5,
	"thankful":  0.5,
	"relaxed":   0.4,
	"hopeful":   0.4,
	"proud":     0.5,
	"fun":       0.5,
	"enjoyed":   0.5,
	"enjoy":     0.4,
	"smile":     0.4,
	"smiled":    0.4,
	"better":    0.3,
	"pleasant":  0.4,
	"satisfied": 0.4,
	"cheerful":  0.5,

	// strongly positive
	"amazing":   0.9,
	"wonderful": 0.8,
	"fantastic": 0.9,
	"great":     0.7,
	"excellent": 0.8,
	"awesome":   0.9,
	"love":      0.7,
	"loved":     0.7,
	"perfect":   0.9,
	"joy":       0.8,
	"joyful":    0.8,
	"thrilled":  0.8,
	"delighted": 0.8,
	"ecstatic":  0.9,
	"brilliant": 0.8,
	"beautiful": 0.7,
	"best":      0.7,
}

// Classify scores the text and maps the polarity to a wellbeing level.
// Callers are responsible for rejecting empty input before calling; blank
// text simply scores 0 ("normal").
func Classify(text string) (models.WellbeingLevel, float64) {
	polarity := Polarity(text)
	return LevelForPolarity(polarity), polarity
}

// Polarity computes a sentiment score in [-1, 1] as the average valence of
// the lexicon tokens found in the text, with simple negation handling.
// Text with no sentiment-bearing tokens scores 0.
func Polarity(text string) float64 {
	tokens := tokenize(text)

	var sum float64
	matched := 0
	negateFor := 0

	for _, tok := range tokens {
		if negators[tok] {
			negateFor = negationWindow
			continue
		}

		if valence, ok := lexicon[tok]; ok {
			if negateFor > 0 {
				valence = -valence
			}
			sum += valence
			matched++
		}

		if negateFor > 0 {
			negateFor--
		}
	}

	if matched == 0 {
		return 0
	}
	return clamp(sum/float64(matched), -1, 1)
}

// LevelForPolarity maps a polarity score to a wellbeing level. Boundary
// handling is part of the contract: -0.6 is still "very sad", -0.2 and 0.2
// are "normal", 0.6 is already "very happy".
func LevelForPolarity(polarity float64) models.WellbeingLevel {
	switch {
	case polarity <= -0.6:
		return models.LevelVerySad
	case polarity < -0.2:
		return models.LevelSad
	case polarity <= 0.2:
		return models.LevelNormal
	case polarity < 0.6:
		return models.LevelHappy
	default:
		return models.LevelVeryHappy
	}
}

// tokenize lowercases, transliterates to ASCII and splits the text into
// letter-only tokens. Apostrophes are dropped so "don't" matches "dont".
func tokenize(text string) []string {
	folded := unidecode.Unidecode(strings.ToLower(text))
	folded = strings.ReplaceAll(folded, "'", "")

	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
