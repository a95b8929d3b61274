// Package speech classifies transcribed caller utterances into the coarse
// signals the dialog engine branches on. Classification is deliberately
// conservative and explainable: fixed word/phrase tables compiled into
// regexes, no models. English only.
package speech

import (
	"regexp"
	"strings"
)

// Intent values returned by DetectIntent. IntentNone (empty string) means no
// intent keyword matched.
const (
	IntentBuy    = "buy"
	IntentSell   = "sell"
	IntentInvest = "invest"
	IntentRent   = "rent"
	IntentNone   = ""
)

// Pattern tables. Kept as plain word/phrase lists so they can be reviewed and
// extended without touching the matching logic.
var (
	affirmativeWords = []string{
		"yes", "yeah", "yep", "yup", "sure", "ok", "okay", "alright",
		"correct", "go ahead", "sounds good", "of course", "definitely",
		"absolutely", "why not", "i guess", "speaking", "this is",
	}
	negativeWords = []string{
		"no", "nope", "nah", "stop", "not now", "not interested", "busy",
		"hang up", "no thanks", "later", "remove me", "don't call",
		"do not call", "wrong number", "not a good time", "leave me alone",
	}
	linkWords = []string{
		"text", "link", "email", "send", "sms", "message", "website",
		"write", "mail",
	}

	// Intent keyword families, checked in this order; first match wins.
	intentFamilies = []struct {
		intent string
		words  []string
	}{
		{IntentBuy, []string{"buy", "buying", "purchase", "purchasing", "looking for a house", "looking for a home", "first home"}},
		{IntentSell, []string{"sell", "selling", "list my", "listing"}},
		{IntentInvest, []string{"invest", "investing", "investment", "investor", "flip", "flipping"}},
		{IntentRent, []string{"rent", "renting", "rental", "lease", "leasing", "tenant"}},
	}
)

var (
	affirmativeRe = compileWordList(affirmativeWords)
	negativeRe    = compileWordList(negativeWords)
	linkRe        = compileWordList(linkWords)
	intentRes     = compileIntentFamilies()
)

func compileWordList(words []string) *regexp.Regexp {
	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(` + strings.Join(escaped, "|") + `)\b`)
}

type intentMatcher struct {
	intent string
	re     *regexp.Regexp
}

func compileIntentFamilies() []intentMatcher {
	matchers := make([]intentMatcher, 0, len(intentFamilies))
	for _, f := range intentFamilies {
		matchers = append(matchers, intentMatcher{intent: f.intent, re: compileWordList(f.words)})
	}
	return matchers
}

func clean(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// IsAffirmative reports whether the utterance reads as agreement. Empty input
// is never affirmative.
func IsAffirmative(text string) bool {
	t := clean(text)
	return t != "" && affirmativeRe.MatchString(t)
}

// IsNegative reports whether the utterance reads as refusal or deferral.
// Empty input is "no signal", which is distinct from negative.
func IsNegative(text string) bool {
	t := clean(text)
	return t != "" && negativeRe.MatchString(t)
}

// WantsLink reports whether the caller asked for written info (text, link,
// email).
func WantsLink(text string) bool {
	t := clean(text)
	return t != "" && linkRe.MatchString(t)
}

// DetectIntent classifies the utterance into buy/sell/invest/rent, in that
// priority order; the first matching family wins. Returns IntentNone when
// nothing matches.
func DetectIntent(text string) string {
	t := clean(text)
	if t == "" {
		return IntentNone
	}
	for _, m := range intentRes {
		if m.re.MatchString(t) {
			return m.intent
		}
	}
	return IntentNone
}
