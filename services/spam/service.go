package spam

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/inboxsweep/inboxsweep/interfaces"
)

// bayesianDetector is a naive-Bayes scorer over subject/sender text, seeded
// with fixed spam/ham word frequencies. It runs fully locally and is used for
// annotation only.
type bayesianDetector struct {
	spamWords      map[string]int
	hamWords       map[string]int
	totalSpamMails float64
	totalHamMails  float64

	spamWordTotal float64
	hamWordTotal  float64
	vocabulary    float64
}

var wordPattern = regexp.MustCompile(`\b[a-z]+\b`)

func NewBayesianDetector() interfaces.SpamDetector {
	d := &bayesianDetector{
		spamWords:      seedSpamWords(),
		hamWords:       seedHamWords(),
		totalSpamMails: 1000,
		totalHamMails:  1000,
	}

	for _, freq := range d.spamWords {
		d.spamWordTotal += float64(freq)
	}
	for _, freq := range d.hamWords {
		d.hamWordTotal += float64(freq)
	}
	d.vocabulary = float64(len(d.spamWords) + len(d.hamWords))

	return d
}

func (d *bayesianDetector) Score(subject string, sender string) (bool, float64, string) {
	words := tokenize(subject + " " + sender)
	if len(words) == 0 {
		return false, 0, "no text to analyze"
	}

	prior := d.totalSpamMails / (d.totalSpamMails + d.totalHamMails)
	spamScore := math.Log(prior)
	hamScore := math.Log(1 - prior)

	var indicators []string
	for word := range words {
		spamScore += math.Log(d.wordProbability(word, true))
		hamScore += math.Log(d.wordProbability(word, false))

		if d.spamWords[word] > 5 {
			indicators = append(indicators, word)
		}
	}

	// Logistic normalization of the log-likelihood difference.
	confidence := 1 / (1 + math.Exp(hamScore-spamScore))
	isSpam := confidence > 0.5

	reason := "bayesian analysis of header text"
	if len(indicators) > 0 {
		sort.Strings(indicators)
		if len(indicators) > 3 {
			indicators = indicators[:3]
		}
		reason = fmt.Sprintf("spam indicators: %s", strings.Join(indicators, ", "))
	}

	return isSpam, confidence, reason
}

// wordProbability applies Laplace smoothing so unseen words never zero out
// the product.
func (d *bayesianDetector) wordProbability(word string, spam bool) float64 {
	if spam {
		return (float64(d.spamWords[word]) + 1) / (d.spamWordTotal + d.vocabulary)
	}
	return (float64(d.hamWords[word]) + 1) / (d.hamWordTotal + d.vocabulary)
}

// tokenize lowercases the text and returns its unique alphabetic words.
func tokenize(text string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		words[w] = struct{}{}
	}
	return words
}

func seedSpamWords() map[string]int {
	return map[string]int{
		// marketing and sales
		"buy": 15, "click": 12, "offer": 14, "limited": 11, "act": 10,
		"deal": 13, "discount": 12, "urgent": 10, "free": 9, "prize": 14,
		"winner": 15, "claim": 12, "congratulations": 13, "confirm": 8,
		"verify": 9, "update": 7, "account": 6, "suspended": 12,

		// unsubscribe and bulk markers
		"unsubscribe": 3, "newsletter": 2, "promotional": 8, "promotion": 8,
		"marketing": 5, "sale": 7, "subscribe": 3, "alert": 2,

		// phishing
		"password": 14, "reset": 10, "action": 8, "required": 8,

		// financial
		"money": 10, "bank": 8, "credit": 7, "payment": 5, "transaction": 3,
		"wire": 12, "paypal": 4,

		// emotional pressure
		"amazing": 8, "incredible": 9, "fantastic": 8, "exclusive": 10,
	}
}

func seedHamWords() map[string]int {
	return map[string]int{
		// work
		"meeting": 1, "project": 1, "deadline": 1, "status": 1,
		"document": 1, "attached": 1, "report": 1, "department": 1, "team": 1,
		"schedule": 1, "calendar": 1, "agenda": 1, "presentation": 1,

		// personal
		"hope": 1, "thanks": 1, "thank": 1, "please": 1, "regards": 1,
		"sincerely": 1, "best": 1, "appreciate": 1, "kindly": 1,

		// support
		"support": 2, "help": 1, "assistance": 1, "available": 1,
		"question": 1, "issue": 1, "resolution": 1, "service": 1,

		// transactional
		"order": 3, "receipt": 3, "confirmation": 2,
		"appointment": 2, "reservation": 2, "booking": 2,

		// plain correspondence
		"regarding": 1, "reference": 1, "discussion": 1, "information": 1,
		"details": 1, "following": 1,
	}
}
