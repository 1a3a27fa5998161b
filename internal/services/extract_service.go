package services

import (
	"regexp"
	"strings"
)

// TitleParts is the candidate (make, model) pair pulled out of a
// listing title. Empty strings mean the heuristic produced nothing.
type TitleParts struct {
	Make  string
	Model string
}

var (
	displacementRe = regexp.MustCompile(`^\d+\.\d+$`)
	trimCodeRe     = regexp.MustCompile(`^[A-Z]+$`)
)

// ExtractTitle splits a listing title into a candidate make and model
// using positional heuristics. It is a pure function and never fails;
// worst case both fields come back empty.
//
// Rules, in order:
//  1. Empty title: nothing.
//  2. Fewer than two tokens: the single token is the make.
//  3. First token is the make. If the second token is literally "Benz"
//     (case-sensitive) the two are merged into a hyphenated make.
//  4. Remaining tokens form the model, minus a trailing engine/trim
//     suffix: a decimal displacement token followed by an uppercase
//     code token ends the model ("Octavia Combi 2.0 TSI" -> "Octavia Combi").
//
// Multi-word makes other than Mercedes-Benz are not detected: "Land
// Rover X" splits into make "Land", model "Rover X". That mirrors the
// upstream scraper behavior and downstream matching relies on it.
func ExtractTitle(title string) TitleParts {
	tokens := strings.Fields(title)
	if len(tokens) == 0 {
		return TitleParts{}
	}
	if len(tokens) == 1 {
		return TitleParts{Make: tokens[0]}
	}

	make := tokens[0]
	rest := tokens[1:]
	if rest[0] == "Benz" {
		make = make + "-Benz"
		rest = rest[1:]
	}

	return TitleParts{
		Make:  make,
		Model: strings.Join(stripTrimSuffix(rest), " "),
	}
}

// stripTrimSuffix cuts the model tokens at the first "<decimal>
// <UPPERCASE>" pair, dropping the pair and everything after it.
func stripTrimSuffix(tokens []string) []string {
	for i := 0; i+1 < len(tokens); i++ {
		if displacementRe.MatchString(tokens[i]) && trimCodeRe.MatchString(tokens[i+1]) {
			return tokens[:i]
		}
	}
	return tokens
}
