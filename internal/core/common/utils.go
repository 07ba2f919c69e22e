package common

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// ParseJSON cleans and unmarshals a JSON object embedded in an LLM response.
// It handles common LLM quirks like surrounding markdown or extra text.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	start := strings.IndexByte(response, '{')
	if start == -1 {
		return zero, eris.New("no JSON object found in response (missing '{')")
	}
	end := strings.LastIndexByte(response, '}')
	if end < start {
		return zero, eris.New("no JSON object found in response (missing '}')")
	}
	jsonStr := response[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, eris.Wrapf(err, "failed to unmarshal JSON: %s", jsonStr)
	}
	return result, nil
}
