package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// jsonFenceRegex matches a ```json (or bare ```) fenced block containing an
// object. Non-greedy so trailing prose after the fence is ignored.
var jsonFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// DecodeJSON decodes a JSON object of type T out of free-form model output.
//
// Strategy sequence:
//  1. Direct parse of the whole (trimmed) text
//  2. Extract a fenced ```json block and parse that
//  3. Take the substring between the first '{' and the last '}'
//
// Returns a *ParseError when no strategy yields a decodable object. Models
// wrap JSON in prose and fences often enough that going straight to an error
// after strategy 1 would throw away recoverable responses.
func DecodeJSON[T any](text string) (T, error) {
	var zero T

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return zero, &ParseError{Msg: "empty response"}
	}

	if out, err := tryDecode[T](trimmed); err == nil {
		return out, nil
	}

	if m := jsonFenceRegex.FindStringSubmatch(trimmed); m != nil {
		if out, err := tryDecode[T](m[1]); err == nil {
			return out, nil
		}
	}

	if candidate, ok := braceSubstring(trimmed); ok {
		if out, err := tryDecode[T](candidate); err == nil {
			return out, nil
		}
		return zero, &ParseError{Msg: "JSON object found but not decodable"}
	}

	return zero, &ParseError{Msg: "response did not contain a JSON object"}
}

func tryDecode[T any](text string) (T, error) {
	var out T
	err := json.Unmarshal([]byte(text), &out)
	return out, err
}

// braceSubstring returns the substring spanning the first '{' to the last
// '}', the coarsest extraction strategy.
func braceSubstring(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return strings.TrimSpace(text[start : end+1]), true
}
