// Package lexicon loads the voice-config document and product catalog into
// an immutable domain.Lexicon.
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iancoleman/orderedmap"
	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/domain"
)

// Load reads the voice-config JSON at path. The file's object key order is
// preserved: it decides product and intent match priority, which is why this
// goes through orderedmap instead of map[string]interface{}.
//
// A missing or empty system_prompt.content is an error; the process must not
// start without it. Every other section defaults to empty.
func Load(path string, log *zap.Logger) (*domain.Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voice config %s: %w", path, err)
	}

	root := orderedmap.New()
	if err := json.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("parse voice config %s: %w", path, err)
	}

	prompt := nestedString(root, "system_prompt", "content")
	if prompt == "" {
		return nil, fmt.Errorf("voice config %s: missing system_prompt.content", path)
	}

	lex := &domain.Lexicon{
		SystemPrompt: prompt,
		Intents:      keywordLists(nestedObject(root, "intent_keywords")),
		Fallbacks:    stringValues(nestedObject(root, "fallback_responses")),
		DisplayNames: map[string]string{},
	}

	for _, group := range keywordLists(nestedObject(root, "product_normalization", "accounts")) {
		lex.Products = append(lex.Products, domain.SynonymGroup{Key: group.Intent, Synonyms: group.Keywords})
	}

	log.Info("Voice lexicon loaded",
		zap.String("path", path),
		zap.Int("intents", len(lex.Intents)),
		zap.Int("product_groups", len(lex.Products)),
		zap.Int("fallbacks", len(lex.Fallbacks)),
	)
	return lex, nil
}

// keywordLists converts an ordered object of string arrays into ordered
// (name, keywords) pairs, skipping values that are not string arrays.
func keywordLists(obj *orderedmap.OrderedMap) []domain.IntentKeywords {
	if obj == nil {
		return nil
	}
	var out []domain.IntentKeywords
	for _, key := range obj.Keys() {
		raw, _ := obj.Get(key)
		items, ok := raw.([]interface{})
		if !ok {
			continue
		}
		keywords := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				keywords = append(keywords, s)
			}
		}
		out = append(out, domain.IntentKeywords{Intent: key, Keywords: keywords})
	}
	return out
}

func stringValues(obj *orderedmap.OrderedMap) map[string]string {
	values := map[string]string{}
	if obj == nil {
		return values
	}
	for _, key := range obj.Keys() {
		if raw, ok := obj.Get(key); ok {
			if s, ok := raw.(string); ok {
				values[key] = s
			}
		}
	}
	return values
}

// nestedObject walks the given keys and returns the object found there, or
// nil when any step is missing or not an object.
func nestedObject(root *orderedmap.OrderedMap, keys ...string) *orderedmap.OrderedMap {
	current := root
	for _, key := range keys {
		raw, ok := current.Get(key)
		if !ok {
			return nil
		}
		obj, ok := raw.(orderedmap.OrderedMap)
		if !ok {
			return nil
		}
		current = &obj
	}
	return current
}

func nestedString(root *orderedmap.OrderedMap, objKey, field string) string {
	obj := nestedObject(root, objKey)
	if obj == nil {
		return ""
	}
	raw, ok := obj.Get(field)
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}
