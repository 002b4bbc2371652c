package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"tagwater/internal/catalog"
)

const maxSuggestions = 3

// suggestTags returns one hint line per unknown tag that fuzzily matches a
// registered tag.
func suggestTags(ctx context.Context, store *catalog.Store, unknown []string) []string {
	if len(unknown) == 0 {
		return nil
	}
	tags, err := store.FindTags(ctx, "", 0)
	if err != nil || len(tags) == 0 {
		return nil
	}
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}

	var hints []string
	for _, name := range unknown {
		matches := fuzzy.Find(name, names)
		if len(matches) == 0 {
			continue
		}
		picks := make([]string, 0, maxSuggestions)
		for _, m := range matches {
			if len(picks) == maxSuggestions {
				break
			}
			picks = append(picks, m.Str)
		}
		hints = append(hints, fmt.Sprintf("\t%s: did you mean %s?", name, strings.Join(picks, ", ")))
	}
	return hints
}
