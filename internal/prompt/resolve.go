package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

type ParamLookup interface {
	LookupParameter(ctx context.Context, name string) (string, bool, error)
}

// Origin records where the active system prompt came from.
type Origin string

const (
	OriginInline     Origin = "inline"
	OriginFile       Origin = "file"
	OriginParamStore Origin = "paramstore"
	OriginProfile    Origin = "profile"
)

// Sources lists the places a system prompt may come from, highest priority first.
type Sources struct {
	Inline    string
	File      string
	Params    ParamLookup
	ParamName string
	Profile   string
}

type Selection struct {
	Text   string
	Origin Origin
}

// Resolve picks the single system prompt used for every request. It runs once
// at startup; the result is never reloaded.
func Resolve(ctx context.Context, src Sources) (Selection, error) {
	if text := strings.TrimSpace(src.Inline); text != "" {
		return Selection{Text: text, Origin: OriginInline}, nil
	}

	if path := strings.TrimSpace(src.File); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Selection{}, fmt.Errorf("prompt: read %s: %w", path, err)
		}
		text := strings.TrimSpace(string(raw))
		if text == "" {
			return Selection{}, fmt.Errorf("prompt: %s is empty", path)
		}
		return Selection{Text: text, Origin: OriginFile}, nil
	}

	if src.Params != nil && strings.TrimSpace(src.ParamName) != "" {
		text, found, err := src.Params.LookupParameter(ctx, src.ParamName)
		if err != nil {
			return Selection{}, fmt.Errorf("prompt: load from paramstore: %w", err)
		}
		if found && strings.TrimSpace(text) != "" {
			return Selection{Text: strings.TrimSpace(text), Origin: OriginParamStore}, nil
		}
	}

	name := strings.TrimSpace(src.Profile)
	if name == "" {
		name = DefaultProfile
	}
	text, ok := Profile(name)
	if !ok {
		names := ProfileNames()
		slices.Sort(names)
		return Selection{}, fmt.Errorf("prompt: unknown profile %q (known: %s)", name, strings.Join(names, ", "))
	}
	if text == "" {
		return Selection{}, errors.New("prompt: profile is empty")
	}
	return Selection{Text: text, Origin: OriginProfile}, nil
}
