package render

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/aymanbagabas/go-udiff"
	"github.com/muesli/termenv"
)

// Lexer names accepted by [Highlight].
const (
	LanguageINI  = "ini"
	LanguageDiff = "diff"
)

// DefaultStyle is the chroma style used by [Highlight].
const DefaultStyle = "monokai"

// Highlight writes source to w, syntax highlighted for the given colour
// profile. [termenv.Ascii] writes the source unchanged.
func Highlight(w io.Writer, source, language string, profile termenv.Profile) error {
	formatterName := "noop"
	switch profile {
	case termenv.TrueColor:
		formatterName = "terminal16m"

	case termenv.ANSI256:
		formatterName = "terminal256"

	case termenv.ANSI:
		formatterName = "terminal8"

	case termenv.Ascii:
		_, err := io.WriteString(w, source)
		if err != nil {
			return fmt.Errorf("write: %w", err)
		}

		return nil
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	lexer = chroma.Coalesce(lexer)

	style := styles.Get(DefaultStyle)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("lexer tokenize: %w", err)
	}

	err = formatters.Get(formatterName).Format(w, style, iterator)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}

	return nil
}

// Diff returns a unified diff from the old to the new content. It returns
// an empty string when they are equal.
func Diff(oldLabel, newLabel, oldContent, newContent string) string {
	return udiff.Unified(oldLabel, newLabel, oldContent, newContent)
}
