// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"io"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// lexerFor maps export formats and config files to chroma lexer names.
var lexerFor = map[string]string{
	"json":  "json",
	"jsonl": "json",
	"yaml":  "yaml",
	"yml":   "yaml",
	"html":  "html",
	"toml":  "toml",
}

// writeHighlighted writes source to out, syntax highlighted when out is
// a terminal and the format has a lexer. Redirected output is written
// unchanged.
func writeHighlighted(out io.Writer, source []byte, format string) error {
	name, ok := lexerFor[format]
	if !ok || !isTerminal(out) {
		_, err := out.Write(source)
		return err
	}

	highlighted, err := highlight(source, name)
	if err != nil {
		_, err = out.Write(source)
		return err
	}
	_, err = out.Write(highlighted)
	return err
}

// highlight renders source with the named lexer for a 256-color terminal.
func highlight(source []byte, language string) ([]byte, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, string(source))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
