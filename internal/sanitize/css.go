package sanitize

import (
	"strings"

	dcss "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// blockedAtRules load external resources or change how the sheet is parsed.
var blockedAtRules = map[string]bool{
	"@import":    true,
	"@font-face": true,
	"@namespace": true,
	"@charset":   true,
}

// blockedProperties execute code in legacy engines.
var blockedProperties = map[string]bool{
	"behavior":     true,
	"-moz-binding": true,
}

// blockedValues are value fragments that fetch or execute.
var blockedValues = []string{"url(", "image-set(", "expression(", "javascript:", "vbscript:", "@import"}

// FilterCSS drops the rules and declarations of a stylesheet that could load
// external resources or run script. Unparseable input yields "".
func FilterCSS(css string) string {
	sheet, err := parser.Parse(css)
	if err != nil {
		return ""
	}
	sheet.Rules = filterRules(sheet.Rules)
	if len(sheet.Rules) == 0 {
		return ""
	}
	return sheet.String()
}

// FilterDeclarations filters a style attribute value. Unparseable input
// yields "".
func FilterDeclarations(style string) string {
	// The parser drops the value of a final declaration without ';'.
	style = strings.TrimSpace(style)
	if style != "" && !strings.HasSuffix(style, ";") {
		style += ";"
	}
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		return ""
	}
	parts := make([]string, 0, len(decls))
	for _, d := range filterDeclarations(decls) {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, " ")
}

func filterRules(rules []*dcss.Rule) []*dcss.Rule {
	kept := rules[:0]
	for _, r := range rules {
		if r.Kind == dcss.AtRule && blockedAtRules[strings.ToLower(r.Name)] {
			continue
		}
		if !safeValue(r.Prelude) {
			continue
		}
		hadBody := len(r.Declarations) > 0 || len(r.Rules) > 0
		r.Declarations = filterDeclarations(r.Declarations)
		r.Rules = filterRules(r.Rules)
		if hadBody && len(r.Declarations) == 0 && len(r.Rules) == 0 {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func filterDeclarations(decls []*dcss.Declaration) []*dcss.Declaration {
	kept := decls[:0]
	for _, d := range decls {
		if blockedProperties[strings.ToLower(strings.TrimSpace(d.Property))] || !safeValue(d.Value) {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

// safeValue reports whether v is free of blocked fragments. Escapes and
// whitespace are removed before matching so "u\rl (" is caught.
func safeValue(v string) bool {
	folded := strings.Map(func(r rune) rune {
		switch r {
		case '\\', ' ', '\t', '\n', '\r', '\f':
			return -1
		}
		return r
	}, strings.ToLower(v))
	for _, bad := range blockedValues {
		if strings.Contains(folded, bad) {
			return false
		}
	}
	return true
}
