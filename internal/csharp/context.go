// Package csharp extracts lightweight file-level context from C# source
// text. The extraction is regex-based and best-effort: it exists to give
// the model a summary of a file whose chunks are sent separately, not to
// be a parser. Constructs the patterns miss are simply absent from the
// summary.
package csharp

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	usingRe = regexp.MustCompile(`(?m)^[ \t]*using[ \t]+[\w.]+;`)

	namespaceRe = regexp.MustCompile(`(?m)^[ \t]*namespace[ \t]+([\w.]+)`)

	// visibility modifier, optional partial, type keyword, name
	typeRe = regexp.MustCompile(`(?:public|internal|private|protected)\s+(?:partial\s+)?(class|struct|record)\s+(\w+)`)

	// visibility modifier, optional override/virtual, return type, name, params
	methodRe = regexp.MustCompile(`(?:public|internal|private|protected)\s+(?:override\s+)?(?:virtual\s+)?\w[\w<>]*\s+(\w+)\(.*?\)`)
)

// ExtractContext builds a short textual summary of a C# file: its using
// directives, namespace, declared types, and method names. Sections with
// no matches are omitted; a file matching nothing yields "".
func ExtractContext(src string) string {
	var parts []string

	if usings := usingRe.FindAllString(src, -1); len(usings) > 0 {
		trimmed := make([]string, len(usings))
		for i, u := range usings {
			trimmed[i] = strings.TrimSpace(u)
		}
		parts = append(parts, strings.Join(trimmed, "\n"))
	}

	if m := namespaceRe.FindStringSubmatch(src); m != nil {
		parts = append(parts, fmt.Sprintf("Namespace: %s", m[1]))
	}

	if types := typeRe.FindAllStringSubmatch(src, -1); len(types) > 0 {
		decls := make([]string, len(types))
		for i, t := range types {
			decls[i] = fmt.Sprintf("%s %s", t[1], t[2])
		}
		parts = append(parts, fmt.Sprintf("Classes: %s", strings.Join(decls, ", ")))
	}

	if methods := methodRe.FindAllStringSubmatch(src, -1); len(methods) > 0 {
		names := make([]string, len(methods))
		for i, m := range methods {
			names[i] = m[1]
		}
		parts = append(parts, fmt.Sprintf("Methods: %s", strings.Join(names, ", ")))
	}

	return strings.TrimSpace(strings.Join(parts, "\n"))
}
