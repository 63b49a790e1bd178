// Package prompt assembles the instruction messages sent to the
// completion endpoint for each code chunk.
package prompt

import "fmt"

// CompatibleMarker is the literal response the model returns when a
// chunk needs no changes. Comparison is case-sensitive on the trimmed
// response text.
const CompatibleMarker = "compatible"

// SystemPrompt describes the upgrade task, the compatibility rules, and
// the marker convention. It is sent unchanged with every chunk.
const SystemPrompt = `You are an assistant that helps upgrade older C# code to be compatible with .NET 8.

Your task is to:
- Identify and update any code patterns, APIs, or configurations that are incompatible with .NET 8, even if they originate from versions earlier than .NET 4.8.
- If the code is outdated but still compatible with .NET 8, leave it unchanged unless there's a strong reason to modernize it.
- If the existing code is not incompatible with .NET 8, return 'compatible'.
- Ensure any code that must be changed compiles and follows best practices for .NET 8.
- Leave all code that is not incompatible with .NET 8 alone, including comments. Simplifying whitespace is fine.

If you encounter legacy APIs or patterns that have a clear modern equivalent (e.g., Web Forms, System.Web, or FormsAuth), implement it where feasible.
`

const userTemplate = `Please upgrade the following .NET 4.8 C# code to .NET 8.
If it is already compatible, return 'compatible'.

Chunk context (from entire file):
%s

Code:
` + "```csharp\n%s\n```\n"

// Build returns the user message for one chunk. When fileContext is
// non-empty (the file split into more than one chunk) the code section
// is prefixed with the context block so the model sees the file-level
// declarations alongside the slice it is asked to upgrade.
func Build(chunk, fileContext string) string {
	code := chunk
	if fileContext != "" {
		code = fileContext + "\n\n" + chunk
	}
	return fmt.Sprintf(userTemplate, fileContext, code)
}
