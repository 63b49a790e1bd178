package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_WithoutContext(t *testing.T) {
	user := Build("public class A {}", "")

	assert.Contains(t, user, "```csharp\npublic class A {}\n```")
	assert.Contains(t, user, "Chunk context (from entire file):\n\n")
}

func TestBuild_WithContext(t *testing.T) {
	ctx := "using System;\nNamespace: Acme"
	user := Build("public class A {}", ctx)

	// Context appears both in its own slot and prefixed to the code.
	assert.Equal(t, 2, strings.Count(user, ctx))
	assert.Contains(t, user, "```csharp\n"+ctx+"\n\npublic class A {}\n```")
}

func TestBuild_MarkerConvention(t *testing.T) {
	user := Build("x", "")
	assert.Contains(t, user, "return 'compatible'")
	assert.Equal(t, "compatible", CompatibleMarker)
}

func TestSystemPrompt_MentionsTask(t *testing.T) {
	assert.Contains(t, SystemPrompt, ".NET 8")
	assert.Contains(t, SystemPrompt, "'compatible'")
}
