package upgrader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tython3/netupgrade/internal/report"
)

// stubClient records every prompt and answers via a caller-supplied
// function, keyed on the chunk text inside the user message.
type stubClient struct {
	mu      sync.Mutex
	users   []string
	respond func(user string) (string, error)
}

func (s *stubClient) Complete(_ context.Context, _, user string) (string, error) {
	s.mu.Lock()
	s.users = append(s.users, user)
	s.mu.Unlock()
	if s.respond == nil {
		return "compatible", nil
	}
	return s.respond(user)
}

func (s *stubClient) Model() string { return "stub-model" }
func (s *stubClient) Close() error  { return nil }

func (s *stubClient) prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.users...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_NoFilesFound(t *testing.T) {
	client := &stubClient{}
	u := New(client, nil)

	stats, err := u.Run(context.Background(), &Config{Root: t.TempDir()})
	require.NoError(t, err)

	assert.Zero(t, stats.FilesFound)
	assert.Empty(t, client.prompts())
}

func TestRun_MissingRoot(t *testing.T) {
	u := New(&stubClient{}, nil)

	stats, err := u.Run(context.Background(), &Config{
		Root: filepath.Join(t.TempDir(), "nope"),
	})
	require.NoError(t, err)
	assert.Zero(t, stats.FilesFound)
}

func TestRun_CompatibleFileUnchanged(t *testing.T) {
	root := t.TempDir()
	content := "using System;\n\npublic class A {}\n"
	path := filepath.Join(root, "A.cs")
	writeFile(t, path, content)

	client := &stubClient{} // always answers "compatible"
	u := New(client, nil)

	stats, err := u.Run(context.Background(), &Config{Root: root})
	require.NoError(t, err)

	assert.Equal(t, content, readFile(t, path))
	assert.Equal(t, 1, stats.FilesCompatible)
	assert.Zero(t, stats.FilesUpgraded)
	assert.Equal(t, 1, stats.ChunksProcessed)
}

func TestRun_MarkerIsTrimmed(t *testing.T) {
	root := t.TempDir()
	content := "public class B {}\n"
	path := filepath.Join(root, "B.cs")
	writeFile(t, path, content)

	client := &stubClient{respond: func(string) (string, error) {
		return "  compatible\n", nil
	}}
	u := New(client, nil)

	stats, err := u.Run(context.Background(), &Config{Root: root})
	require.NoError(t, err)
	assert.Equal(t, content, readFile(t, path))
	assert.Equal(t, 1, stats.FilesCompatible)
}

func TestRun_UpgradedFileRewritten(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Legacy.cs")
	writeFile(t, path, "using System.Web;\npublic class Old {}\n")

	client := &stubClient{respond: func(string) (string, error) {
		return "public class Modern {}\n", nil
	}}
	u := New(client, nil)

	stats, err := u.Run(context.Background(), &Config{Root: root})
	require.NoError(t, err)

	assert.Equal(t, "public class Modern {}\n", readFile(t, path))
	assert.Equal(t, 1, stats.FilesUpgraded)
	assert.Zero(t, stats.FilesFailed)
}

func TestRun_SingleChunkOmitsContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "C.cs"), "using System;\npublic class C {}\n")

	client := &stubClient{}
	u := New(client, nil)

	_, err := u.Run(context.Background(), &Config{Root: root})
	require.NoError(t, err)

	prompts := client.prompts()
	require.Len(t, prompts, 1)
	// The source line appears once, in the code section only; the
	// context slot stays empty for single-chunk files.
	assert.Equal(t, 1, strings.Count(prompts[0], "using System;"))
}

func TestRun_MultiChunkSharesContext(t *testing.T) {
	root := t.TempDir()
	header := "using System;\nnamespace Acme.Site {\npublic class Page {}\n"
	body := strings.Repeat("// filler line\n", 40)
	path := filepath.Join(root, "Page.cs")
	writeFile(t, path, header+body)

	client := &stubClient{}
	u := New(client, nil)

	_, err := u.Run(context.Background(), &Config{Root: root, ChunkSize: 200})
	require.NoError(t, err)

	prompts := client.prompts()
	require.Greater(t, len(prompts), 1)
	for _, p := range prompts {
		assert.Contains(t, p, "Namespace: Acme.Site")
		assert.Contains(t, p, "Classes: class Page")
	}
}

func TestRun_ChunkOrderPreserved(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Two.cs")
	writeFile(t, path, strings.Repeat("A", 5)+strings.Repeat("B", 3))

	client := &stubClient{respond: func(user string) (string, error) {
		if strings.Contains(user, "AAAAA") {
			return "compatible", nil
		}
		return "UPGRADED", nil
	}}
	u := New(client, nil)

	stats, err := u.Run(context.Background(), &Config{Root: root, ChunkSize: 5})
	require.NoError(t, err)

	// First chunk kept verbatim, second replaced, joined with a newline.
	assert.Equal(t, "AAAAA\nUPGRADED", readFile(t, path))
	assert.Equal(t, 2, stats.ChunksProcessed)
	assert.Equal(t, 1, stats.FilesUpgraded)
}

func TestRun_RemoteFailureFallsBackPerChunk(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Flaky.cs")
	writeFile(t, path, strings.Repeat("X", 5)+strings.Repeat("Y", 5))

	client := &stubClient{respond: func(user string) (string, error) {
		if strings.Contains(user, "XXXXX") {
			return "", errors.New("dial tcp: connection refused")
		}
		return "compatible", nil
	}}
	u := New(client, nil)

	stats, err := u.Run(context.Background(), &Config{Root: root, ChunkSize: 5})
	require.NoError(t, err)

	// Failed chunk degrades to its original text; the second chunk is
	// still attempted.
	assert.Equal(t, "XXXXX\nYYYYY", readFile(t, path))
	assert.Equal(t, 1, stats.ChunksFailed)
	assert.Len(t, client.prompts(), 2)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], "Flaky.cs")
}

func TestRun_UnreadableFileContained(t *testing.T) {
	root := t.TempDir()
	// Dangling symlink: discovered by the walk, unreadable afterwards.
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "Broken.cs")))
	writeFile(t, filepath.Join(root, "Fine.cs"), "public class F {}\n")

	client := &stubClient{}
	u := New(client, nil)

	stats, err := u.Run(context.Background(), &Config{Root: root})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.FilesFailed)
	assert.Equal(t, 1, stats.FilesCompatible)
	assert.NotEmpty(t, stats.ErrorMessages)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	content := "public class D {}\n"
	path := filepath.Join(root, "D.cs")
	writeFile(t, path, content)

	client := &stubClient{respond: func(string) (string, error) {
		return "public class Different {}\n", nil
	}}
	u := New(client, nil)

	stats, err := u.Run(context.Background(), &Config{Root: root, DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, content, readFile(t, path))
	assert.Equal(t, 1, stats.FilesUpgraded)
}

func TestRun_JournalRecordsOutcomes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Up.cs"), "old\n")
	writeFile(t, filepath.Join(root, "Ok.cs"), "fine\n")

	store, err := report.NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	client := &stubClient{respond: func(user string) (string, error) {
		if strings.Contains(user, "old") {
			return "new\n", nil
		}
		return "compatible", nil
	}}
	u := New(client, store)

	stats, err := u.Run(context.Background(), &Config{Root: root})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesUpgraded)
	assert.Equal(t, 1, stats.FilesCompatible)

	ctx := context.Background()
	runs, err := store.ListRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, root, runs[0].RootPath)
	assert.Equal(t, "stub-model", runs[0].Model)
	assert.Equal(t, 2, runs[0].FilesTotal)
	assert.Equal(t, 1, runs[0].FilesUpgraded)
	assert.False(t, runs[0].FinishedAt.IsZero())

	results, err := store.ListFileResults(ctx, runs[0].ID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byPath := map[string]*report.FileResult{}
	for _, r := range results {
		byPath[r.FilePath] = r
	}
	require.Contains(t, byPath, "Up.cs")
	require.Contains(t, byPath, "Ok.cs")
	assert.Equal(t, report.StatusUpgraded, byPath["Up.cs"].Status)
	assert.Equal(t, report.StatusCompatible, byPath["Ok.cs"].Status)
}

func TestRun_ManyFilesConcurrently(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, filepath.Join(root, "sub", string(rune('a'+i))+".cs"), "public class X {}\n")
	}

	client := &stubClient{}
	u := New(client, nil)

	stats, err := u.Run(context.Background(), &Config{Root: root, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, 20, stats.FilesFound)
	assert.Equal(t, 20, stats.FilesCompatible)
	assert.Len(t, client.prompts(), 20)
}

func TestWriteAtomic_PreservesMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mode.cs")
	require.NoError(t, os.WriteFile(path, []byte("before"), 0600))

	require.NoError(t, writeAtomic(path, "after"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	assert.Equal(t, "after", readFile(t, path))

	// No temp file left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDiffStats(t *testing.T) {
	before := "one\ntwo\nthree\n"
	after := "one\n2\nthree\nfour\n"

	added, removed := diffStats(before, after)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, removed)

	added, removed = diffStats("same\n", "same\n")
	assert.Zero(t, added)
	assert.Zero(t, removed)
}
