// Package scanner discovers the source files an upgrade run will
// process.
package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultExtension is the file suffix collected when none is configured.
const DefaultExtension = ".cs"

// Options controls directory traversal.
type Options struct {
	// Extension is the required file name suffix, including the dot.
	Extension string
	// RespectGitignore skips paths matched by the root's .gitignore.
	RespectGitignore bool
}

// Discover walks root recursively and returns every file whose name ends
// with the configured extension. Hidden directories are skipped. A root
// that does not exist or cannot be read yields zero files rather than an
// error: the caller treats an empty result as "nothing to do".
func Discover(root string, opts Options) []string {
	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil
	}

	var matcher *ignore.GitIgnore
	if opts.RespectGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			matcher = gi
		}
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable subtree: skip it, keep walking.
			log.Debug().Err(err).Str("path", path).Msg("skipping unreadable path")
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if matcher != nil && rel != "." && matcher.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(info.Name(), ext) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("root", root).Msg("directory walk ended early")
	}

	return files
}
