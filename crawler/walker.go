package crawler

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/alidn/universal-lsif/internal/platform"
	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// alwaysSkippedDirs are pruned from every walk regardless of .gitignore
// contents — mirroring the `ignore` crate's built-in VCS-directory
// defaults the original implementation relied on.
var alwaysSkippedDirs = map[string]bool{
	".git": true,
}

// Walk enumerates every regular file under root whose extension matches
// one of extensions, honoring root's .gitignore if present. Paths
// returned are the walked paths, root prefix included (so they are
// absolute when root is).
func Walk(fsys platform.FileSystem, root string, extensions []string) ([]string, error) {
	matcher := compileIgnore(fsys, root)

	var files []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := relPath(root, p)
		if d.IsDir() {
			if rel != "." && (alwaysSkippedDirs[d.Name()] || matcher.MatchesPath(rel+"/")) {
				return fs.SkipDir
			}
			return nil
		}
		if matcher.MatchesPath(rel) {
			return nil
		}
		if !matchesExtensions(rel, extensions) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func relPath(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(p)
}

func matchesExtensions(relPath string, extensions []string) bool {
	for _, ext := range extensions {
		pattern := ext
		if !strings.Contains(pattern, "*") {
			pattern = "*" + ensureDot(ext)
		}
		if ok, _ := doublestar.Match(pattern, path.Base(relPath)); ok {
			return true
		}
	}
	return false
}

func ensureDot(ext string) string {
	if strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// compileIgnore returns a matcher for root's .gitignore, or one that
// matches nothing if there isn't one.
func compileIgnore(fsys platform.FileSystem, root string) *ignore.GitIgnore {
	data, err := fsys.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return ignore.CompileIgnoreLines()
	}
	return ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...)
}
