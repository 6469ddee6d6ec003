package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/charmbracelet/log"
	"github.com/gobwas/glob"
)

// FileRecord describes a single documentation file found under the scanned
// root. Path is the absolute path and serves as the record's identity;
// RelPath is relative to the root and always uses forward slashes.
type FileRecord struct {
	Path    string
	RelPath string
	Name    string
	Title   string
	Tags    []string
}

// HasTag reports whether the record's frontmatter carried the given tag.
func (r FileRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Scanner walks a root directory and produces the flat record list the
// tree package consumes.
type Scanner struct {
	root       string
	extensions []string
	excludes   []glob.Glob
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtensions overrides the file extensions considered documentation.
// Extensions are matched case-insensitively and must include the dot.
func WithExtensions(exts []string) Option {
	return func(s *Scanner) {
		if len(exts) > 0 {
			s.extensions = exts
		}
	}
}

// WithExcludes adds glob patterns (matched against slash-separated
// relative paths) whose matches are dropped from the scan.
func WithExcludes(patterns []string) Option {
	return func(s *Scanner) {
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				log.Warn("ignoring invalid exclude pattern", "pattern", p, "err", err)
				continue
			}
			s.excludes = append(s.excludes, g)
		}
	}
}

// New creates a Scanner rooted at the given absolute directory.
func New(root string, opts ...Option) *Scanner {
	s := &Scanner{
		root:       root,
		extensions: []string{".md", ".mdx"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the absolute directory the scanner reads from.
func (s *Scanner) Root() string {
	return s.root
}

// Scan walks the root and returns one record per documentation file,
// sorted by relative path so repeated scans of an unchanged directory
// yield the same list. Unreadable entries are logged and skipped.
func (s *Scanner) Scan() ([]FileRecord, error) {
	var records []FileRecord

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			log.Warn("skipping unreadable entry", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == s.root {
			return nil
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if shouldSkipDir(d.Name()) || s.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.matchesExtension(d.Name()) || s.excluded(rel) {
			return nil
		}

		rec := FileRecord{
			Path:    path,
			RelPath: rel,
			Name:    d.Name(),
		}
		rec.Title, rec.Tags = readFrontmatter(path)
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].RelPath < records[j].RelPath
	})
	return records, nil
}

// Dirs returns the absolute path of every directory the scanner would
// descend into, the root included. Callers use this to register watches,
// since fsnotify does not watch recursively.
func (s *Scanner) Dirs() ([]string, error) {
	dirs := []string{s.root}

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			return nil
		}
		if path == s.root || !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		if shouldSkipDir(d.Name()) || s.excluded(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

// FilterByTag returns only the records whose frontmatter carries the tag.
func FilterByTag(records []FileRecord, tag string) []FileRecord {
	var out []FileRecord
	for _, rec := range records {
		if rec.HasTag(tag) {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Scanner) matchesExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range s.extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func (s *Scanner) excluded(rel string) bool {
	for _, g := range s.excludes {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

func shouldSkipDir(name string) bool {
	switch strings.ToLower(name) {
	case ".git", "node_modules", ".hg", ".svn", ".idea", ".vscode":
		return true
	default:
		return false
	}
}

// readFrontmatter pulls title and tags out of a file's YAML frontmatter.
// A file without frontmatter, or with frontmatter that fails to parse, is
// still a valid record; parse failures are logged at debug level only.
func readFrontmatter(path string) (string, []string) {
	f, err := os.Open(path)
	if err != nil {
		log.Debug("frontmatter read failed", "path", path, "err", err)
		return "", nil
	}
	defer f.Close()

	var matter struct {
		Title string   `yaml:"title"`
		Tags  []string `yaml:"tags"`
	}
	if _, err := frontmatter.Parse(f, &matter); err != nil {
		log.Debug("frontmatter parse failed", "path", path, "err", err)
		return "", nil
	}
	return matter.Title, matter.Tags
}
