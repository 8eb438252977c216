// excludes.go - compiled exclude-pattern matching for the indexer
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package indexer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// excludeSet holds the compiled name- and path-matchers built from
// the raw --exclude patterns.
type excludeSet struct {
	names []*regexp.Regexp // match against basename
	paths []*regexp.Regexp // match against path relative to root
}

// newExcludeSet compiles raw into full-match anchored regexes: a
// pattern starting with "/" is a path matcher (relative to root),
// anything else is a name matcher (basename). When includeDotfiles
// is false, the implicit rule "^\." is added as a name matcher.
func newExcludeSet(raw []string, includeDotfiles bool) (*excludeSet, error) {
	es := &excludeSet{}
	for _, pat := range raw {
		if strings.HasPrefix(pat, "/") {
			re, err := regexp.Compile("^" + strings.Trim(pat, "/") + "$")
			if err != nil {
				return nil, fmt.Errorf("indexer: bad path exclude %q: %w", pat, err)
			}
			es.paths = append(es.paths, re)
		} else {
			re, err := regexp.Compile("^" + strings.Trim(pat, "/") + "$")
			if err != nil {
				return nil, fmt.Errorf("indexer: bad name exclude %q: %w", pat, err)
			}
			es.names = append(es.names, re)
		}
	}
	if !includeDotfiles {
		es.names = append(es.names, regexp.MustCompile(`^\.`))
	}
	return es, nil
}

// matches reports whether name (a basename) or relPath (path
// relative to root) is excluded.
func (es *excludeSet) matches(name, root, fullPath string) bool {
	for _, re := range es.names {
		if re.MatchString(name) {
			return true
		}
	}
	if len(es.paths) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, fullPath)
	if err != nil {
		rel = fullPath
	}
	rel = filepath.ToSlash(rel)
	for _, re := range es.paths {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}
