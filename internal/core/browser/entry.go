package browser

import (
	"io/fs"
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Entry is a single child of the current directory at listing time.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
}

// Kind classifies an entry for the host: directories are navigable,
// everything else is handed back as a file.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Kind returns the classification of e.
func (e Entry) Kind() Kind {
	if e.IsDir {
		return KindDirectory
	}
	return KindFile
}

// SortKey returns the key used to order names: NFC-normalised and case-folded.
func SortKey(name string) string {
	return sortKey(cases.Fold(), name)
}

// Casers are stateful, so callers pass their own.
func sortKey(c cases.Caser, name string) string {
	return c.String(norm.NFC.String(name))
}

// sortEntries orders directories first, then by case-insensitive name. Equal
// keys fall back to the raw name so the order is total.
func sortEntries(entries []Entry) {
	c := cases.Fold()
	keys := make(map[string]string, len(entries))
	for _, e := range entries {
		keys[e.Name] = sortKey(c, e.Name)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		ka, kb := keys[a.Name], keys[b.Name]
		if ka != kb {
			return ka < kb
		}
		return a.Name < b.Name
	})
}
