package dataset

import (
	"path/filepath"
	"strings"
)

// LockFileName guards a storage root against concurrent invocations.
const LockFileName = ".geopipe.lock"

// Layout derives every on-disk location of a dataset from the storage root and
// the ref. Paths are part of the output contract and must not change.
type Layout struct {
	Root string
	Ref  Ref
}

// NewLayout binds a ref to a storage root.
func NewLayout(root string, ref Ref) Layout {
	return Layout{Root: root, Ref: ref}
}

// ArchivePath is the fetched container: {root}/{name}_{series}_RAW.tar.
func (l Layout) ArchivePath() string {
	return filepath.Join(l.Root, l.Ref.Name+"_"+l.Ref.Series+"_RAW.tar")
}

// ExtractDir is the per-dataset extraction root: {root}/{name}/{series}.
func (l Layout) ExtractDir() string {
	return filepath.Join(l.Root, l.Ref.Name, l.Ref.Series)
}

// MemberDir is the output directory of one archive member.
func (l Layout) MemberDir(member string) string {
	return filepath.Join(l.ExtractDir(), MemberBase(member))
}

// LockPath is the advisory lock file for the storage root.
func (l Layout) LockPath() string {
	return filepath.Join(l.Root, LockFileName)
}

// ArchiveURL assembles {base}/series/{series}/{name}/suppl/{name}_RAW.tar.
func (r Ref) ArchiveURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return base + "/series/" + r.Series + "/" + r.Name + "/suppl/" + r.Name + "_RAW.tar"
}

// MemberBase reduces a container member name to its base file name. Names
// that reduce to nothing usable return "".
func MemberBase(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimRight(name, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	switch name {
	case "", ".", "..":
		return ""
	}
	return name
}
