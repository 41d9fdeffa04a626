// Package pathutil provides pure path and FQN arithmetic shared by the
// normalization passes. All fileName values handled here follow the scanner
// convention: paths contained in an artifact are relative to the artifact and
// carry a leading slash.
package pathutil

import "strings"

// SplitDepth returns the number of '/'-separated segments in path.
func SplitDepth(path string) int {
	return len(strings.Split(path, "/"))
}

// StartsWithSlash reports whether a lies strictly under b, i.e. a starts
// with b followed by a path separator.
func StartsWithSlash(a, b string) bool {
	return strings.HasPrefix(a, b+"/")
}

// FQNToRelPath converts a dotted FQN into its slash form with a leading
// slash. An empty FQN maps to the empty path.
func FQNToRelPath(fqn string) string {
	if fqn == "" {
		return ""
	}
	return "/" + strings.ReplaceAll(fqn, ".", "/")
}

// RelPathToFQN converts a relative directory path (no leading slash) into
// its dotted form.
func RelPathToFQN(rel string) string {
	return strings.ReplaceAll(rel, "/", ".")
}

// PackageOf returns the package portion of a type FQN, or "" for a type in
// the default package.
func PackageOf(fqn string) string {
	idx := strings.LastIndex(fqn, ".")
	if idx < 0 {
		return ""
	}
	return fqn[:idx]
}

// StripSuffix removes suffix from the end of dir. The second return value is
// false when dir does not end with suffix. An empty suffix strips nothing
// and always succeeds.
func StripSuffix(dir, suffix string) (string, bool) {
	if suffix == "" {
		return dir, true
	}
	if !strings.HasSuffix(dir, suffix) {
		return "", false
	}
	return dir[:len(dir)-len(suffix)], true
}

// ParentDir returns the directory portion of a slash-separated path, without
// the trailing separator. The parent of a top-level entry is "".
func ParentDir(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// CommonPath returns the longest common directory prefix of the given
// absolute paths, or "" when the list is empty.
func CommonPath(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	common := strings.Split(paths[0], "/")
	for _, path := range paths[1:] {
		segments := strings.Split(path, "/")
		if len(segments) < len(common) {
			common = common[:len(segments)]
		}
		for i := range common {
			if common[i] != segments[i] {
				common = common[:i]
				break
			}
		}
	}

	joined := strings.Join(common, "/")
	if joined == "" {
		return "/"
	}
	return joined
}
