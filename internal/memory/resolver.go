package memory

import (
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// resolve turns a caller-supplied virtual path into a real path under
// the memory root, plus the canonical virtual form used in messages and
// audit records. It is the single sandbox enforcement point: every
// operation resolves through here before touching the filesystem, and
// resolution itself never creates filesystem entries.
func (t *Tool) resolve(virt string) (real, display string, err error) {
	rest, ok := t.stripPrefix(virt)
	if !ok {
		return "", "", opErrorf(KindInvalidPath, virt, "invalid path: %q must be under %s", virt, t.prefix)
	}

	// Walk segments instead of substring-matching "..": doubled
	// separators and dot segments collapse here, and any climb past
	// the prefix root is rejected before the path is ever joined.
	var segs []string
	for _, seg := range strings.Split(rest, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segs) == 0 {
				return "", "", opErrorf(KindInvalidPath, virt, "invalid path: %q escapes %s", virt, t.prefix)
			}
			segs = segs[:len(segs)-1]
		default:
			segs = append(segs, seg)
		}
	}

	rel := strings.Join(segs, "/")
	display = t.prefix
	if rel != "" {
		display = t.prefix + "/" + rel
	}

	// SecureJoin fails only on filesystem errors met while chasing
	// symlinks (loops, unreadable directories). Its error names the
	// real root, so it is scrubbed like any other os error.
	real, jerr := securejoin.SecureJoin(t.root, rel)
	if jerr != nil {
		return "", "", ioError(display, jerr)
	}
	return real, display, nil
}

// stripPrefix removes the virtual prefix as a whole leading segment.
// Both "/memories/..." and "memories/..." spellings are accepted;
// prefix-adjacent names like "/memoriesfoo" are not, and neither are
// bare relative paths with no prefix at all.
func (t *Tool) stripPrefix(virt string) (string, bool) {
	name := strings.TrimPrefix(t.prefix, "/")
	p := strings.TrimLeft(virt, "/")
	if p == name {
		return "", true
	}
	if strings.HasPrefix(p, name+"/") {
		return p[len(name)+1:], true
	}
	return "", false
}
