package version

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+(\.\d+)?)?$`)

// Version is a dotted numeric game or modloader version such as 1.20.1, 47.2
// or the four-part Forge builds of 1.12.2 and older (14.23.5.2860).
type Version struct {
	Major int
	Minor int
	Patch int
	Build int

	// segments is how many components were written out.
	segments int
}

func New(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch, segments: 3}
}

// IsValid reports whether s can be parsed by Parse.
func IsValid(s string) bool {
	return versionPattern.MatchString(strings.TrimSpace(s))
}

func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if !versionPattern.MatchString(s) {
		return Version{}, fmt.Errorf("invalid version string %q", s)
	}

	parts := strings.Split(s, ".")
	nums := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version component %q: %w", p, err)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Build: nums[3], segments: len(parts)}, nil
}

func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0 && v.Patch == 0 && v.Build == 0 && v.segments == 0
}

func (v Version) String() string {
	switch v.segments {
	case 2:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	case 4:
		return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1. Missing components compare as 0.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpInt(v.Minor, o.Minor)
	case v.Patch != o.Patch:
		return cmpInt(v.Patch, o.Patch)
	default:
		return cmpInt(v.Build, o.Build)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

type sorter []Version

func (s sorter) Len() int           { return len(s) }
func (s sorter) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s sorter) Less(i, j int) bool { return s[i].Compare(s[j]) < 0 }

// Sort orders versions newest first.
func Sort(versions []Version) {
	sort.Sort(sort.Reverse(sorter(versions)))
}

// ParseAll parses every string it can and drops the rest (snapshots, pre-releases).
func ParseAll(raw []string) []Version {
	var out []Version
	for _, s := range raw {
		v, err := Parse(s)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func Strings(versions []Version) []string {
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		out = append(out, v.String())
	}
	return out
}
