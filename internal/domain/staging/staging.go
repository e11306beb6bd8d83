package staging

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// SegmentName returns the staged copy name for one selected candidate.
// Ordinal (script line) and rank (position within the term's results) are
// zero-padded so that lexicographic listing order equals script order even
// past ten terms.
func SegmentName(ordinal, rank int, term string) string {
	name := SanitizeTerm(term)
	if name == "" {
		name = "term"
	}
	return fmt.Sprintf("%03d_%02d_%s.mp4", ordinal, rank, name)
}

// SanitizeTerm collapses anything that is not a letter or digit into a
// single underscore, keeping the search text recognizable in file listings.
func SanitizeTerm(s string) string {
	var b strings.Builder
	prevSep := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevSep = false
		default:
			if !prevSep {
				b.WriteByte('_')
				prevSep = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// Folder holds the merge inputs discovered in a job folder.
type Folder struct {
	Videos   []string // sorted; zero-padded names put them in script order
	Audio    string
	Subtitle string
}

// Classify buckets a job folder's file names by extension and checks the
// merge preconditions: at least one video segment, exactly one audio file,
// exactly one subtitle file. The merged artifact of an earlier run is not a
// segment and is ignored.
func Classify(names []string) (Folder, error) {
	var f Folder
	audio := 0
	subs := 0
	for _, name := range names {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".mp4":
			if strings.HasSuffix(name, "_merged.mp4") {
				continue
			}
			f.Videos = append(f.Videos, name)
		case ".mp3", ".wav":
			f.Audio = name
			audio++
		case ".srt":
			f.Subtitle = name
			subs++
		}
	}
	sort.Strings(f.Videos)

	switch {
	case len(f.Videos) == 0:
		return Folder{}, fmt.Errorf("no video segments found")
	case audio == 0:
		return Folder{}, fmt.Errorf("no audio file found")
	case audio > 1:
		return Folder{}, fmt.Errorf("expected exactly one audio file, found %d", audio)
	case subs == 0:
		return Folder{}, fmt.Errorf("no subtitle file found")
	case subs > 1:
		return Folder{}, fmt.Errorf("expected exactly one subtitle file, found %d", subs)
	}
	return f, nil
}
