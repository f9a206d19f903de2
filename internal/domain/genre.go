package domain

import (
	"fmt"
	"strings"
)

// Genre is a Deezer editorial genre id.
type Genre int

const (
	GenreAlternative Genre = 85
	GenreElectronic  Genre = 106
	GenreDance       Genre = 113
	GenreHipHop      Genre = 116
	GenreJazz        Genre = 129
	GenrePop         Genre = 132
	GenreRock        Genre = 152
	GenreMetal       Genre = 464
)

var genreNames = map[Genre]string{
	GenrePop:         "Pop",
	GenreAlternative: "Alternative",
	GenreRock:        "Rock",
	GenreHipHop:      "Hip-Hop",
	GenreDance:       "Dance",
	GenreElectronic:  "Electronic",
	GenreJazz:        "Jazz",
	GenreMetal:       "Metal",
}

// Genres lists the supported genres in display order.
func Genres() []Genre {
	return []Genre{GenrePop, GenreAlternative, GenreRock, GenreHipHop, GenreDance, GenreElectronic, GenreJazz, GenreMetal}
}

// ParseGenre accepts the enum name or the display name, case-insensitively
// ("hiphop", "Hip-Hop" and "hip hop" all resolve to GenreHipHop).
func ParseGenre(raw string) (Genre, error) {
	key := normalizeGenre(raw)
	if key == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidGenre)
	}
	for g, name := range genreNames {
		if normalizeGenre(name) == key {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidGenre, raw)
}

func normalizeGenre(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", " ", "", "_", "").Replace(s)
}

func (g Genre) Valid() bool {
	_, ok := genreNames[g]
	return ok
}

// String returns the display name used in listings and playlist titles.
func (g Genre) String() string {
	if name, ok := genreNames[g]; ok {
		return name
	}
	return fmt.Sprintf("Genre(%d)", int(g))
}

// SearchTerm is the term used for the catalog search fallback.
func (g Genre) SearchTerm() string {
	return strings.ToLower(g.String())
}
