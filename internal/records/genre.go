package records

// Genre is one of the fixed shelf categories.
type Genre string

const (
	GenreNovel       Genre = "소설"
	GenreEssay       Genre = "에세이"
	GenreComputing   Genre = "컴퓨터/IT"
	GenreHobby       Genre = "취미/실용/스포츠"
	GenreTravel      Genre = "여행"
	GenreDrama       Genre = "희곡"
	GenreBusiness    Genre = "경제/경영"
	GenreHistory     Genre = "역사/문화"
	GenreArts        Genre = "예술/대중문화"
	GenreReligion    Genre = "종교"
	GenrePoetry      Genre = "시"
	GenreSelfHelp    Genre = "자기계발"
	GenreHumanities  Genre = "인문/철학/심리학"
	GenreScience     Genre = "과학/기술"
	GenrePolitics    Genre = "정치/사회/환경"
	DefaultFormGenre       = GenreNovel
)

var genres = []Genre{
	GenreNovel,
	GenreEssay,
	GenreComputing,
	GenreHobby,
	GenreTravel,
	GenreDrama,
	GenreBusiness,
	GenreHistory,
	GenreArts,
	GenreReligion,
	GenrePoetry,
	GenreSelfHelp,
	GenreHumanities,
	GenreScience,
	GenrePolitics,
}

// Genres returns the genres in display order.
func Genres() []Genre {
	out := make([]Genre, len(genres))
	copy(out, genres)
	return out
}

// Valid reports whether g is one of the known genres.
func (g Genre) Valid() bool {
	for _, known := range genres {
		if g == known {
			return true
		}
	}
	return false
}
