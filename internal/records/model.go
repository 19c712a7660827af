package records

// BookRecord is one journaled reading entry. Records are never edited after creation.
type BookRecord struct {
	ID         string  `json:"id"`
	GroupID    string  `json:"groupId"`
	Title      string  `json:"title"`
	AuthorName string  `json:"authorName"`
	Writer     string  `json:"writer"`
	Publisher  string  `json:"publisher"`
	Genre      Genre   `json:"genre"`
	Pages      int     `json:"pages"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	RecordDate string  `json:"recordDate"`
	CoverImage string  `json:"coverImage"`
	Rating     float64 `json:"rating"`
	Review     string  `json:"review"`
	Timestamp  int64   `json:"timestamp"`
}

// Draft is a partially filled record form. Nil fields were never touched.
type Draft struct {
	ID         *string  `json:"id,omitempty"`
	GroupID    *string  `json:"groupId,omitempty"`
	Title      *string  `json:"title,omitempty"`
	AuthorName *string  `json:"authorName,omitempty"`
	Writer     *string  `json:"writer,omitempty"`
	Publisher  *string  `json:"publisher,omitempty"`
	Genre      *Genre   `json:"genre,omitempty"`
	Pages      *int     `json:"pages,omitempty"`
	StartDate  *string  `json:"startDate,omitempty"`
	EndDate    *string  `json:"endDate,omitempty"`
	RecordDate *string  `json:"recordDate,omitempty"`
	CoverImage *string  `json:"coverImage,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Review     *string  `json:"review,omitempty"`
	Timestamp  *int64   `json:"timestamp,omitempty"`
}
