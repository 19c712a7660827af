package records

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

var errMissingIDProvider = errors.New("id provider is required")

// Factory turns a submitted form into a complete record.
type Factory struct {
	idProvider IDProvider
	clock      func() time.Time
}

// NewFactory constructs a Factory. A nil clock defaults to time.Now.
func NewFactory(idProvider IDProvider, clock func() time.Time) (*Factory, error) {
	if idProvider == nil {
		return nil, errMissingIDProvider
	}
	if clock == nil {
		clock = time.Now
	}
	return &Factory{idProvider: idProvider, clock: clock}, nil
}

// Build lays draft over the blank form defaults and stamps a fresh id, groupID and
// creation timestamp. Any id, group or timestamp carried by the draft is ignored.
func (f *Factory) Build(draft Draft, groupID, defaultAuthor string) (BookRecord, error) {
	now := f.clock()
	record := BookRecord{
		AuthorName: defaultAuthor,
		Genre:      DefaultFormGenre,
		RecordDate: now.UTC().Format(dateLayout),
	}
	applyDraft(&record, draft)

	id, err := f.idProvider.NewID()
	if err != nil {
		return BookRecord{}, err
	}
	record.ID = id
	record.GroupID = groupID
	record.Timestamp = now.UnixMilli()
	return record, nil
}

func applyDraft(record *BookRecord, draft Draft) {
	if draft.Title != nil {
		record.Title = *draft.Title
	}
	if draft.AuthorName != nil {
		record.AuthorName = *draft.AuthorName
	}
	if draft.Writer != nil {
		record.Writer = *draft.Writer
	}
	if draft.Publisher != nil {
		record.Publisher = *draft.Publisher
	}
	if draft.Genre != nil {
		record.Genre = *draft.Genre
	}
	if draft.Pages != nil {
		record.Pages = *draft.Pages
	}
	if draft.StartDate != nil {
		record.StartDate = *draft.StartDate
	}
	if draft.EndDate != nil {
		record.EndDate = *draft.EndDate
	}
	if draft.RecordDate != nil {
		record.RecordDate = *draft.RecordDate
	}
	if draft.CoverImage != nil {
		record.CoverImage = *draft.CoverImage
	}
	if draft.Rating != nil {
		record.Rating = *draft.Rating
	}
	if draft.Review != nil {
		record.Review = *draft.Review
	}
}
