package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/streed/exo/internal/constants"
	interrors "github.com/streed/exo/internal/errors"
	"github.com/streed/exo/internal/logger"
	"github.com/streed/exo/internal/models"
	"github.com/streed/exo/internal/search"
	"github.com/streed/exo/internal/store"
)

const (
	seeAllNotes   = "Use 'exo notes' to see all your personal notes"
	updateUsage   = "Please provide both a note ID and new text. Usage: update_note <note_id> <new_text>"
	listNotesHint = "Your personal notes. Use 'exo create_note <note_string>' to create a new one. " +
		"Alternatively use 'exo update_note <note_id> <note_string>' to update a note, " +
		"or 'exo delete_note <note_id>' to delete a note"
)

// NotesService turns note commands into Results. It never returns an error:
// every failure is classified and rendered.
type NotesService struct {
	store  *store.NoteStore
	search search.SearchProvider
	limit  int
}

func NewNotesService(noteStore *store.NoteStore, searchProvider search.SearchProvider, limit int) *NotesService {
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}
	return &NotesService{
		store:  noteStore,
		search: searchProvider,
		limit:  limit,
	}
}

// Limit is the number of notes a search returns.
func (s *NotesService) Limit() int {
	return s.limit
}

// ParseNoteID accepts a positive decimal id.
func ParseNoteID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: a note ID is required", interrors.ErrInvalidNoteID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", interrors.ErrInvalidNoteID, raw)
	}
	return id, nil
}

func notFound(id int64, err error) error {
	if errors.Is(err, interrors.ErrNoteNotFound) {
		return fmt.Errorf("%w: no note with ID %d", interrors.ErrNoteNotFound, id)
	}
	return err
}

func formatNote(n *models.Note) string {
	return fmt.Sprintf("%d (%s): %q", n.ID, n.CreatedAt.Local().Format(constants.DisplayTimeLayout), n.Text)
}

func (s *NotesService) CreateNote(ctx context.Context, text string) Result {
	note, err := s.store.Create(ctx, text)
	if err != nil {
		logger.Debug("Create note failed: %v", err)
		return fromError("Error Creating Note", err)
	}

	r := ok("Note created. "+seeAllNotes, fmt.Sprintf("Your note has been created with ID: %d", note.ID))
	r.Note = note
	return r
}

func (s *NotesService) UpdateNote(ctx context.Context, rawID, text string) Result {
	const title = "Error Updating Note"
	if strings.TrimSpace(rawID) == "" || store.CleanText(text) == "" {
		return failure(title, KindValidation, updateUsage)
	}

	id, err := ParseNoteID(rawID)
	if err != nil {
		return fromError(title, err)
	}

	note, err := s.store.Update(ctx, id, text)
	if err != nil {
		logger.Debug("Update note %d failed: %v", id, err)
		return fromError(title, notFound(id, err))
	}

	r := ok("Note updated. "+seeAllNotes, fmt.Sprintf("Updated note ID: %d", note.ID))
	r.Note = note
	return r
}

func (s *NotesService) DeleteNote(ctx context.Context, rawID string) Result {
	const title = "Error Deleting Note"
	id, err := ParseNoteID(rawID)
	if err != nil {
		return fromError(title, err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		logger.Debug("Delete note %d failed: %v", id, err)
		return fromError(title, notFound(id, err))
	}

	return ok(fmt.Sprintf("Note %d deleted", id), seeAllNotes)
}

func (s *NotesService) ReadNote(ctx context.Context, rawID string) Result {
	const title = "Error Reading Note"
	id, err := ParseNoteID(rawID)
	if err != nil {
		return fromError(title, err)
	}

	note, err := s.store.Get(ctx, id)
	if err != nil {
		return fromError(title, notFound(id, err))
	}

	r := ok(fmt.Sprintf("Note %d, created %s", note.ID, note.CreatedAt.Local().Format(constants.DisplayTimeLayout)), note.Text)
	r.Note = note
	return r
}

func (s *NotesService) ListNotes(ctx context.Context) Result {
	notes, err := s.store.List(ctx)
	if err != nil {
		logger.Error("Failed to list notes: %v", err)
		return fromError("Error Fetching Notes", err)
	}
	return listResult(listNotesHint, notes)
}

// FilterNotes lists the notes whose text fuzzily contains pattern, best
// match first. An empty pattern lists everything.
func (s *NotesService) FilterNotes(ctx context.Context, pattern string) Result {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return s.ListNotes(ctx)
	}

	notes, err := s.store.List(ctx)
	if err != nil {
		logger.Error("Failed to list notes: %v", err)
		return fromError("Error Fetching Notes", err)
	}

	texts := make([]string, len(notes))
	for i, n := range notes {
		texts[i] = n.Text
	}
	matches := fuzzy.Find(pattern, texts)

	filtered := make([]*models.Note, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, notes[m.Index])
	}
	return listResult(fmt.Sprintf("Notes matching %q", pattern), filtered)
}

func listResult(title string, notes []*models.Note) Result {
	if len(notes) == 0 {
		r := ok(title, "No notes found.")
		r.Notes = notes
		return r
	}

	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, formatNote(n))
	}

	r := ok(title, strings.Join(lines, "\n\n"))
	r.Notes = notes
	return r
}

// SearchNotes returns the notes closest in meaning to query, best first.
func (s *NotesService) SearchNotes(ctx context.Context, query string) Result {
	const title = "Error Searching Notes"
	query = strings.TrimSpace(query)
	if query == "" {
		return failure(title, KindValidation, "Please provide a search query. Usage: search_notes <query>")
	}

	matches, err := s.search.SearchSimilar(ctx, query, s.limit)
	if err != nil {
		logger.Debug("Search for %q failed: %v", query, err)
		return fromError(title, err)
	}

	heading := fmt.Sprintf("Notes most related to %q. Use 'exo read_note <note_id>' to see one in full", query)
	if len(matches) == 0 {
		r := ok(heading, "No matching notes found.")
		r.Matches = matches
		return r
	}

	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("%s [similarity %.3f]", formatNote(m.Note), m.Similarity))
	}

	r := ok(heading, strings.Join(lines, "\n\n"))
	r.Matches = matches
	return r
}
