package media

import (
	"mime/multipart"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/townboard/eventboard/apperror"
)

// EventRecord is the metadata store's view of one event.
type EventRecord struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	MediaFiles []string  `json:"mediaFiles"`
	CreatedAt  time.Time `json:"timestamp"`
}

// MetadataStore is the external store owning the authoritative list of live
// media refs per event, alongside title and link.
type MetadataStore interface {
	List() ([]EventRecord, error)
	Insert(title, link string, files []string) (EventRecord, error)
	Get(id uint) (EventRecord, error)
	Update(id uint, title, link string, files []string) (EventRecord, error)
	Delete(id uint) error
}

// Lifecycle orchestrates create/update/delete of an event's media set,
// keeping the filesystem and the metadata store in step. Crash windows
// between a file write and the metadata commit (or the reverse) leave
// recoverable drift, never corruption; no cross-request locking is taken.
type Lifecycle struct {
	store  *Store
	ingest *Ingestor
	meta   MetadataStore
	log    *zap.SugaredLogger
}

func NewLifecycle(store *Store, ingest *Ingestor, meta MetadataStore, log *zap.SugaredLogger) *Lifecycle {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Lifecycle{store: store, ingest: ingest, meta: meta, log: log}
}

// List returns all events, newest first, with refs whose backing file has
// vanished filtered out of the view. The stored lists are not rewritten;
// dangling refs stay in the database until an update replaces them.
func (l *Lifecycle) List() ([]EventRecord, error) {
	records, err := l.meta.List()
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].MediaFiles = l.store.FilterExisting(records[i].MediaFiles)
	}
	return records, nil
}

// CreateInput carries a new event submission.
type CreateInput struct {
	Title string
	Link  string
	Files []*multipart.FileHeader
}

// Create validates the submission, ingests its files and persists the record.
// Precondition: non-empty title and at least a link or one file. The check
// runs before any byte hits the disk, so a rejected create writes nothing.
func (l *Lifecycle) Create(in CreateInput) (EventRecord, error) {
	title := strings.TrimSpace(in.Title)
	link := strings.TrimSpace(in.Link)
	if title == "" {
		return EventRecord{}, apperror.NewValidation("title is required")
	}
	if link == "" && len(in.Files) == 0 {
		return EventRecord{}, apperror.NewValidation("an event needs a link or at least one media file")
	}

	sess := l.store.NewSession()
	files, err := l.ingest.Ingest(sess, in.Files)
	if err != nil {
		return EventRecord{}, err
	}

	rec, err := l.meta.Insert(title, link, files)
	if err != nil {
		sess.Discard()
		return EventRecord{}, err
	}
	return rec, nil
}

// UpdateInput carries an admin edit of an existing event.
type UpdateInput struct {
	ID     uint
	Title  string
	Link   string
	Keep   []string // relative paths to retain from the current set
	Remove []string // relative paths to delete
	Files  []*multipart.FileHeader
}

// Update reconciles the event's media set. Order: intersect keep with the
// current list (stale keeps drop silently), ingest the new files, then check
// the precondition before any removal executes, so a rejected update leaves
// the remove set untouched on disk. Removals run after that point and are not
// rolled back by later failures; a persist error then leaves dangling refs,
// which is accepted drift.
func (l *Lifecycle) Update(in UpdateInput) (EventRecord, error) {
	rec, err := l.meta.Get(in.ID)
	if err != nil {
		return EventRecord{}, err
	}

	title := strings.TrimSpace(in.Title)
	link := strings.TrimSpace(in.Link)

	keep := toSet(in.Keep)
	remove := toSet(in.Remove)
	retained := make([]string, 0, len(rec.MediaFiles))
	for _, rel := range rec.MediaFiles {
		if _, ok := keep[rel]; !ok {
			continue
		}
		if _, ok := remove[rel]; ok {
			continue
		}
		retained = append(retained, rel)
	}

	sess := l.store.NewSession()
	added, err := l.ingest.Ingest(sess, in.Files)
	if err != nil {
		return EventRecord{}, err
	}

	if title == "" || (link == "" && len(retained)+len(added) == 0) {
		sess.Discard()
		if title == "" {
			return EventRecord{}, apperror.NewValidation("title is required")
		}
		return EventRecord{}, apperror.NewValidation("an event needs a link or at least one media file")
	}

	current := toSet(rec.MediaFiles)
	touched := map[string]struct{}{}
	for _, rel := range in.Remove {
		if _, ok := current[rel]; !ok {
			continue
		}
		if err := l.store.DeleteFile(rel); err != nil {
			l.log.Warnf("event %d: delete %s failed: %v", in.ID, rel, err)
			continue
		}
		if token := DirectoryToken(rel); token != "" {
			touched[token] = struct{}{}
		}
	}
	for token := range touched {
		if err := l.store.PruneIfEmpty(token); err != nil {
			l.log.Warnf("event %d: prune %s failed: %v", in.ID, token, err)
		}
	}

	final := append(retained, added...)
	updated, err := l.meta.Update(in.ID, title, link, final)
	if err != nil {
		sess.Discard()
		return EventRecord{}, err
	}
	return updated, nil
}

// Delete removes the event's whole media directory and its metadata row.
// Directory removal failure is logged and the row is deleted regardless;
// the resulting orphan files are accepted drift.
func (l *Lifecycle) Delete(id uint) error {
	rec, err := l.meta.Get(id)
	if err != nil {
		return err
	}
	if len(rec.MediaFiles) > 0 {
		// All files of one event share a directory.
		if token := DirectoryToken(rec.MediaFiles[0]); token != "" {
			if err := l.store.DeleteDirectory(token); err != nil {
				l.log.Warnf("event %d: delete media directory %s failed: %v", id, token, err)
			}
		}
	}
	return l.meta.Delete(id)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
