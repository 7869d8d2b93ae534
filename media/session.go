package media

import "io"

// Session tracks the media written for one upload request. The directory
// token is allocated lazily on the first stored file and reused for every
// later file of the same request, so the allocation never lives in ambient
// request state. Discard rolls the batch back file by file in reverse order.
type Session struct {
	store   *Store
	token   string
	written []string
}

// NewSession starts an upload session against the store. No directory exists
// until the first file is stored.
func (s *Store) NewSession() *Session {
	return &Session{store: s}
}

// Directory returns the session's directory token, allocating it on first use.
func (sess *Session) Directory() (string, error) {
	if sess.token != "" {
		return sess.token, nil
	}
	token, err := sess.store.AllocateDirectory()
	if err != nil {
		return "", err
	}
	sess.token = token
	return token, nil
}

// StoreFile writes one file into the session directory and records it for a
// possible rollback. Returns the stored relative path.
func (sess *Session) StoreFile(originalName string, r io.Reader, limit int64) (string, error) {
	token, err := sess.Directory()
	if err != nil {
		return "", err
	}
	rel, err := sess.store.WriteFile(token, originalName, r, limit)
	if err != nil {
		return "", err
	}
	sess.written = append(sess.written, rel)
	return rel, nil
}

// Written returns the relative paths stored so far, in write order.
func (sess *Session) Written() []string {
	return sess.written
}

// Discard deletes every file written in this session, newest first, and
// prunes the directory once empty. Cleanup is best-effort: failures are
// logged and never surface to the caller, so they cannot mask the error that
// triggered the rollback.
func (sess *Session) Discard() {
	for i := len(sess.written) - 1; i >= 0; i-- {
		if err := sess.store.DeleteFile(sess.written[i]); err != nil {
			sess.store.log.Warnf("upload rollback: delete %s failed: %v", sess.written[i], err)
		}
	}
	sess.written = nil
	if sess.token != "" {
		if err := sess.store.PruneIfEmpty(sess.token); err != nil {
			sess.store.log.Warnf("upload rollback: prune %s failed: %v", sess.token, err)
		}
	}
}
