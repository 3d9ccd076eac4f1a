package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a unified SQLite-based storage that provides access to
// all record store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory and
// applies pending migrations. If dataDir is empty, defaults to ~/.waiverdesk/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".waiverdesk", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "waiverdesk.db")

	// Pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", dbPath+
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// UserStore returns a UserStore interface backed by this store.
func (s *Store) UserStore() driven.UserStore {
	return &userStore{store: s}
}

// SessionStore returns a SessionStore interface backed by this store.
func (s *Store) SessionStore() driven.SessionStore {
	return &sessionStore{store: s}
}

// EventStore returns an EventStore interface backed by this store.
func (s *Store) EventStore() driven.EventStore {
	return &eventStore{store: s}
}

// WaiverStore returns a WaiverStore interface backed by this store.
func (s *Store) WaiverStore() driven.WaiverStore {
	return &waiverStore{store: s}
}

// SignatureStore returns a SignatureStore interface backed by this store.
func (s *Store) SignatureStore() driven.SignatureStore {
	return &signatureStore{store: s}
}

// SavedSignatureStore returns a SavedSignatureStore interface backed by this store.
func (s *Store) SavedSignatureStore() driven.SavedSignatureStore {
	return &savedSignatureStore{store: s}
}

// StatsStore returns a StatsStore interface backed by this store.
func (s *Store) StatsStore() driven.StatsStore {
	return &statsStore{store: s}
}

// SchemaVersion returns the highest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	row := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("getting schema version: %w", err)
	}
	return version, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	currentVersion, err := s.SchemaVersion(context.Background())
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// apply executes one migration and records its version atomically.
func (s *Store) apply(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}
	return tx.Commit()
}

// ==================== Helpers ====================

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// timestamp scans DATETIME columns written as text or decoded by the driver.
type timestamp struct {
	Time  time.Time
	Valid bool
}

func (ts *timestamp) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		ts.Time, ts.Valid = time.Time{}, false
		return nil
	case time.Time:
		ts.Time, ts.Valid = v.UTC(), true
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", value)
	}
}

func (ts *timestamp) parse(v string) error {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return fmt.Errorf("parsing timestamp %q: %w", v, err)
	}
	ts.Time, ts.Valid = t.UTC(), true
	return nil
}

func (ts timestamp) ptr() *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY constraint failure.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ==================== User Store ====================

// userStore implements driven.UserStore.
type userStore struct {
	store *Store
}

var _ driven.UserStore = (*userStore)(nil)

const userColumns = `id, email, name, club_name, password_hash, role, created_at, updated_at`

// Create inserts a new user. Returns domain.ErrConflict if the email is taken.
func (s *userStore) Create(ctx context.Context, user *domain.User) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.Name, user.ClubName, user.PasswordHash, string(user.Role),
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt))
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID.
func (s *userStore) Get(ctx context.Context, id string) (*domain.User, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetByEmail retrieves a user by normalised email.
func (s *userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// Update replaces a user's mutable fields.
func (s *userStore) Update(ctx context.Context, user *domain.User) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE users SET email = ?, name = ?, club_name = ?, password_hash = ?, role = ?, updated_at = ?
		WHERE id = ?
	`, user.Email, user.Name, user.ClubName, user.PasswordHash, string(user.Role),
		formatTime(user.UpdatedAt), user.ID)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row scanner) (*domain.User, error) {
	var user domain.User
	var role string
	var createdAt, updatedAt timestamp
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.ClubName, &user.PasswordHash,
		&role, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	user.Role = domain.Role(role)
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time
	return &user, nil
}

// ==================== Session Store ====================

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// Save stores a session.
func (s *sessionStore) Save(ctx context.Context, session domain.Session) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET expires_at = excluded.expires_at
	`, session.Token, session.UserID, formatTime(session.ExpiresAt), formatTime(session.CreatedAt))
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Get retrieves a session by token.
func (s *sessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?
	`, token)

	var session domain.Session
	var expiresAt, createdAt timestamp
	if err := row.Scan(&session.Token, &session.UserID, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	session.ExpiresAt = expiresAt.Time
	session.CreatedAt = createdAt.Time
	return &session, nil
}

// Delete removes a session.
func (s *sessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired at or before now.
func (s *sessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted sessions: %w", err)
	}
	return int(n), nil
}

// ==================== Event Store ====================

// eventStore implements driven.EventStore.
type eventStore struct {
	store *Store
}

var _ driven.EventStore = (*eventStore)(nil)

const eventColumns = `e.id, e.title, e.description, e.location, e.start_date, e.end_date,
	e.is_active, e.created_by, e.created_at, e.updated_at`

// Save stores or updates an event.
func (s *eventStore) Save(ctx context.Context, event *domain.Event) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, location, start_date, end_date,
			is_active, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			location = excluded.location,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
	`, event.ID, event.Title, event.Description, event.Location,
		formatTime(event.StartDate), nullTime(event.EndDate), boolToInt(event.IsActive),
		event.CreatedBy, formatTime(event.CreatedAt), formatTime(event.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving event: %w", err)
	}
	return nil
}

// Get retrieves an event by ID.
func (s *eventStore) Get(ctx context.Context, id string) (*domain.Event, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = ?`, id)
	event, _, err := scanEvent(row, false)
	return event, err
}

// Delete removes an event. Its waiver and signatures are removed by cascade.
func (s *eventStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns every event, newest created first.
func (s *eventStore) List(ctx context.Context) ([]domain.EventSummary, error) {
	return s.summaries(ctx, "", "e.created_at DESC")
}

// ListActive returns active events ordered by start date.
func (s *eventStore) ListActive(ctx context.Context) ([]domain.EventSummary, error) {
	return s.summaries(ctx, "WHERE e.is_active = 1", "e.start_date ASC")
}

func (s *eventStore) summaries(ctx context.Context, where, order string) ([]domain.EventSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+eventColumns+`,
			(SELECT COUNT(*) FROM signatures sg WHERE sg.event_id = e.id)
		FROM events e `+where+`
		ORDER BY `+order)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	summaries := []domain.EventSummary{}
	for rows.Next() {
		event, count, err := scanEvent(rows, true)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.EventSummary{Event: *event, SignatureCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	waivers, err := s.store.waivers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if w, ok := waivers[summaries[i].ID]; ok {
			summaries[i].Waiver = w
		}
	}
	return summaries, nil
}

func scanEvent(row scanner, withCount bool) (*domain.Event, int, error) {
	var event domain.Event
	var startDate, endDate, createdAt, updatedAt timestamp
	var isActive, count int
	dest := []any{&event.ID, &event.Title, &event.Description, &event.Location,
		&startDate, &endDate, &isActive, &event.CreatedBy, &createdAt, &updatedAt}
	if withCount {
		dest = append(dest, &count)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("scanning event: %w", err)
	}
	event.StartDate = startDate.Time
	event.EndDate = endDate.ptr()
	event.IsActive = isActive != 0
	event.CreatedAt = createdAt.Time
	event.UpdatedAt = updatedAt.Time
	return &event, count, nil
}

// ==================== Waiver Store ====================

// waiverStore implements driven.WaiverStore.
type waiverStore struct {
	store *Store
}

var _ driven.WaiverStore = (*waiverStore)(nil)

const waiverColumns = `id, event_id, title, content, document_key, document_url, fields, created_at`

// Save stores or updates a waiver. An event holds at most one waiver.
func (s *waiverStore) Save(ctx context.Context, waiver *domain.Waiver) error {
	fieldsJSON, err := marshalFields(waiver.Fields)
	if err != nil {
		return err
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO waivers (`+waiverColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			document_key = excluded.document_key,
			document_url = excluded.document_url,
			fields = excluded.fields
	`, waiver.ID, waiver.EventID, waiver.Title, waiver.Content, waiver.DocumentKey,
		waiver.DocumentURL, fieldsJSON, formatTime(waiver.CreatedAt))
	switch {
	case isUniqueViolation(err):
		return &domain.ConflictError{Msg: "event already has a waiver"}
	case isForeignKeyViolation(err):
		return fmt.Errorf("event %s: %w", waiver.EventID, domain.ErrNotFound)
	case err != nil:
		return fmt.Errorf("saving waiver: %w", err)
	}
	return nil
}

// Get retrieves a waiver by ID.
func (s *waiverStore) Get(ctx context.Context, id string) (*domain.Waiver, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+waiverColumns+` FROM waivers WHERE id = ?`, id)
	return scanWaiver(row)
}

// GetByEvent retrieves the waiver attached to an event.
func (s *waiverStore) GetByEvent(ctx context.Context, eventID string) (*domain.Waiver, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+waiverColumns+` FROM waivers WHERE event_id = ?`, eventID)
	return scanWaiver(row)
}

// SetFields replaces a waiver's field descriptors.
func (s *waiverStore) SetFields(ctx context.Context, waiverID string, fields []domain.FormField) error {
	fieldsJSON, err := marshalFields(fields)
	if err != nil {
		return err
	}
	res, err := s.store.db.ExecContext(ctx, "UPDATE waivers SET fields = ? WHERE id = ?", fieldsJSON, waiverID)
	if err != nil {
		return fmt.Errorf("updating waiver fields: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// waivers loads every waiver keyed by event ID.
func (s *Store) waivers(ctx context.Context) (map[string]*domain.Waiver, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+waiverColumns+` FROM waivers`)
	if err != nil {
		return nil, fmt.Errorf("querying waivers: %w", err)
	}
	defer rows.Close()

	byEvent := make(map[string]*domain.Waiver)
	for rows.Next() {
		w, err := scanWaiver(rows)
		if err != nil {
			return nil, err
		}
		byEvent[w.EventID] = w
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating waivers: %w", err)
	}
	return byEvent, nil
}

func marshalFields(fields []domain.FormField) (string, error) {
	if fields == nil {
		fields = []domain.FormField{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshalling fields: %w", err)
	}
	return string(data), nil
}

func scanWaiver(row scanner) (*domain.Waiver, error) {
	var w domain.Waiver
	var fieldsJSON string
	var createdAt timestamp
	if err := row.Scan(&w.ID, &w.EventID, &w.Title, &w.Content, &w.DocumentKey, &w.DocumentURL,
		&fieldsJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning waiver: %w", err)
	}
	w.Fields = []domain.FormField{}
	if err := json.Unmarshal([]byte(fieldsJSON), &w.Fields); err != nil {
		return nil, fmt.Errorf("unmarshaling fields: %w", err)
	}
	w.CreatedAt = createdAt.Time
	return &w, nil
}

// ==================== Signature Store ====================

// signatureStore implements driven.SignatureStore.
type signatureStore struct {
	store *Store
}

var _ driven.SignatureStore = (*signatureStore)(nil)

const signatureColumns = `s.id, s.user_id, s.event_id, s.waiver_id, s.style, s.image_data, s.form_data,
	s.ip_address, s.user_agent, s.artifact_key, s.signed_at`

// Create inserts a signature record. A second record for the same signer
// and event fails with domain.ErrAlreadySigned.
func (s *signatureStore) Create(ctx context.Context, sig *domain.Signature) error {
	formJSON, err := json.Marshal(sig.FormData)
	if err != nil {
		return fmt.Errorf("marshalling form data: %w", err)
	}
	if sig.FormData == nil {
		formJSON = []byte("{}")
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO signatures (id, user_id, event_id, waiver_id, style, image_data, form_data,
			ip_address, user_agent, artifact_key, signed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sig.ID, sig.UserID, sig.EventID, sig.WaiverID, string(sig.Style), sig.ImageData, string(formJSON),
		sig.IPAddress, sig.UserAgent, sig.ArtifactKey, formatTime(sig.SignedAt))
	switch {
	case isUniqueViolation(err):
		return domain.ErrAlreadySigned
	case isForeignKeyViolation(err):
		return fmt.Errorf("signature references: %w", domain.ErrNotFound)
	case err != nil:
		return fmt.Errorf("creating signature: %w", err)
	}
	return nil
}

// Get retrieves a signature by ID.
func (s *signatureStore) Get(ctx context.Context, id string) (*domain.Signature, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+signatureColumns+` FROM signatures s WHERE s.id = ?`, id)
	return scanSignature(row)
}

// Find retrieves the signature of a signer for an event.
func (s *signatureStore) Find(ctx context.Context, userID, eventID string) (*domain.Signature, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+signatureColumns+` FROM signatures s WHERE s.user_id = ? AND s.event_id = ?
	`, userID, eventID)
	return scanSignature(row)
}

// SetArtifactKey records the storage key of the signed document.
func (s *signatureStore) SetArtifactKey(ctx context.Context, id, key string) error {
	res, err := s.store.db.ExecContext(ctx, "UPDATE signatures SET artifact_key = ? WHERE id = ?", key, id)
	if err != nil {
		return fmt.Errorf("updating artifact key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByEvent returns an event's signatures with signer details, newest first.
func (s *signatureStore) ListByEvent(ctx context.Context, eventID string) ([]domain.SignatureDetail, error) {
	return s.details(ctx, "s.event_id = ?", eventID)
}

// ListByUser returns a signer's signatures with event titles, newest first.
func (s *signatureStore) ListByUser(ctx context.Context, userID string) ([]domain.SignatureDetail, error) {
	return s.details(ctx, "s.user_id = ?", userID)
}

func (s *signatureStore) details(ctx context.Context, where, arg string) ([]domain.SignatureDetail, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+signatureColumns+`, u.name, u.email, e.title
		FROM signatures s
		JOIN users u ON u.id = s.user_id
		JOIN events e ON e.id = s.event_id
		WHERE `+where+`
		ORDER BY s.signed_at DESC
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("querying signatures: %w", err)
	}
	defer rows.Close()

	details := []domain.SignatureDetail{}
	for rows.Next() {
		var d domain.SignatureDetail
		sig, err := scanSignature(rows, &d.SignerName, &d.SignerEmail, &d.EventTitle)
		if err != nil {
			return nil, err
		}
		d.Signature = *sig
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating signatures: %w", err)
	}
	return details, nil
}

func scanSignature(row scanner, extra ...any) (*domain.Signature, error) {
	var sig domain.Signature
	var style, formJSON string
	var signedAt timestamp
	dest := append([]any{&sig.ID, &sig.UserID, &sig.EventID, &sig.WaiverID, &style, &sig.ImageData,
		&formJSON, &sig.IPAddress, &sig.UserAgent, &sig.ArtifactKey, &signedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning signature: %w", err)
	}
	sig.Style = domain.SignatureStyle(style)
	if formJSON != "" && formJSON != "{}" {
		if err := json.Unmarshal([]byte(formJSON), &sig.FormData); err != nil {
			return nil, fmt.Errorf("unmarshaling form data: %w", err)
		}
	}
	sig.SignedAt = signedAt.Time
	return &sig, nil
}

// ==================== Saved Signature Store ====================

// savedSignatureStore implements driven.SavedSignatureStore.
type savedSignatureStore struct {
	store *Store
}

var _ driven.SavedSignatureStore = (*savedSignatureStore)(nil)

// GetDefault retrieves a user's default signature.
func (s *savedSignatureStore) GetDefault(ctx context.Context, userID string) (*domain.SavedSignature, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, user_id, image_data, is_default, created_at, updated_at
		FROM saved_signatures WHERE user_id = ? AND is_default = 1
	`, userID)

	var saved domain.SavedSignature
	var isDefault int
	var createdAt, updatedAt timestamp
	if err := row.Scan(&saved.ID, &saved.UserID, &saved.ImageData, &isDefault,
		&createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning saved signature: %w", err)
	}
	saved.IsDefault = isDefault != 0
	saved.CreatedAt = createdAt.Time
	saved.UpdatedAt = updatedAt.Time
	return &saved, nil
}

// SaveDefault creates or replaces a user's default signature.
func (s *savedSignatureStore) SaveDefault(ctx context.Context, sig *domain.SavedSignature) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO saved_signatures (id, user_id, image_data, is_default, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			image_data = excluded.image_data,
			is_default = 1,
			updated_at = excluded.updated_at
	`, sig.ID, sig.UserID, sig.ImageData, formatTime(sig.CreatedAt), formatTime(sig.UpdatedAt))
	if isForeignKeyViolation(err) {
		return fmt.Errorf("user %s: %w", sig.UserID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("saving default signature: %w", err)
	}
	return nil
}

// ==================== Stats Store ====================

// statsStore implements driven.StatsStore.
type statsStore struct {
	store *Store
}

var _ driven.StatsStore = (*statsStore)(nil)

// Stats returns record counts. RecentSignatures counts signatures after since.
func (s *statsStore) Stats(ctx context.Context, since time.Time) (domain.Stats, error) {
	var stats domain.Stats
	row := s.store.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE role = ?),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM events WHERE is_active = 1),
			(SELECT COUNT(*) FROM waivers),
			(SELECT COUNT(*) FROM signatures),
			(SELECT COUNT(*) FROM signatures WHERE signed_at > ?)
	`, string(domain.RoleAdmin), formatTime(since))
	if err := row.Scan(&stats.Users, &stats.Admins, &stats.Events, &stats.ActiveEvents,
		&stats.Waivers, &stats.Signatures, &stats.RecentSignatures); err != nil {
		return domain.Stats{}, fmt.Errorf("counting records: %w", err)
	}
	return stats, nil
}

// Ping checks the database connection.
func (s *statsStore) Ping(ctx context.Context) error {
	return s.store.db.PingContext(ctx)
}
