package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/store"
)

// NewWithDB constructs a SQLite-backed store. Call EnsureSchema first.
func NewWithDB(db *sql.DB) store.Store {
	return &sqliteStore{db: db, now: time.Now}
}

type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

func (s *sqliteStore) Conversations() store.Conversations { return &conversations{s} }
func (s *sqliteStore) Messages() store.Messages           { return &messages{s} }
func (s *sqliteStore) Profiles() store.Profiles           { return &profiles{s} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func nanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

// --- Conversations ---
type conversations struct{ s *sqliteStore }

func (c *conversations) Create(ctx context.Context, mc *model.Conversation) (*model.Conversation, error) {
	if err := model.ValidateTitle(mc.Title); err != nil {
		return nil, err
	}
	if mc.OwnerID == "" {
		return nil, model.NewValidationError("ownerId", "owner id is required")
	}
	now := c.s.now().UTC()
	out := model.Conversation{
		ID:        uuid.New().String(),
		OwnerID:   mc.OwnerID,
		Title:     mc.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := c.s.db.ExecContext(ctx, `
        INSERT INTO conversations (id, user_id, title, created_at, updated_at)
        VALUES (?,?,?,?,?)
    `, out.ID, out.OwnerID, out.Title, nanos(now), nanos(now)); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *conversations) Get(ctx context.Context, ownerID, conversationID string) (*model.Conversation, error) {
	out := model.Conversation{ID: conversationID, OwnerID: ownerID}
	var created, updated int64
	err := c.s.db.QueryRowContext(ctx, `
        SELECT title, created_at, updated_at FROM conversations WHERE user_id=? AND id=?
    `, ownerID, conversationID).Scan(&out.Title, &created, &updated)
	if err != nil {
		return nil, notFound(err, "conversation", conversationID)
	}
	out.CreatedAt, out.UpdatedAt = fromNanos(created), fromNanos(updated)
	return &out, nil
}

func (c *conversations) List(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	rows, err := c.s.db.QueryContext(ctx, `
        SELECT id, title, created_at, updated_at FROM conversations
        WHERE user_id=?
        ORDER BY updated_at DESC, created_at DESC, rowid DESC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Conversation
	for rows.Next() {
		mc := model.Conversation{OwnerID: ownerID}
		var created, updated int64
		if err := rows.Scan(&mc.ID, &mc.Title, &created, &updated); err != nil {
			return nil, err
		}
		mc.CreatedAt, mc.UpdatedAt = fromNanos(created), fromNanos(updated)
		out = append(out, &mc)
	}
	return out, rows.Err()
}

func (c *conversations) Touch(ctx context.Context, ownerID, conversationID string, at time.Time) error {
	res, err := c.s.db.ExecContext(ctx, `
        UPDATE conversations SET updated_at = MAX(updated_at, ?) WHERE user_id=? AND id=?
    `, nanos(at), ownerID, conversationID)
	if err != nil {
		return err
	}
	return requireRow(res, "conversation", conversationID)
}

func (c *conversations) Delete(ctx context.Context, ownerID, conversationID string) error {
	tx, err := c.s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        DELETE FROM messages WHERE conversation_id IN (
            SELECT id FROM conversations WHERE user_id=? AND id=?
        )`, ownerID, conversationID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE user_id=? AND id=?`, ownerID, conversationID)
	if err != nil {
		return err
	}
	if err := requireRow(res, "conversation", conversationID); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Messages ---
type messages struct{ s *sqliteStore }

func (m *messages) Create(ctx context.Context, ownerID string, mm *model.Message) (*model.Message, error) {
	if err := model.ValidateNewMessage(mm); err != nil {
		return nil, err
	}
	tx, err := m.s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var owned int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE user_id=? AND id=?`, ownerID, mm.ConversationID).Scan(&owned); err != nil {
		return nil, notFound(err, "conversation", mm.ConversationID)
	}

	out := *mm
	out.ID = uuid.New().String()
	out.Timestamp = m.s.now().UTC()
	var emotion interface{}
	if len(mm.EmotionAnalysis) > 0 {
		emotion = string(mm.EmotionAnalysis)
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO messages (id, conversation_id, content, role, timestamp, audio_url, emotion_analysis)
        VALUES (?,?,?,?,?,?,?)
    `, out.ID, out.ConversationID, out.Content, string(out.Role), nanos(out.Timestamp), mm.AudioURL, emotion); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE conversations SET updated_at = MAX(updated_at, ?) WHERE id=?
    `, nanos(out.Timestamp), out.ConversationID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *messages) List(ctx context.Context, ownerID, conversationID string) ([]*model.Message, error) {
	var owned int
	if err := m.s.db.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE user_id=? AND id=?`, ownerID, conversationID).Scan(&owned); err != nil {
		return nil, notFound(err, "conversation", conversationID)
	}
	rows, err := m.s.db.QueryContext(ctx, `
        SELECT id, content, role, timestamp, audio_url, emotion_analysis
        FROM messages WHERE conversation_id=?
        ORDER BY timestamp ASC, rowid ASC
    `, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Message
	for rows.Next() {
		mm := model.Message{ConversationID: conversationID}
		var role string
		var ts int64
		var audio, emotion sql.NullString
		if err := rows.Scan(&mm.ID, &mm.Content, &role, &ts, &audio, &emotion); err != nil {
			return nil, err
		}
		mm.Role = model.Role(role)
		mm.Timestamp = fromNanos(ts)
		if audio.Valid {
			a := audio.String
			mm.AudioURL = &a
		}
		if emotion.Valid && emotion.String != "" {
			mm.EmotionAnalysis = []byte(emotion.String)
		}
		out = append(out, &mm)
	}
	return out, rows.Err()
}

// --- Profiles ---
type profiles struct{ s *sqliteStore }

func (p *profiles) GetOrCreate(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, model.NewValidationError("id", "user id is required")
	}
	now := nanos(p.s.now())
	if _, err := p.s.db.ExecContext(ctx, `
        INSERT INTO profiles (id, created_at, updated_at) VALUES (?,?,?)
        ON CONFLICT(id) DO NOTHING
    `, userID, now, now); err != nil {
		return nil, err
	}
	return p.get(ctx, userID)
}

func (p *profiles) Update(ctx context.Context, userID string, upd *model.ProfileUpdate) (*model.Profile, error) {
	if userID == "" {
		return nil, model.NewValidationError("id", "user id is required")
	}
	if err := model.ValidateProfileUpdate(upd); err != nil {
		return nil, err
	}
	now := nanos(p.s.now())
	if _, err := p.s.db.ExecContext(ctx, `
        INSERT INTO profiles (id, full_name, diagnosis_age, diagnosis_type, created_at, updated_at)
        VALUES (?,?,?,?,?,?)
        ON CONFLICT(id) DO UPDATE SET
            full_name = excluded.full_name,
            diagnosis_age = excluded.diagnosis_age,
            diagnosis_type = excluded.diagnosis_type,
            updated_at = MAX(profiles.updated_at, excluded.updated_at)
    `, userID, upd.FullName, upd.DiagnosisAge, upd.DiagnosisType, now, now); err != nil {
		return nil, err
	}
	return p.get(ctx, userID)
}

func (p *profiles) get(ctx context.Context, userID string) (*model.Profile, error) {
	out := model.Profile{ID: userID}
	var (
		name, kind       sql.NullString
		age              sql.NullInt64
		created, updated int64
	)
	err := p.s.db.QueryRowContext(ctx, `
        SELECT full_name, diagnosis_age, diagnosis_type, created_at, updated_at
        FROM profiles WHERE id=?
    `, userID).Scan(&name, &age, &kind, &created, &updated)
	if err != nil {
		return nil, notFound(err, "profile", userID)
	}
	if name.Valid {
		out.FullName = &name.String
	}
	if age.Valid {
		n := int(age.Int64)
		out.DiagnosisAge = &n
	}
	if kind.Valid {
		out.DiagnosisType = &kind.String
	}
	out.CreatedAt, out.UpdatedAt = fromNanos(created), fromNanos(updated)
	return &out, nil
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, model.ErrNotFound)
	}
	return err
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, model.ErrNotFound)
	}
	return nil
}
