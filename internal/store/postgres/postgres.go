package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Conversations() store.Conversations { return &conversations{db: s.db} }
func (s *pgStore) Messages() store.Messages           { return &messages{db: s.db} }
func (s *pgStore) Profiles() store.Profiles           { return &profiles{db: s.db} }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Conversations ---
type conversations struct{ db *sql.DB }

func (c *conversations) Create(ctx context.Context, mc *model.Conversation) (*model.Conversation, error) {
	if err := model.ValidateTitle(mc.Title); err != nil {
		return nil, err
	}
	if mc.OwnerID == "" {
		return nil, model.NewValidationError("ownerId", "owner id is required")
	}
	id := uuid.New().String()
	out := model.Conversation{ID: id, OwnerID: mc.OwnerID, Title: mc.Title}
	row := c.db.QueryRowContext(ctx, `
        INSERT INTO conversations (id, user_id, title)
        VALUES ($1,$2,$3)
        RETURNING created_at, updated_at
    `, id, mc.OwnerID, mc.Title)
	if err := row.Scan(&out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *conversations) Get(ctx context.Context, ownerID, conversationID string) (*model.Conversation, error) {
	if _, err := uuid.Parse(conversationID); err != nil {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, model.ErrNotFound)
	}
	out := model.Conversation{ID: conversationID, OwnerID: ownerID}
	row := c.db.QueryRowContext(ctx, `
        SELECT title, created_at, updated_at
        FROM conversations WHERE user_id=$1 AND id=$2
    `, ownerID, conversationID)
	if err := row.Scan(&out.Title, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, notFound(err, "conversation", conversationID)
	}
	return &out, nil
}

func (c *conversations) List(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT id, title, created_at, updated_at
        FROM conversations WHERE user_id=$1
        ORDER BY updated_at DESC, created_at DESC
    `, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Conversation
	for rows.Next() {
		mc := model.Conversation{OwnerID: ownerID}
		if err := rows.Scan(&mc.ID, &mc.Title, &mc.CreatedAt, &mc.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &mc)
	}
	return out, rows.Err()
}

func (c *conversations) Touch(ctx context.Context, ownerID, conversationID string, at time.Time) error {
	if _, err := uuid.Parse(conversationID); err != nil {
		return fmt.Errorf("conversation %s: %w", conversationID, model.ErrNotFound)
	}
	res, err := c.db.ExecContext(ctx, `
        UPDATE conversations SET updated_at = GREATEST(updated_at, $1)
        WHERE user_id=$2 AND id=$3
    `, at.UTC(), ownerID, conversationID)
	if err != nil {
		return err
	}
	return requireRow(res, "conversation", conversationID)
}

func (c *conversations) Delete(ctx context.Context, ownerID, conversationID string) error {
	if _, err := uuid.Parse(conversationID); err != nil {
		return fmt.Errorf("conversation %s: %w", conversationID, model.ErrNotFound)
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// messages cascade through the foreign key; delete explicitly as well so a
	// schema created without the constraint still cleans up.
	if _, err := tx.ExecContext(ctx, `
        DELETE FROM messages WHERE conversation_id IN (
            SELECT id FROM conversations WHERE user_id=$1 AND id=$2
        )`, ownerID, conversationID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE user_id=$1 AND id=$2`, ownerID, conversationID)
	if err != nil {
		return err
	}
	if err := requireRow(res, "conversation", conversationID); err != nil {
		return err
	}
	return tx.Commit()
}

// --- Messages ---
type messages struct{ db *sql.DB }

func (m *messages) Create(ctx context.Context, ownerID string, mm *model.Message) (*model.Message, error) {
	if err := model.ValidateNewMessage(mm); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(mm.ConversationID); err != nil {
		return nil, fmt.Errorf("conversation %s: %w", mm.ConversationID, model.ErrNotFound)
	}
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var owned int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE user_id=$1 AND id=$2 FOR UPDATE`, ownerID, mm.ConversationID).Scan(&owned); err != nil {
		return nil, notFound(err, "conversation", mm.ConversationID)
	}

	msgID := uuid.New().String()
	var ts time.Time
	if err := tx.QueryRowContext(ctx, `
        INSERT INTO messages (id, conversation_id, content, role, audio_url, emotion_analysis)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING timestamp
    `, msgID, mm.ConversationID, mm.Content, string(mm.Role), mm.AudioURL, nullIfEmpty(mm.EmotionAnalysis)).Scan(&ts); err != nil {
		return nil, err
	}

	// keep the conversation's updated_at in step with its newest message
	if _, err := tx.ExecContext(ctx, `
        UPDATE conversations SET updated_at = GREATEST(updated_at, $1) WHERE id=$2
    `, ts, mm.ConversationID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out := *mm
	out.ID = msgID
	out.Timestamp = ts
	return &out, nil
}

func (m *messages) List(ctx context.Context, ownerID, conversationID string) ([]*model.Message, error) {
	if _, err := uuid.Parse(conversationID); err != nil {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, model.ErrNotFound)
	}
	var owned int
	if err := m.db.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE user_id=$1 AND id=$2`, ownerID, conversationID).Scan(&owned); err != nil {
		return nil, notFound(err, "conversation", conversationID)
	}
	rows, err := m.db.QueryContext(ctx, `
        SELECT id, content, role, timestamp, audio_url, emotion_analysis
        FROM messages WHERE conversation_id=$1
        ORDER BY timestamp ASC, seq ASC
    `, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Message
	for rows.Next() {
		mm := model.Message{ConversationID: conversationID}
		var role string
		var audio sql.NullString
		var emotion []byte
		if err := rows.Scan(&mm.ID, &mm.Content, &role, &mm.Timestamp, &audio, &emotion); err != nil {
			return nil, err
		}
		mm.Role = model.Role(role)
		if audio.Valid {
			a := audio.String
			mm.AudioURL = &a
		}
		if len(emotion) > 0 {
			mm.EmotionAnalysis = emotion
		}
		out = append(out, &mm)
	}
	return out, rows.Err()
}

// --- Profiles ---
type profiles struct{ db *sql.DB }

const profileColumns = `id, full_name, diagnosis_age, diagnosis_type, created_at, updated_at`

func (p *profiles) GetOrCreate(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, model.NewValidationError("id", "user id is required")
	}
	if _, err := p.db.ExecContext(ctx, `
        INSERT INTO profiles (id) VALUES ($1) ON CONFLICT (id) DO NOTHING
    `, userID); err != nil {
		return nil, err
	}
	row := p.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, userID)
	return scanProfile(row, userID)
}

func (p *profiles) Update(ctx context.Context, userID string, upd *model.ProfileUpdate) (*model.Profile, error) {
	if userID == "" {
		return nil, model.NewValidationError("id", "user id is required")
	}
	if err := model.ValidateProfileUpdate(upd); err != nil {
		return nil, err
	}
	row := p.db.QueryRowContext(ctx, `
        INSERT INTO profiles (id, full_name, diagnosis_age, diagnosis_type)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (id) DO UPDATE SET
            full_name = EXCLUDED.full_name,
            diagnosis_age = EXCLUDED.diagnosis_age,
            diagnosis_type = EXCLUDED.diagnosis_type,
            updated_at = GREATEST(profiles.updated_at, clock_timestamp())
        RETURNING `+profileColumns, userID, upd.FullName, upd.DiagnosisAge, upd.DiagnosisType)
	return scanProfile(row, userID)
}

func scanProfile(row *sql.Row, userID string) (*model.Profile, error) {
	var (
		out        model.Profile
		name, kind sql.NullString
		age        sql.NullInt32
	)
	if err := row.Scan(&out.ID, &name, &age, &kind, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, notFound(err, "profile", userID)
	}
	if name.Valid {
		out.FullName = &name.String
	}
	if age.Valid {
		n := int(age.Int32)
		out.DiagnosisAge = &n
	}
	if kind.Valid {
		out.DiagnosisType = &kind.String
	}
	return &out, nil
}

// helpers
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

func nullIfEmpty(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
