package publib

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

// Store persists publications and assets in a SQLite database.
// All timestamps are stored as unix nanoseconds; zero means unset.
type Store struct {
	db *sql.DB
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS publications (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	content      TEXT NOT NULL,
	platforms    TEXT NOT NULL,
	kinds        TEXT NOT NULL,
	status       TEXT NOT NULL,
	scheduled_at INTEGER NOT NULL DEFAULT 0,
	published_at INTEGER NOT NULL DEFAULT 0,
	cron_expr    TEXT NOT NULL DEFAULT '',
	remote_ids   TEXT NOT NULL DEFAULT '{}',
	error        TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_publications_status ON publications(status);
CREATE INDEX IF NOT EXISTS idx_publications_scheduled ON publications(scheduled_at);

CREATE TABLE IF NOT EXISTS assets (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	type       TEXT NOT NULL,
	status     TEXT NOT NULL,
	urls       TEXT NOT NULL,
	tags       TEXT NOT NULL DEFAULT '[]',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// OpenStore opens (and migrates) the SQLite database at path.
// Use ":memory:" for an ephemeral store in tests.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// table-lock errors under concurrent handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SavePublication inserts or replaces the publication row.
func (s *Store) SavePublication(ctx context.Context, p *Publication) error {
	content, err := marshalJSON(p.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	platforms, err := marshalJSON(p.Platforms)
	if err != nil {
		return fmt.Errorf("encode platforms: %w", err)
	}
	kinds, err := marshalJSON(p.Kinds)
	if err != nil {
		return fmt.Errorf("encode kinds: %w", err)
	}
	remoteIds, err := marshalJSON(p.RemoteIds)
	if err != nil {
		return fmt.Errorf("encode remote ids: %w", err)
	}
	query, args, err := sq.Replace("publications").
		Columns("id", "user_id", "content", "platforms", "kinds", "status",
			"scheduled_at", "published_at", "cron_expr", "remote_ids", "error",
			"created_at", "updated_at").
		Values(p.Id, p.UserId, content, platforms, kinds, string(p.Status),
			nanos(p.ScheduledAt), nanos(p.PublishedAt), p.CronExpr, remoteIds, p.Error,
			nanos(p.CreatedAt), nanos(p.UpdatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save publication: %w", err)
	}
	return nil
}

func scanPublication(row sq.RowScanner) (*Publication, error) {
	var (
		p                                    Publication
		content, platforms, kinds, remoteIds string
		status                               string
		scheduledAt, publishedAt             int64
		createdAt, updatedAt                 int64
	)
	err := row.Scan(&p.Id, &p.UserId, &content, &platforms, &kinds, &status,
		&scheduledAt, &publishedAt, &p.CronExpr, &remoteIds, &p.Error,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(content), &p.Content); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := json.Unmarshal([]byte(platforms), &p.Platforms); err != nil {
		return nil, fmt.Errorf("decode platforms: %w", err)
	}
	if err := json.Unmarshal([]byte(kinds), &p.Kinds); err != nil {
		return nil, fmt.Errorf("decode kinds: %w", err)
	}
	if err := json.Unmarshal([]byte(remoteIds), &p.RemoteIds); err != nil {
		return nil, fmt.Errorf("decode remote ids: %w", err)
	}
	p.Status = Status(status)
	p.ScheduledAt = fromNanos(scheduledAt)
	p.PublishedAt = fromNanos(publishedAt)
	p.CreatedAt = fromNanos(createdAt)
	p.UpdatedAt = fromNanos(updatedAt)
	return &p, nil
}

var publicationColumns = []string{
	"id", "user_id", "content", "platforms", "kinds", "status",
	"scheduled_at", "published_at", "cron_expr", "remote_ids", "error",
	"created_at", "updated_at",
}

// GetPublication returns the publication with the given id, or
// ErrPublicationNotFound.
func (s *Store) GetPublication(ctx context.Context, id string) (*Publication, error) {
	query, args, err := sq.Select(publicationColumns...).
		From("publications").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get: %w", err)
	}
	p, err := scanPublication(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPublicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get publication: %w", err)
	}
	return p, nil
}

// DeletePublication removes the publication row. Missing ids return
// ErrPublicationNotFound.
func (s *Store) DeletePublication(ctx context.Context, id string) error {
	query, args, err := sq.Delete("publications").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete publication: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPublicationNotFound
	}
	return nil
}

// ListQuery narrows ListPublications results. Zero fields are ignored.
type ListQuery struct {
	// From and To bound the calendar anchor (scheduled_at when set,
	// created_at otherwise): anchor in [From, To).
	From, To time.Time
	// Statuses keeps only publications in the given states.
	Statuses []Status
	// Platform keeps only publications targeting the platform.
	Platform Platform
	// UserId keeps only publications owned by the user.
	UserId string
}

// ListPublications returns publications matching the query, unordered.
// Callers apply display ordering (see SortForCalendar).
func (s *Store) ListPublications(ctx context.Context, q ListQuery) ([]*Publication, error) {
	b := sq.Select(publicationColumns...).From("publications")
	if !q.From.IsZero() || !q.To.IsZero() {
		anchor := "CASE WHEN scheduled_at > 0 THEN scheduled_at ELSE created_at END"
		if !q.From.IsZero() {
			b = b.Where(sq.GtOrEq{anchor: nanos(q.From)})
		}
		if !q.To.IsZero() {
			b = b.Where(sq.Lt{anchor: nanos(q.To)})
		}
	}
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, st := range q.Statuses {
			statuses[i] = string(st)
		}
		b = b.Where(sq.Eq{"status": statuses})
	}
	if q.Platform != "" {
		// platforms is a JSON array of quoted strings
		b = b.Where(sq.Like{"platforms": `%"` + string(q.Platform) + `"%`})
	}
	if q.UserId != "" {
		b = b.Where(sq.Eq{"user_id": q.UserId})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list publications: %w", err)
	}
	defer rows.Close()
	var pubs []*Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan publication: %w", err)
		}
		pubs = append(pubs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	return pubs, nil
}

// SaveAsset inserts or replaces the asset row.
func (s *Store) SaveAsset(ctx context.Context, a *Asset) error {
	urls, err := marshalJSON(a.URLs)
	if err != nil {
		return fmt.Errorf("encode urls: %w", err)
	}
	tags, err := marshalJSON(a.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	query, args, err := sq.Replace("assets").
		Columns("id", "user_id", "type", "status", "urls", "tags", "created_at", "updated_at").
		Values(a.Id, a.UserId, string(a.Type), string(a.Status), urls, tags,
			nanos(a.CreatedAt), nanos(a.UpdatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save asset: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save asset: %w", err)
	}
	return nil
}

// GetAsset returns the asset with the given id, or ErrAssetNotFound.
func (s *Store) GetAsset(ctx context.Context, id string) (*Asset, error) {
	query, args, err := sq.Select("id", "user_id", "type", "status", "urls", "tags",
		"created_at", "updated_at").
		From("assets").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get asset: %w", err)
	}
	var (
		a                    Asset
		typ, status          string
		urls, tags           string
		createdAt, updatedAt int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&a.Id, &a.UserId, &typ, &status, &urls, &tags, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	if err := json.Unmarshal([]byte(urls), &a.URLs); err != nil {
		return nil, fmt.Errorf("decode urls: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	a.Type = AssetType(typ)
	a.Status = AssetStatus(status)
	a.CreatedAt = fromNanos(createdAt)
	a.UpdatedAt = fromNanos(updatedAt)
	return &a, nil
}
