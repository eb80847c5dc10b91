package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/mo"

	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	"threadlink/models"
)

// DatabaseThreadLink represents the raw database record for a thread-to-ticket link
type DatabaseThreadLink struct {
	ID           string    `json:"id"             db:"id"`
	ChannelID    string    `json:"channel_id"     db:"channel_id"`
	ThreadTS     string    `json:"thread_ts"      db:"thread_ts"`
	TicketKey    string    `json:"ticket_key"     db:"ticket_key"`
	RemoteLinkID string    `json:"remote_link_id" db:"remote_link_id"`
	CreatedAt    time.Time `json:"created_at"     db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"     db:"updated_at"`
}

// ToThreadLink converts a DatabaseThreadLink to the domain model
func (db *DatabaseThreadLink) ToThreadLink() *models.ThreadLink {
	return &models.ThreadLink{
		ID:           db.ID,
		ChannelID:    db.ChannelID,
		ThreadTS:     db.ThreadTS,
		TicketKey:    db.TicketKey,
		RemoteLinkID: db.RemoteLinkID,
		CreatedAt:    db.CreatedAt,
		UpdatedAt:    db.UpdatedAt,
	}
}

type PostgresThreadLinksRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for thread_links table
var threadLinksColumns = []string{
	"id",
	"channel_id",
	"thread_ts",
	"ticket_key",
	"remote_link_id",
	"created_at",
	"updated_at",
}

func NewPostgresThreadLinksRepository(db *sqlx.DB, schema string) *PostgresThreadLinksRepository {
	return &PostgresThreadLinksRepository{db: db, schema: schema}
}

// UpsertThreadLink inserts the link or, when the compound key
// (channel_id, thread_ts, ticket_key) already exists, refreshes its remote
// link ID. Uniqueness lives in the store so that redelivered register
// commands cannot create duplicate records.
func (r *PostgresThreadLinksRepository) UpsertThreadLink(
	ctx context.Context,
	link *DatabaseThreadLink,
) error {
	columnsStr := strings.Join(threadLinksColumns, ", ")
	returningStr := strings.Join(threadLinksColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.thread_links (%s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (channel_id, thread_ts, ticket_key)
		DO UPDATE SET
			remote_link_id = EXCLUDED.remote_link_id,
			updated_at = NOW()
		RETURNING %s`, r.schema, columnsStr, returningStr)

	err := r.db.QueryRowxContext(ctx, query,
		link.ID,
		link.ChannelID,
		link.ThreadTS,
		link.TicketKey,
		link.RemoteLinkID).
		StructScan(link)
	if err != nil {
		return fmt.Errorf("failed to upsert thread link: %w", err)
	}

	return nil
}

func (r *PostgresThreadLinksRepository) GetThreadLink(
	ctx context.Context,
	channelID, threadTS, ticketKey string,
) (mo.Option[*DatabaseThreadLink], error) {
	columnsStr := strings.Join(threadLinksColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.thread_links
		WHERE channel_id = $1 AND thread_ts = $2 AND ticket_key = $3`,
		columnsStr, r.schema)

	link := &DatabaseThreadLink{}
	err := r.db.GetContext(ctx, link, query, channelID, threadTS, ticketKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return mo.None[*DatabaseThreadLink](), nil
		}
		return mo.None[*DatabaseThreadLink](), fmt.Errorf("failed to get thread link: %w", err)
	}

	return mo.Some(link), nil
}

// DeleteThreadLink removes the link and reports whether a record existed
func (r *PostgresThreadLinksRepository) DeleteThreadLink(
	ctx context.Context,
	channelID, threadTS, ticketKey string,
) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s.thread_links
		WHERE channel_id = $1 AND thread_ts = $2 AND ticket_key = $3`, r.schema)

	result, err := r.db.ExecContext(ctx, query, channelID, threadTS, ticketKey)
	if err != nil {
		return false, fmt.Errorf("failed to delete thread link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ListThreadLinksByThread returns all ticket links for one conversation thread
func (r *PostgresThreadLinksRepository) ListThreadLinksByThread(
	ctx context.Context,
	channelID, threadTS string,
) ([]*DatabaseThreadLink, error) {
	columnsStr := strings.Join(threadLinksColumns, ", ")
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.thread_links
		WHERE channel_id = $1 AND thread_ts = $2
		ORDER BY created_at ASC`,
		columnsStr, r.schema)

	var links []*DatabaseThreadLink
	if err := r.db.SelectContext(ctx, &links, query, channelID, threadTS); err != nil {
		return nil, fmt.Errorf("failed to list thread links: %w", err)
	}

	return links, nil
}
