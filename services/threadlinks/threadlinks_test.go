package threadlinks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadlink/core"
	"threadlink/db"
	"threadlink/services/threadlinks"
	"threadlink/testutils"
)

func TestThreadLinksService(t *testing.T) {
	dbConn, schema := testutils.SetupTestDB(t)

	repo := db.NewPostgresThreadLinksRepository(dbConn, schema)
	service := threadlinks.NewThreadLinksService(repo)

	// Unique thread per test run to avoid collisions with leftover rows
	channelID := "C" + core.NewID("test")
	threadTS := "1000.000100"

	cleanup := func(ticketKey string) {
		_, _ = service.DeleteThreadLink(context.Background(), channelID, threadTS, ticketKey)
	}

	t.Run("upsert creates and get finds it", func(t *testing.T) {
		defer cleanup("PROJ-1")

		link, err := service.UpsertThreadLink(context.Background(), channelID, threadTS, "PROJ-1", "10001")
		require.NoError(t, err)
		assert.NotEmpty(t, link.ID)
		assert.Equal(t, "PROJ-1", link.TicketKey)
		assert.Equal(t, "10001", link.RemoteLinkID)

		maybeLink, err := service.GetThreadLink(context.Background(), channelID, threadTS, "PROJ-1")
		require.NoError(t, err)
		require.True(t, maybeLink.IsPresent())
		assert.Equal(t, link.ID, maybeLink.MustGet().ID)
	})

	t.Run("upsert on the same pair refreshes instead of duplicating", func(t *testing.T) {
		defer cleanup("PROJ-2")

		first, err := service.UpsertThreadLink(context.Background(), channelID, threadTS, "PROJ-2", "10001")
		require.NoError(t, err)

		second, err := service.UpsertThreadLink(context.Background(), channelID, threadTS, "PROJ-2", "10002")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "10002", second.RemoteLinkID)

		links, err := service.ListThreadLinksByThread(context.Background(), channelID, threadTS)
		require.NoError(t, err)
		assert.Len(t, links, 1)
	})

	t.Run("one thread links to many tickets", func(t *testing.T) {
		defer cleanup("PROJ-3")
		defer cleanup("PROJ-4")

		_, err := service.UpsertThreadLink(context.Background(), channelID, threadTS, "PROJ-3", "10003")
		require.NoError(t, err)
		_, err = service.UpsertThreadLink(context.Background(), channelID, threadTS, "PROJ-4", "10004")
		require.NoError(t, err)

		links, err := service.ListThreadLinksByThread(context.Background(), channelID, threadTS)
		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, "PROJ-3", links[0].TicketKey)
		assert.Equal(t, "PROJ-4", links[1].TicketKey)
	})

	t.Run("delete removes exactly the addressed pair", func(t *testing.T) {
		defer cleanup("PROJ-6")

		_, err := service.UpsertThreadLink(context.Background(), channelID, threadTS, "PROJ-5", "10005")
		require.NoError(t, err)
		_, err = service.UpsertThreadLink(context.Background(), channelID, threadTS, "PROJ-6", "10006")
		require.NoError(t, err)

		deleted, err := service.DeleteThreadLink(context.Background(), channelID, threadTS, "PROJ-5")
		require.NoError(t, err)
		assert.True(t, deleted)

		maybeLink, err := service.GetThreadLink(context.Background(), channelID, threadTS, "PROJ-5")
		require.NoError(t, err)
		assert.False(t, maybeLink.IsPresent())

		maybeOther, err := service.GetThreadLink(context.Background(), channelID, threadTS, "PROJ-6")
		require.NoError(t, err)
		assert.True(t, maybeOther.IsPresent())
	})

	t.Run("deleting a missing pair reports false", func(t *testing.T) {
		deleted, err := service.DeleteThreadLink(context.Background(), channelID, threadTS, "PROJ-404")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("validation rejects empty identifiers", func(t *testing.T) {
		_, err := service.UpsertThreadLink(context.Background(), "", threadTS, "PROJ-1", "10001")
		assert.Error(t, err)

		_, err = service.UpsertThreadLink(context.Background(), channelID, "", "PROJ-1", "10001")
		assert.Error(t, err)

		_, err = service.UpsertThreadLink(context.Background(), channelID, threadTS, "", "10001")
		assert.Error(t, err)
	})
}
