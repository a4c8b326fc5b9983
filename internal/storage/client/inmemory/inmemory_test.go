package inmemory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Akashc1512/SarvanOM-sub006/internal/models"
)

func TestSetGetDelete(t *testing.T) {
	s := NewStorage(zap.NewNop())
	c := &models.Client{ID: "conn-1", UserID: "alice"}

	require.NoError(t, s.Set(c.ID, c))
	got, err := s.Get("conn-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)

	require.NoError(t, s.Delete("conn-1"))
	_, err = s.Get("conn-1")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestGetWhere(t *testing.T) {
	s := NewStorage(zap.NewNop())
	require.NoError(t, s.Set("conn-1", &models.Client{ID: "conn-1", UserID: "alice"}))
	require.NoError(t, s.Set("conn-2", &models.Client{ID: "conn-2", UserID: "bob"}))

	got, err := s.GetWhere(func(c *models.Client) bool { return c.UserID == "bob" })
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "conn-2", got.ID)

	missing, err := s.GetWhere(func(c *models.Client) bool { return c.UserID == "carol" })
	require.NoError(t, err)
	assert.Nil(t, missing)
}
