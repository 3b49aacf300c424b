package infra_session_cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playwrist/core/internal/model"
)

func newTestDriver(t *testing.T) (*Driver, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, "session_cache"), mr
}

func TestSessionRoundtrip(t *testing.T) {
	t.Parallel()

	driver, _ := newTestDriver(t)
	user := model.User{ID: uuid.New(), Name: "nadia"}
	token := uuid.NewString()

	require.NoError(t, driver.SaveSession(token, user, time.Hour))

	got, ok, err := driver.SessionByToken(token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestSessionUnknownToken(t *testing.T) {
	t.Parallel()

	driver, _ := newTestDriver(t)

	_, ok, err := driver.SessionByToken("not-a-token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionExpiry(t *testing.T) {
	t.Parallel()

	driver, mr := newTestDriver(t)
	user := model.User{ID: uuid.New(), Name: "petr"}
	token := uuid.NewString()

	require.NoError(t, driver.SaveSession(token, user, time.Minute))

	mr.FastForward(2 * time.Minute)

	_, ok, err := driver.SessionByToken(token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionKeyPrefix(t *testing.T) {
	t.Parallel()

	driver, mr := newTestDriver(t)
	user := model.User{ID: uuid.New(), Name: "sam"}

	require.NoError(t, driver.SaveSession("abc", user, time.Hour))

	assert.True(t, mr.Exists("session_cache:abc"))
}
