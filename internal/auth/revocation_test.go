package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sitecms/sitecms/internal/cache"
)

func TestRevocationsRevokeUntilExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	revocations := NewRevocations(cache.NewRedisStoreFromClient(client))
	realm := newTestRealm(t, RealmUser, "user-secret", time.Now)

	session, err := realm.Issue(Identity{SubjectID: "user-1"})
	require.NoError(t, err)
	claims, err := realm.Validate(session.Token)
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)

	ctx := context.Background()
	revoked, err := revocations.IsRevoked(ctx, claims)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, revocations.Revoke(ctx, claims))
	revoked, err = revocations.IsRevoked(ctx, claims)
	require.NoError(t, err)
	require.True(t, revoked)

	other, err := realm.Issue(Identity{SubjectID: "user-1"})
	require.NoError(t, err)
	otherClaims, err := realm.Validate(other.Token)
	require.NoError(t, err)
	revoked, err = revocations.IsRevoked(ctx, otherClaims)
	require.NoError(t, err)
	require.False(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = revocations.IsRevoked(ctx, claims)
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestNilRevocationsTreatTokensAsLive(t *testing.T) {
	var revocations *Revocations
	require.Nil(t, NewRevocations(nil))

	revoked, err := revocations.IsRevoked(context.Background(), &Claims{})
	require.NoError(t, err)
	require.False(t, revoked)
	require.NoError(t, revocations.Revoke(context.Background(), &Claims{}))
}
