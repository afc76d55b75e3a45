package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBaseModelBeforeCreateGeneratesID(t *testing.T) {
	var base BaseModel
	require.NoError(t, base.BeforeCreate(nil))
	require.NotEmpty(t, base.ID)

	existing := BaseModel{ID: "fixed"}
	require.NoError(t, existing.BeforeCreate(nil))
	require.Equal(t, "fixed", existing.ID)
}

func TestOneTimeCodeExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	code := OneTimeCode{ExpiresAt: now.Add(5 * time.Minute)}

	require.False(t, code.Expired(now))
	require.False(t, code.Expired(now.Add(5*time.Minute)))
	require.True(t, code.Expired(now.Add(5*time.Minute+time.Second)))
}

func TestOrderedModelsSetOrder(t *testing.T) {
	course := &Course{}
	course.SetOrder(3)
	require.Equal(t, 3, course.Order)

	offering := &Offering{}
	offering.SetOrder(7)
	require.Equal(t, 7, offering.Order)
	require.Equal(t, "services", offering.TableName())
}
