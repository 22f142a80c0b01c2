package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshimastsensei/log-momentum/internal/models"
	"github.com/roshimastsensei/log-momentum/internal/repository"
	"github.com/roshimastsensei/log-momentum/internal/testutil"
)

func TestMomentumRepo(t *testing.T) {
	pool := testutil.SetupPool(t)
	repo := repository.NewMomentumRepo(pool)
	ctx := context.Background()

	token := fmt.Sprintf("test-coin-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM momentum_history WHERE token_id = $1`, token)
	})

	latest, err := repo.GetLatest(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, latest, "no rows yet")

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		m, err := repo.Record(ctx, &models.MomentumRecord{
			TokenID:     token,
			PriceNow:    200,
			PriceMinus3: 10,
			PriceMinus7: 5,
			AccelLog:    float64(i),
			ComputedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		assert.NotZero(t, m.ID)
		assert.False(t, m.CreatedAt.IsZero())
	}

	history, err := repo.GetHistory(ctx, token, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2.0, history[0].AccelLog, "newest first")
	assert.Equal(t, 1.0, history[1].AccelLog)

	latest, err = repo.GetLatest(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.ComputedAt.Equal(base.Add(2*time.Minute)))

	require.NoError(t, repo.Ping(ctx))
}
