package interest

import (
	"context"
	"testing"

	"buddies_chat_server/internal/dao/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedInterestsIdempotent(t *testing.T) {
	st := memory.NewStore()
	svc := NewInterestService(st)
	ctx := context.Background()

	require.NoError(t, svc.SeedInterests(ctx, []string{"篮球", "音乐"}))
	first, err := svc.ListInterests(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// 重复播种只补缺失的名称，已有标签保持原 uuid
	require.NoError(t, svc.SeedInterests(ctx, []string{"篮球", "音乐", "摄影"}))
	second, err := svc.ListInterests(ctx)
	require.NoError(t, err)
	require.Len(t, second, 3)

	uuids := make(map[string]string, len(second))
	for _, it := range second {
		uuids[it.Name] = it.Uuid
	}
	for _, it := range first {
		assert.Equal(t, it.Uuid, uuids[it.Name])
	}
}
