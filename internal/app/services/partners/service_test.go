package partners

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/partner"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage/memory"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

func TestPartnerLifecycle(t *testing.T) {
	svc := New(memory.New(), logger.Nop())
	ctx := context.Background()

	_, err := svc.Create(ctx, partner.Partner{Name: "  "})
	require.Error(t, err, "blank name must be rejected")

	created, err := svc.Create(ctx, partner.Partner{
		Name:    "Maroc PME",
		Website: "https://marocpme.gov.ma",
		Image:   "/uploads/marocpme.png",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	created.Website = "https://www.marocpme.gov.ma"
	updated, err := svc.Update(ctx, created)
	require.NoError(t, err)
	require.Equal(t, "https://www.marocpme.gov.ma", updated.Website)

	updated.Name = ""
	_, err = svc.Update(ctx, updated)
	require.Error(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, memory.ErrNotFound)

	require.Error(t, svc.Delete(ctx, created.ID))
}
