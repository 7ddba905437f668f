package repository_test

import (
	"context"
	"testing"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSequenceRepository_Next(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	company := testutil.CreateTestCompany(t, db, "alpha")
	ctx := context.Background()

	t.Run("starts at one and increments", func(t *testing.T) {
		for want := int64(1); want <= 5; want++ {
			n, err := repo.Next(ctx, company.ID, domain.SequenceKindInvoice)
			require.NoError(t, err)
			assert.Equal(t, want, n)
		}
	})

	t.Run("kinds are independent", func(t *testing.T) {
		n, err := repo.Next(ctx, company.ID, domain.SequenceKindQuote)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("companies are independent", func(t *testing.T) {
		other := testutil.CreateTestCompany(t, db, "beta")
		n, err := repo.Next(ctx, other.ID, domain.SequenceKindInvoice)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
