package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"nebulines/models"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetRepository_PoolSummary(t *testing.T) {
	ctx := context.Background()
	eventID := uuid.New()

	t.Run("sums both sides", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := newBetRepositoryWithTx(mock)

		mock.ExpectQuery(regexp.QuoteMeta("FILTER (WHERE prediction)")).
			WithArgs(eventID).
			WillReturnRows(pgxmock.NewRows([]string{"total_true", "total_false", "count"}).
				AddRow(int64(300), int64(100), int64(3)))

		pool, count, err := repo.PoolSummary(ctx, eventID)

		require.NoError(t, err)
		assert.Equal(t, models.Pool{TotalTrue: 300, TotalFalse: 100}, pool)
		assert.Equal(t, 3, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := newBetRepositoryWithTx(mock)

		boom := errors.New("connection reset")
		mock.ExpectQuery(regexp.QuoteMeta("FROM bets")).
			WithArgs(eventID).
			WillReturnError(boom)

		_, _, err = repo.PoolSummary(ctx, eventID)

		assert.ErrorIs(t, err, boom)
	})
}
