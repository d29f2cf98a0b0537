package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sequenceRow struct {
	ID   uint
	Code string
}

func sequenceDB(t *testing.T, codes ...string) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	require.NoError(t, db.AutoMigrate(&sequenceRow{}))
	for _, code := range codes {
		require.NoError(t, db.Create(&sequenceRow{Code: code}).Error)
	}
	return db
}

func TestNextSequence(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name  string
		codes []string
		want  int
	}{
		{"first of prefix", []string{"TD-IRN-20260110-004"}, 1},
		{"padded", []string{"CM-IRN-20260110-001", "CM-IRN-20260110-002"}, 3},
		{"past the padding", []string{"CM-IRN-20260110-998", "CM-IRN-20260110-999", "CM-IRN-20260110-1000"}, 1001},
		{"other prefixes ignored", []string{"CM-IRN-20260110-007", "CM-IRN-20260111-090"}, 8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db := sequenceDB(t, tc.codes...)
			n, err := nextSequence(ctx, db, &sequenceRow{}, "code", "CM-IRN-20260110-")
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}

	t.Run("non-numeric suffix", func(t *testing.T) {
		db := sequenceDB(t, "CM-IRN-20260110-003", "CM-IRN-20260110-ABCD")
		_, err := nextSequence(ctx, db, &sequenceRow{}, "code", "CM-IRN-20260110-")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CM-IRN-20260110-ABCD")
	})
}
