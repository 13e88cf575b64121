package history

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Adrien7782/BankVocabulary/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id int) models.SessionResult {
	return models.SessionResult{
		ID:        id,
		CreatedAt: time.Now(),
		Size:      2,
		Score:     1,
	}
}

func TestLedger_Insert(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	for i := 1; i <= 3; i++ {
		ledger.Insert(result(i))
	}

	require.Equal(t, 3, ledger.Len())

	newest, ok := ledger.Entry(0)
	require.True(t, ok)
	assert.Equal(t, 3, newest.ID)

	oldest, ok := ledger.Entry(2)
	require.True(t, ok)
	assert.Equal(t, 1, oldest.ID)
}

func TestLedger_InsertEvictsOldestBeyondCapacity(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	for i := 1; i <= Capacity+2; i++ {
		ledger.Insert(result(i))
	}

	require.Equal(t, Capacity, ledger.Len())

	entries := ledger.Entries()
	assert.Equal(t, Capacity+2, entries[0].ID)
	assert.Equal(t, 3, entries[Capacity-1].ID)
	assert.Equal(t, Capacity+3, ledger.NextID())
}

func TestLedger_NextID(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	assert.Equal(t, 1, ledger.NextID())

	ledger.Insert(result(10))
	assert.Equal(t, 11, ledger.NextID())

	// a lower id never winds the counter back
	ledger.Insert(result(3))
	assert.Equal(t, 11, ledger.NextID())
}

func TestLedger_Restore(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name       string
		entries    []models.SessionResult
		wantLen    int
		wantNextID int
	}{
		{
			name:       "empty restore resets counter",
			entries:    nil,
			wantLen:    0,
			wantNextID: 1,
		},
		{
			name:       "counter continues past largest restored id",
			entries:    []models.SessionResult{result(9), result(4)},
			wantLen:    2,
			wantNextID: 10,
		},
		{
			name: "oversized payload truncated to capacity",
			entries: []models.SessionResult{
				result(6), result(5), result(4), result(3), result(2), result(1),
			},
			wantLen:    Capacity,
			wantNextID: 7,
		},
	}

	for _, testCase := range testTable {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ledger := NewLedger()
			ledger.Insert(result(99))
			ledger.Restore(testCase.entries)

			assert.Equal(t, testCase.wantLen, ledger.Len())
			assert.Equal(t, testCase.wantNextID, ledger.NextID())
		})
	}
}

func TestLedger_Clear(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.Insert(result(1))
	ledger.Insert(result(2))

	ledger.Clear()

	assert.Equal(t, 0, ledger.Len())
	assert.Equal(t, 1, ledger.NextID())
}

func TestLedger_Entry_OutOfRange(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.Insert(result(1))

	_, ok := ledger.Entry(-1)
	assert.False(t, ok)

	_, ok = ledger.Entry(1)
	assert.False(t, ok)
}

func TestLedger_Watch(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()

	notified := 0
	cancel := ledger.Watch(func() { notified++ })

	ledger.Insert(result(1))
	assert.Equal(t, 1, notified)

	// restoring persisted state must not echo back into persistence
	ledger.Restore([]models.SessionResult{result(2)})
	assert.Equal(t, 1, notified)

	ledger.Clear()
	assert.Equal(t, 2, notified)

	cancel()
	ledger.Insert(result(3))
	assert.Equal(t, 2, notified)
}

func TestLedger_MarshalState(t *testing.T) {
	t.Parallel()

	ledger := NewLedger()
	ledger.Insert(result(5))

	data, err := ledger.MarshalState()
	require.NoError(t, err)

	var entries []models.SessionResult
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].ID)
}
