package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-med-robot/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApply_OpensSealedBox(t *testing.T) {
	s := Stock{ActivePack: dec("2"), SealedBoxes: 1, PackCapacity: 30}

	r := Apply(s, dec("3"))
	require.False(t, r.Short())
	require.Equal(t, 1, r.PacksOpened)
	require.Equal(t, 0, r.Stock.SealedBoxes)
	require.True(t, r.Stock.ActivePack.Equal(dec("29")), r.Stock.ActivePack.String())
}

func TestApply_ShortageLeavesStockUntouched(t *testing.T) {
	s := Stock{ActivePack: dec("2"), SealedBoxes: 1, PackCapacity: 30}

	r := Apply(s, dec("40"))
	require.True(t, r.Short())
	require.True(t, r.Shortage.Equal(dec("40")))
	require.Zero(t, r.PacksOpened)
	require.True(t, r.Stock.Equal(s))
}

func TestApply_ExactlyEmptiesPackOpensNext(t *testing.T) {
	s := Stock{ActivePack: dec("3"), SealedBoxes: 2, PackCapacity: 10}

	r := Apply(s, dec("3"))
	require.Equal(t, 1, r.PacksOpened)
	require.Equal(t, 1, r.Stock.SealedBoxes)
	require.True(t, r.Stock.ActivePack.Equal(dec("10")))
}

func TestApply_ExactTotalEndsAtZero(t *testing.T) {
	s := Stock{ActivePack: dec("2"), SealedBoxes: 1, PackCapacity: 10}

	r := Apply(s, dec("12"))
	require.False(t, r.Short())
	require.Equal(t, 1, r.PacksOpened)
	require.Zero(t, r.Stock.SealedBoxes)
	require.True(t, r.Stock.ActivePack.IsZero())
}

func TestApply_OpensSeveralBoxes(t *testing.T) {
	s := Stock{ActivePack: dec("1"), SealedBoxes: 3, PackCapacity: 5}

	r := Apply(s, dec("12"))
	require.Equal(t, 3, r.PacksOpened)
	require.Zero(t, r.Stock.SealedBoxes)
	require.True(t, r.Stock.ActivePack.Equal(dec("4")))
}

func TestApply_NonPositiveRequiredIsNoop(t *testing.T) {
	s := Stock{ActivePack: dec("2"), SealedBoxes: 1, PackCapacity: 30}
	for _, req := range []string{"0", "-1"} {
		r := Apply(s, dec(req))
		require.True(t, r.Stock.Equal(s))
		require.False(t, r.Short())
	}
}

func TestApply_FractionalDosesDoNotDrift(t *testing.T) {
	s := Stock{ActivePack: dec("1"), SealedBoxes: 0, PackCapacity: 30}
	for i := 0; i < 10; i++ {
		r := Apply(s, dec("0.1"))
		require.False(t, r.Short())
		s = r.Stock
	}
	require.True(t, s.ActivePack.IsZero(), s.ActivePack.String())
	require.True(t, Apply(s, dec("0.1")).Short())
}

func TestApply_ConservesTotalAndStaysNonNegative(t *testing.T) {
	stocks := []Stock{
		{ActivePack: dec("0"), SealedBoxes: 4, PackCapacity: 7},
		{ActivePack: dec("6.5"), SealedBoxes: 2, PackCapacity: 10},
		{ActivePack: dec("30"), SealedBoxes: 0, PackCapacity: 30},
	}
	for _, s := range stocks {
		for _, req := range []string{"0.5", "1", "2", "7", "13.5", "29"} {
			required := dec(req)
			r := Apply(s, required)
			require.False(t, r.Stock.ActivePack.IsNegative())
			require.GreaterOrEqual(t, r.Stock.SealedBoxes, 0)
			if r.Short() {
				require.True(t, r.Stock.Equal(s))
				continue
			}
			require.True(t, s.Total().Sub(required).Equal(r.Stock.Total()),
				"stock %+v req %s", s, req)
		}
	}
}

func TestReturn(t *testing.T) {
	s := Stock{ActivePack: dec("28"), SealedBoxes: 1, PackCapacity: 30}

	s, err := Return(s, dec("1"))
	require.NoError(t, err)
	require.True(t, s.ActivePack.Equal(dec("29")))

	s, err = Return(s, dec("1"))
	require.NoError(t, err)
	require.True(t, s.ActivePack.Equal(dec("30")))

	_, err = Return(s, dec("1"))
	require.ErrorIs(t, err, ErrPackFull)
}

func TestStockOf(t *testing.T) {
	m := &domain.Medication{ActivePackRemaining: dec("4"), SealedBoxCount: 2, PackCapacity: 10}
	s := StockOf(m)
	require.True(t, s.Total().Equal(m.TotalUnits()))
	require.True(t, s.Total().Equal(dec("24")))
}

func TestLevelOf(t *testing.T) {
	require.Equal(t, LevelOK, LevelOf(Stock{ActivePack: dec("1"), SealedBoxes: 1, PackCapacity: 10}, 5))
	require.Equal(t, LevelAttention, LevelOf(Stock{ActivePack: dec("5"), PackCapacity: 10}, 5))
	require.Equal(t, LevelCritical, LevelOf(Stock{ActivePack: dec("4.5"), PackCapacity: 10}, 5))
}
