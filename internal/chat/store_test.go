package chat

import (
	"math"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func fillLog(n int) *Log {
	l := NewLog()
	for i := 0; i < n; i++ {
		l.Append(Message{Sender: "alice", Text: "m", CreatedAt: time.Unix(int64(i), 0), Room: "general"})
	}
	return l
}

func indices(records []Record) []int {
	return lo.Map(records, func(r Record, _ int) int { return r.Index })
}

func TestLog_AppendReturnsSequentialIndices(t *testing.T) {
	req := require.New(t)
	l := NewLog()
	for i := 0; i < 5; i++ {
		req.Equal(i, l.Append(Message{Text: "x"}))
	}
	req.Equal(5, l.Len())
}

func TestLog_Recent(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		count    int
		expected []int
	}{
		{name: "Empty log", length: 0, count: 15, expected: []int{}},
		{name: "Shorter than window", length: 3, count: 15, expected: []int{0, 1, 2}},
		{name: "Exact window", length: 4, count: 4, expected: []int{0, 1, 2, 3}},
		{name: "Longer than window", length: 20, count: 3, expected: []int{17, 18, 19}},
		{name: "Zero count", length: 5, count: 0, expected: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fillLog(tt.length).Recent(tt.count)
			require.Equal(t, tt.expected, indices(got))
		})
	}
}

func TestLog_Page(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		page     int
		size     int
		expected []int
	}{
		{name: "Page 0 is the newest window", length: 40, page: 0, size: 15, expected: lo.RangeFrom(25, 15)},
		{name: "Page 1 precedes page 0", length: 40, page: 1, size: 15, expected: lo.RangeFrom(10, 15)},
		{name: "Last page is partial", length: 40, page: 2, size: 15, expected: lo.RangeFrom(0, 10)},
		{name: "Past the beginning", length: 40, page: 3, size: 15, expected: []int{}},
		{name: "Empty log", length: 0, page: 0, size: 15, expected: []int{}},
		{name: "Negative page", length: 10, page: -1, size: 15, expected: []int{}},
		{name: "Zero size", length: 10, page: 0, size: 0, expected: []int{}},
		{name: "Page far past the beginning", length: 20, page: 1229782938247303441, size: 15, expected: []int{}},
		{name: "Largest page number", length: 20, page: math.MaxInt, size: 15, expected: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fillLog(tt.length).Page(tt.page, tt.size)
			require.LessOrEqual(t, len(got), max(tt.size, 0))
			require.Equal(t, tt.expected, indices(got))
		})
	}
}

func TestLog_PageZeroMatchesRecent(t *testing.T) {
	for _, n := range []int{0, 1, 14, 15, 16, 100} {
		l := fillLog(n)
		require.Equal(t, l.Recent(15), l.Page(0, 15), "length %d", n)
	}
}

func TestLog_PageOffsetsFollowGrowth(t *testing.T) {
	req := require.New(t)
	l := fillLog(30)
	req.Equal(lo.RangeFrom(0, 15), indices(l.Page(1, 15)))

	l.Append(Message{Text: "late"})
	req.Equal(lo.RangeFrom(1, 15), indices(l.Page(1, 15)))
}

func TestLog_React(t *testing.T) {
	req := require.New(t)
	l := fillLog(2)

	count, ok := l.React(1, "🔥")
	req.True(ok)
	req.Equal(1, count)
	count, ok = l.React(1, "🔥")
	req.True(ok)
	req.Equal(2, count)

	_, ok = l.React(2, "🔥")
	req.False(ok)
	_, ok = l.React(-1, "🔥")
	req.False(ok)

	recs := l.Recent(2)
	req.Nil(recs[0].Reactions)
	req.Equal(map[string]int{"🔥": 2}, recs[1].Reactions)
}

func TestLog_RecordsAreSnapshots(t *testing.T) {
	req := require.New(t)
	l := fillLog(1)
	l.React(0, "👍")

	rec := l.Recent(1)[0]
	rec.Reactions["👍"] = 99

	req.Equal(map[string]int{"👍": 1}, l.Recent(1)[0].Reactions)
}
