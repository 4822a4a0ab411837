package mentions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/rolodex/internal/store"
)

func rec(table string, id int64, name, notes string) *store.TaggedRecord {
	return &store.TaggedRecord{
		ContactRecord: store.ContactRecord{
			ID:            id,
			ContactFields: store.ContactFields{Name: name, OtherNotes: notes},
		},
		SourceTable: table,
	}
}

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "jean-luc o'brien", Canonicalize("  Jean–Luc,  O’Brien!! "))
	assert.Equal(t, "", Canonicalize("?!"))
}

func TestScanOffsetsPointAtOriginalText(t *testing.T) {
	ix, err := Build([]*store.TaggedRecord{rec("Work", 1, "Ann Lee", "")})
	require.NoError(t, err)
	require.Equal(t, 1, ix.Len())

	text := "Lunch with   ANN   lee, tomorrow."
	hits := ix.Scan(text)
	require.Len(t, hits, 1)
	assert.Equal(t, "ANN   lee", hits[0].Matched)
	assert.Equal(t, "ANN   lee", text[hits[0].Start:hits[0].End])
}

func TestScanWholeWordsOnly(t *testing.T) {
	ix, err := Build([]*store.TaggedRecord{rec("Work", 1, "Sam", "")})
	require.NoError(t, err)

	assert.Empty(t, ix.Scan("Samantha called"))
	assert.Empty(t, ix.Scan("Jean-Sam.Ltd"))

	for _, text := range []string{"met sam.", "met Sam...", "'Sam' waved", "Sam. Then lunch", "Sam"} {
		hits := ix.Scan(text)
		require.Len(t, hits, 1, text)
		assert.Equal(t, "sam", Canonicalize(hits[0].Matched), text)
	}
}

func TestFindSentenceFinalNames(t *testing.T) {
	links, err := Find([]*store.TaggedRecord{
		rec("Friends", 1, "Ravi Shah", ""),
		rec("Work", 2, "Tom Berg", "Lunch with Ravi Shah."),
		rec("Work", 3, "Ana Ruiz", "Lunch with Ravi Shah, then home"),
		rec("Gym", 4, "Lee Park", "Spotted by Tom Berg!"),
	})
	require.NoError(t, err)

	type edge struct{ from, to, matched string }
	var got []edge
	for _, l := range links {
		got = append(got, edge{l.From.Name, l.To.Name, l.Matched})
	}
	assert.Equal(t, []edge{
		{"Tom Berg", "Ravi Shah", "Ravi Shah"},
		{"Ana Ruiz", "Ravi Shah", "Ravi Shah"},
		{"Lee Park", "Tom Berg", "Tom Berg"},
	}, got)
}

func TestBuildSkipsStopwordsAndShortNames(t *testing.T) {
	ix, err := Build([]*store.TaggedRecord{
		rec("A", 1, "The", ""),
		rec("A", 2, "Al", ""),
		rec("A", 3, "Priya", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())
	assert.Empty(t, ix.Scan("the al come?"))
}

func TestFindAcrossTables(t *testing.T) {
	links, err := Find([]*store.TaggedRecord{
		rec("Family", 1, "Priya Shah", "Sister of Ravi Shah; met Priya Shah again"),
		rec("Friends", 7, "Ravi Shah", "Introduced by Tom"),
		rec("Work", 2, "Tom Berg", "Knows Ravi Shah and ravi shah"),
	})
	require.NoError(t, err)

	type edge struct{ from, to string }
	var got []edge
	for _, l := range links {
		got = append(got, edge{l.From.Table + "/" + l.From.Name, l.To.Table + "/" + l.To.Name})
	}
	assert.Equal(t, []edge{
		{"Family/Priya Shah", "Friends/Ravi Shah"},
		{"Work/Tom Berg", "Friends/Ravi Shah"},
	}, got)
}

func TestFindSameNameInTwoTables(t *testing.T) {
	links, err := Find([]*store.TaggedRecord{
		rec("Family", 1, "Mia Cruz", ""),
		rec("Gym", 4, "Mia Cruz", ""),
		rec("Work", 2, "Leo", "carpool with Mia Cruz"),
	})
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "Family", links[0].To.Table)
	assert.Equal(t, "Gym", links[1].To.Table)
}

func TestEmptyIndex(t *testing.T) {
	ix, err := Build(nil)
	require.NoError(t, err)
	assert.Nil(t, ix.Scan("anything"))
}
