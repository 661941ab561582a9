package core

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t testing.TB, csv string) *Table {
	t.Helper()
	table, err := Parse([]byte(csv), "test.csv", FormatCSV, ',')
	require.NoError(t, err)
	return table
}

func TestAnalyze_NameAge(t *testing.T) {
	table := mustTable(t, "name,age\nAlice,30\nBob,\nCarol,25")

	got := Analyze(table)
	require.Len(t, got, 2)

	name := got[0]
	assert.Equal(t, "name", name.ColumnName)
	assert.Equal(t, TypeString, name.Type)
	assert.Equal(t, 3, name.UniqueValues)
	assert.Equal(t, 0, name.NullCount)
	assert.Nil(t, name.Average)
	assert.Equal(t, TextBound("Alice"), name.Min)
	assert.Equal(t, TextBound("Carol"), name.Max)

	age := got[1]
	assert.Equal(t, "age", age.ColumnName)
	assert.Equal(t, TypeNumber, age.Type)
	assert.Equal(t, 1, age.NullCount)
	assert.Equal(t, 2, age.UniqueValues)
	require.NotNil(t, age.Average)
	assert.InDelta(t, 27.5, *age.Average, 1e-9)
	assert.Equal(t, NumberBound(25), age.Min)
	assert.Equal(t, NumberBound(30), age.Max)
}

func TestAnalyzeColumn(t *testing.T) {
	tests := []struct {
		name       string
		csv        string
		wantType   ColumnType
		wantUnique int
		wantNulls  int
		wantAvg    *float64
		wantMin    *Extremum
		wantMax    *Extremum
	}{
		{
			name:       "dates get no extrema",
			csv:        "d,x\n2024-01-02,1\n2023-05-06,1\n,1",
			wantType:   TypeDate,
			wantUnique: 2,
			wantNulls:  1,
		},
		{
			name:       "typed by first sample only",
			csv:        "v,x\n12,1\nn/a,1\n8,1",
			wantType:   TypeNumber,
			wantUnique: 3,
			wantAvg:    ptr(10.0),
			wantMin:    NumberBound(8),
			wantMax:    NumberBound(12),
		},
		{
			name:       "string first keeps numbers as strings",
			csv:        "v,x\nabc,1\n10,1\n9,1",
			wantType:   TypeString,
			wantUnique: 3,
			wantMin:    TextBound("10"),
			wantMax:    TextBound("abc"),
		},
		{
			name:       "unique values are textual",
			csv:        "v,x\n1,1\n1.0,1\n1,1",
			wantType:   TypeNumber,
			wantUnique: 2,
			wantAvg:    ptr(1.0),
			wantMin:    NumberBound(1),
			wantMax:    NumberBound(1),
		},
		{
			name:       "lexicographic bounds are byte-wise",
			csv:        "v,x\nbanana,1\nApple,1\ncherry,1",
			wantType:   TypeString,
			wantUnique: 3,
			wantMin:    TextBound("Apple"),
			wantMax:    TextBound("cherry"),
		},
		{
			name:      "empty column",
			csv:       "v,x\n,1\n,2",
			wantType:  TypeString,
			wantNulls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeColumn(mustTable(t, tt.csv), 0)

			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantUnique, got.UniqueValues)
			assert.Equal(t, tt.wantNulls, got.NullCount)
			if tt.wantAvg == nil {
				assert.Nil(t, got.Average)
			} else if assert.NotNil(t, got.Average) {
				assert.InDelta(t, *tt.wantAvg, *got.Average, 1e-9)
			}
			assert.Equal(t, tt.wantMin, got.Min)
			assert.Equal(t, tt.wantMax, got.Max)
		})
	}
}

func TestAnalyze_UniquePlusNullWithinRowCount(t *testing.T) {
	table := mustTable(t, "a,b,c\n1,x,\n1,y,\n2,,\n,x,z\n3,x,")

	for _, col := range Analyze(table) {
		if col.UniqueValues+col.NullCount > table.RowCount() {
			t.Errorf("column %q: unique %d + null %d > rows %d",
				col.ColumnName, col.UniqueValues, col.NullCount, table.RowCount())
		}
	}
}

func TestAnalyze_HeaderOrderWithManyColumns(t *testing.T) {
	const cols = 64
	headers := make([]string, cols)
	row := make([]string, cols)
	for i := range headers {
		headers[i] = fmt.Sprintf("c%02d", i)
		row[i] = fmt.Sprint(i)
	}
	table := &Table{Headers: headers, Rows: [][]string{row}}

	got := Analyze(table)
	require.Len(t, got, cols)
	for i, col := range got {
		assert.Equal(t, headers[i], col.ColumnName)
		assert.Equal(t, NumberBound(float64(i)), col.Min)
	}
}

func TestAnalyze_NilTable(t *testing.T) {
	assert.Nil(t, Analyze(nil))
}

func TestExtremum_JSON(t *testing.T) {
	b, err := NumberBound(27.5).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "27.5", string(b))

	b, err = TextBound("Alice").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"Alice"`, string(b))

	assert.Equal(t, "25", NumberBound(25).String())
}

func TestAnalyze_HugeValuesStayEncodable(t *testing.T) {
	table := mustTable(t, "x\n1e308\n1e308\n1.5e308")

	got := Analyze(table)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Average)
	assert.InDelta(t, 1.1666666666666667e308, *got[0].Average, 1e296)
	assert.Equal(t, 1.5e308, got[0].Max.Number)

	_, err := json.Marshal(got)
	assert.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }

func BenchmarkAnalyze(b *testing.B) {
	var sb []byte
	sb = append(sb, "id,name,amount,date\n"...)
	for i := 0; i < 10000; i++ {
		sb = fmt.Appendf(sb, "%d,name-%d,%d.25,2024-01-%02d\n", i, i%97, i, i%28+1)
	}
	table := mustTable(b, string(sb))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Analyze(table)
	}
}
