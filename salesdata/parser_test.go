package salesdata

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidTable(t *testing.T) {
	csv := "quantity,date,product_id,store\n" +
		"5,2024-01-02,P1,north\n" +
		"3, 2024/01/01 ,P2,south\n" +
		"7.0,2024-01-03T00:00:00Z,P1,north\n"

	table, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, table.Records, 3)

	assert.Equal(t, Record{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ProductID: "P1", Quantity: 5}, table.Records[0])
	assert.Equal(t, "P2", table.Records[1].ProductID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), table.Records[1].Date)
	assert.Equal(t, 7, table.Records[2].Quantity)
}

func TestParseHeaderWithBOM(t *testing.T) {
	table, err := Parse(strings.NewReader("\ufeffdate,product_id,quantity\n2024-01-01,P1,1\n"))
	require.NoError(t, err)
	assert.Len(t, table.Records, 1)
}

func TestParseMissingColumns(t *testing.T) {
	_, err := Parse(strings.NewReader("date,product_id\n2024-01-01,P1\n"))

	var mc *MissingColumnsError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, []string{"quantity"}, mc.Missing)
	assert.Equal(t, "CSV must contain columns: date, product_id, quantity", err.Error())
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "date,product_id,quantity\n", "date,product_id,quantity\n,,\n"} {
		_, err := Parse(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrEmptyFile, "input %q", in)
	}
}

func TestParseRowErrors(t *testing.T) {
	cases := []struct {
		name   string
		row    string
		column string
	}{
		{"bad date", "2024-13-45,P1,1", "date"},
		{"missing date", ",P1,1", "date"},
		{"non-numeric quantity", "2024-01-01,P1,lots", "quantity"},
		{"fractional quantity", "2024-01-01,P1,1.5", "quantity"},
		{"negative quantity", "2024-01-01,P1,-2", "quantity"},
		{"huge quantity", "2024-01-01,P1,1e20", "quantity"},
		{"empty product", "2024-01-01,,2", "product_id"},
		{"short row", "2024-01-01,P1", "quantity"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader("date,product_id,quantity\n2024-01-01,P0,1\n" + c.row + "\n"))

			var re *RowError
			require.True(t, errors.As(err, &re), "got %v", err)
			assert.Equal(t, 3, re.Row)
			assert.Equal(t, c.column, re.Column)
		})
	}
}

func TestTableHelpers(t *testing.T) {
	table, err := ParseBytes([]byte("date,product_id,quantity\n" +
		"2024-01-03,B,1\n" +
		"2024-01-01,A,2\n" +
		"2024-01-01,A,3\n" +
		"2024-01-05,A,4\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, table.ProductIDs())
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), table.MaxDate())

	series := table.Series("A")
	require.Len(t, series, 2)
	assert.Equal(t, 5.0, series[0].Quantity)
	assert.Equal(t, 4.0, series[1].Quantity)
	assert.True(t, series[0].Date.Before(series[1].Date))

	recs := table.JSON()
	assert.Equal(t, RecordJSON{Date: "2024-01-03", ProductID: "B", Quantity: 1}, recs[0])
}

func TestParseMalformed(t *testing.T) {
	_, err := ParseBytes([]byte("date,product_id,quantity\n2024-01-01,\"A,1\n"))
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "row 2")
}

func TestParseQuantityOutOfRange(t *testing.T) {
	for _, v := range []string{"1e20", "-1e20", "9223372036854775808"} {
		_, err := ParseBytes([]byte("date,product_id,quantity\n2024-01-01,P1," + v + "\n"))

		var re *RowError
		require.True(t, errors.As(err, &re), "got %v for %s", err, v)
		assert.Equal(t, "out of range", re.Reason, v)
	}
}
