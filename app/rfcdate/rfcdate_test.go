package rfcdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGMT(t *testing.T) {
	got, err := Parse("Sat, 07 Sep 2002 09:42:31 GMT")
	require.NoError(t, err)

	want := time.Date(2002, time.September, 7, 9, 42, 31, 0, time.UTC)
	assert.True(t, want.Equal(got), "expected %v, got %v", want, got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestParseNamedZoneWithoutWeekday(t *testing.T) {
	got, err := Parse("07 Sep 2002 09:42:31 EST")
	require.NoError(t, err)

	want := time.Date(2002, time.September, 7, 14, 42, 31, 0, time.UTC)
	assert.True(t, want.Equal(got), "expected %v, got %v", want, got)
}

func TestParseNamedZonesAreCaseInsensitive(t *testing.T) {
	lower, err := Parse("Sat, 07 Sep 2002 09:42:31 pdt")
	require.NoError(t, err)
	upper, err := Parse("Sat, 07 Sep 2002 09:42:31 PDT")
	require.NoError(t, err)

	assert.True(t, lower.Equal(upper))
	assert.True(t, time.Date(2002, time.September, 7, 16, 42, 31, 0, time.UTC).Equal(upper))
}

func TestParseMilitaryZones(t *testing.T) {
	tests := []struct {
		zone  string
		hours int
	}{
		{"A", 1},
		{"I", 9},
		{"K", 10},
		{"M", 12},
		{"N", -1},
		{"Y", -12},
	}

	base := time.Date(2002, time.September, 7, 12, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			got, err := Parse("07 Sep 2002 12:00:00 " + tt.zone)
			require.NoError(t, err)
			assert.True(t, base.Add(time.Duration(tt.hours)*time.Hour).Equal(got), "got %v", got)
		})
	}
}

func TestParseMilitaryJIsUnknown(t *testing.T) {
	_, err := Parse("07 Sep 2002 12:00:00 J")
	assert.Error(t, err)
}

func TestParseNumericOffset(t *testing.T) {
	got, err := Parse("Sat, 07 Sep 2002 09:42:31 +0200")
	require.NoError(t, err)
	assert.True(t, time.Date(2002, time.September, 7, 7, 42, 31, 0, time.UTC).Equal(got), "got %v", got)

	got, err = Parse("Sat, 07 Sep 2002 09:42:31 -0530")
	require.NoError(t, err)
	assert.True(t, time.Date(2002, time.September, 7, 15, 12, 31, 0, time.UTC).Equal(got), "got %v", got)
}

func TestParseManualOffsetReadsTimezoneToken(t *testing.T) {
	offset, err := parseOffset("+0930")
	require.NoError(t, err)
	assert.Equal(t, 9*time.Hour+30*time.Minute, offset)

	offset, err = parseOffset("-05:00")
	require.NoError(t, err)
	assert.Equal(t, -5*time.Hour, offset)

	offset, err = parseOffset("+03")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Hour, offset)

	_, err = parseOffset("+1")
	assert.Error(t, err)

	_, err = parseOffset("+ab00")
	assert.Error(t, err)
}

func TestParseISO8601(t *testing.T) {
	got, err := Parse("2002-09-07T09:42:31Z")
	require.NoError(t, err)
	assert.True(t, time.Date(2002, time.September, 7, 9, 42, 31, 0, time.UTC).Equal(got))

	got, err = Parse("2002-09-07T09:42:31+02:00")
	require.NoError(t, err)
	assert.True(t, time.Date(2002, time.September, 7, 7, 42, 31, 0, time.UTC).Equal(got))
}

func TestParseTrailingZ(t *testing.T) {
	got, err := Parse("Sat, 07 Sep 2002 09:42:31 Z")
	require.NoError(t, err)
	assert.True(t, time.Date(2002, time.September, 7, 9, 42, 31, 0, time.UTC).Equal(got))
}

func TestParseUnknownZoneFails(t *testing.T) {
	_, err := Parse("Sat, 07 Sep 2002 09:42:31 XYZ")
	assert.Error(t, err)
}

func TestParseOrReturnsDefault(t *testing.T) {
	def := time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, def, ParseOr("Sat, 07 Sep 2002 09:42:31 XYZ", def))
	assert.Equal(t, def, ParseOr("not a date at all", def))
	assert.Equal(t, def, ParseOr("", def))
	assert.Equal(t, def, ParseOr("   ", def))

	got := ParseOr("Sat, 07 Sep 2002 09:42:31 GMT", def)
	assert.True(t, time.Date(2002, time.September, 7, 9, 42, 31, 0, time.UTC).Equal(got))
}

func TestNeedsZoneTable(t *testing.T) {
	assert.True(t, needsZoneTable("EST"))
	assert.True(t, needsZoneTable("pdt"))
	assert.True(t, needsZoneTable("z"))
	assert.True(t, needsZoneTable("UT"))
	assert.False(t, needsZoneTable("CEST"))
	assert.False(t, needsZoneTable("PM"))
	assert.False(t, needsZoneTable("AM"))
	assert.False(t, needsZoneTable("GMT"))
	assert.False(t, needsZoneTable("utc"))
	assert.False(t, needsZoneTable("+0200"))
	assert.False(t, needsZoneTable("2002"))
	assert.False(t, needsZoneTable(""))
}

func TestParseMeridiem(t *testing.T) {
	got, err := Parse("Sep 7, 2002 9:42 PM")
	require.NoError(t, err)
	assert.True(t, time.Date(2002, time.September, 7, 21, 42, 0, 0, time.UTC).Equal(got), got.String())

	got, err = Parse("09/07/2002 09:42:31 AM")
	require.NoError(t, err)
	assert.True(t, time.Date(2002, time.September, 7, 9, 42, 31, 0, time.UTC).Equal(got), got.String())
}

func TestParseUnlistedZoneFails(t *testing.T) {
	_, err := Parse("Sat, 07 Sep 2002 09:42:31 CEST")
	assert.Error(t, err)
}
