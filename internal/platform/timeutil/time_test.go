package timeutil

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTimeMarshalJSONUsesMillis(t *testing.T) {
	ts := NewTime(time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC))
	b, err := json.Marshal(ts)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-01-15T10:30:00.123Z"` {
		t.Fatalf("unexpected encoding %s", b)
	}
}

func TestTimeDecodesMillisFormat(t *testing.T) {
	var ts Time
	if err := json.Unmarshal([]byte(`"2024-01-15T10:30:00.123Z"`), &ts); err != nil {
		t.Fatal(err)
	}
	if !ts.Equal(time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.UTC)) {
		t.Fatalf("unexpected value %v", ts.Time)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2019-06-01", time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"2019-06-01T08:00:00Z", time.Date(2019, 6, 1, 8, 0, 0, 0, time.UTC)},
		{"2019-06-01T10:00:00+02:00", time.Date(2019, 6, 1, 8, 0, 0, 0, time.UTC)},
		{"2019-06-01T08:00:00", time.Date(2019, 6, 1, 8, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("%q: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2019-13-01", "01/06/2019"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q: expected ErrInvalidDate, got %v", in, err)
		}
	}
}
