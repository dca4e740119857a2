package query

import (
	"math"
	"reflect"
	"strconv"
	"testing"

	"github.com/mmynk/munera/internal/storage"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string][]string
		global  string
		wantErr bool
	}{
		{name: "empty", input: "", want: map[string][]string{}},
		{name: "bare term is global", input: "lunch", want: map[string][]string{"global": {"lunch"}}, global: "lunch"},
		{name: "single filter", input: "paid:true", want: map[string][]string{"paid": {"true"}}},
		{
			name:  "multiple filters and values",
			input: "category:food;bills,year:2024",
			want:  map[string][]string{"category": {"food", "bills"}, "year": {"2024"}},
		},
		{
			name:  "bare term ignored among filters",
			input: "lunch,paid:false",
			want:  map[string][]string{"paid": {"false"}},
		},
		{name: "value keeps extra colons", input: "name:a:b", want: map[string][]string{"name": {"a:b"}}},
		{name: "missing field", input: ":x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			got := make(map[string][]string)
			for _, field := range q.Fields() {
				f, _ := q.Filter(field)
				got[field] = f.Values
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if q.Global() != tt.global {
				t.Errorf("Global() = %q, want %q", q.Global(), tt.global)
			}
		})
	}
}

func TestQueryString(t *testing.T) {
	q, err := Parse("year:2024,category:food;bills")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got, want := q.String(), "category:food;bills,year:2024"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		input   string
		want    []storage.Sort
		wantErr bool
	}{
		{input: "", want: nil},
		{input: "date", want: []storage.Sort{{Field: "date"}}},
		{input: "cost,desc", want: []storage.Sort{{Field: "cost", Desc: true}}},
		{input: "name,ASC", want: []storage.Sort{{Field: "name"}}},
		{input: "name,sideways", wantErr: true},
		{input: ",desc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSort(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSort(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSort(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		page, size string
		want       storage.Page
		wantErr    bool
	}{
		{"", "", storage.Page{Limit: 500, Offset: 0}, false},
		{"2", "10", storage.Page{Limit: 10, Offset: 20}, false},
		{"-1", "", storage.Page{}, true},
		{"0", "0", storage.Page{}, true},
		{"x", "", storage.Page{}, true},
		{strconv.Itoa(math.MaxInt / 10), "10", storage.Page{Limit: 10, Offset: math.MaxInt / 10 * 10}, false},
		{strconv.Itoa(math.MaxInt/10 + 1), "10", storage.Page{}, true},
		{"9223372036854775807", "500", storage.Page{}, true},
	}

	for _, tt := range tests {
		got, err := ParsePage(tt.page, tt.size)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParsePage(%q, %q) error = %v, wantErr %v", tt.page, tt.size, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePage(%q, %q) = %+v, want %+v", tt.page, tt.size, got, tt.want)
		}
	}
}
