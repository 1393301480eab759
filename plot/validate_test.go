package plot_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/caffeineduck/plotpad/plot"
)

func TestParseSeries(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    []float64
		wantErr bool
	}{
		{"float64 slice", []float64{1, 2.5}, []float64{1, 2.5}, false},
		{"int slice", []int{1, 2, 3}, []float64{1, 2, 3}, false},
		{"uint8 array", [2]uint8{4, 5}, []float64{4, 5}, false},
		{"float32 slice", []float32{0.5}, []float64{0.5}, false},
		{"any slice of numbers", []any{1, 2.0, int64(3)}, []float64{1, 2, 3}, false},
		{"empty", []float64{}, []float64{}, false},
		{"two dimensional", [][]float64{{1}, {2}}, nil, true},
		{"nested any", []any{[]float64{1}}, nil, true},
		{"strings", []string{"a"}, nil, true},
		{"scalar", 3.0, nil, true},
		{"nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := plot.ParseSeries("X", tt.in)
			if tt.wantErr {
				var ve *plot.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected *ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSeriesCopiesInput(t *testing.T) {
	in := []float64{1, 2}
	got, err := plot.ParseSeries("Y", in)
	if err != nil {
		t.Fatal(err)
	}
	in[0] = 99
	if got[0] != 1 {
		t.Errorf("series aliases caller slice")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	_, err := plot.ParseSeries("Y", [][]int{{1}})
	if err == nil || err.Error() != "Y must be 1 dimensional" {
		t.Errorf("unexpected error %v", err)
	}
}
