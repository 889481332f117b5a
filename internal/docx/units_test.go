package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitConversions(t *testing.T) {
	assert.Equal(t, int64(360000), MM(MarginMM))
	assert.Equal(t, int64(3168000), MM(PictureWidthMM))
	assert.Equal(t, 567, Twips(MM(MarginMM)))
	assert.Equal(t, 1440, Twips(914400))
}

func TestDefaultMargins(t *testing.T) {
	assert.Equal(t, Margins{Top: 567, Right: 567, Bottom: 567, Left: 567}, DefaultMargins())
}

func TestParsePageSize(t *testing.T) {
	tests := []struct {
		in      string
		want    PageSize
		wantErr bool
	}{
		{"", Letter, false},
		{"letter", Letter, false},
		{" Letter ", Letter, false},
		{"A4", A4, false},
		{"legal", PageSize{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePageSize(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScaledHeight(t *testing.T) {
	w := MM(PictureWidthMM)
	assert.Equal(t, w, scaledHeight(w, 100, 100))
	assert.Equal(t, w/2, scaledHeight(w, 200, 100))
	assert.Equal(t, 2*w, scaledHeight(w, 100, 200))
	// 3168000 * 2 / 3 = 2112000
	assert.Equal(t, int64(2112000), scaledHeight(w, 3, 2))
}

func TestPictureRowFitsBothPages(t *testing.T) {
	row := 2 * Twips(MM(PictureWidthMM))
	m := DefaultMargins()
	for _, p := range []PageSize{Letter, A4} {
		assert.LessOrEqual(t, row, p.Width-m.Left-m.Right, p.Name)
	}
}
