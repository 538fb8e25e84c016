package mgf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMGF = `# comment line
BEGIN IONS
TITLE=Scan 42
PEPMASS=445.12 9876.5
CHARGE=2+
RTINSECONDS=120.5
100.0212 1300.0
150.5 20.5
300.25 5.0
END IONS

BEGIN IONS
TITLE=Scan 43
PEPMASS=512.9
CHARGE=3-
200.1 55.0
END IONS
`

func TestReadCollection(t *testing.T) {
	col, err := ReadCollection(strings.NewReader(sampleMGF))
	require.NoError(t, err)
	require.Equal(t, 2, col.Len())

	first := col.Spectra[0]
	assert.Equal(t, "Scan 42", first.ID)
	assert.Equal(t, 445.12, first.PrecursorMZ, "PEPMASS intensity field must be ignored")
	assert.Equal(t, 2, first.Charge)
	assert.Equal(t, []float64{100.0212, 150.5, 300.25}, first.MZ)
	assert.Equal(t, []float64{1300.0, 20.5, 5.0}, first.Intensity)

	second := col.Spectra[1]
	assert.Equal(t, "Scan 43", second.ID)
	assert.Equal(t, 512.9, second.PrecursorMZ)
	assert.Equal(t, -3, second.Charge)
	assert.Equal(t, 1, second.Len())
}

func TestStreamingReader(t *testing.T) {
	r := NewReader(strings.NewReader(sampleMGF))

	count := 0
	for r.Next() {
		require.NotNil(t, r.Spectrum())
		count++
	}
	require.NoError(t, r.Err())
	assert.Equal(t, 2, count)
}

func TestUnsortedPeaksAreSorted(t *testing.T) {
	input := `BEGIN IONS
PEPMASS=445.12
300.0 3.0
100.0 1.0
200.0 2.0
END IONS
`
	col, err := ReadCollection(strings.NewReader(input))
	require.NoError(t, err)

	spec := col.Spectra[0]
	assert.Equal(t, []float64{100.0, 200.0, 300.0}, spec.MZ)
	assert.Equal(t, []float64{1.0, 2.0, 3.0}, spec.Intensity)
}

func TestMissingPepmass(t *testing.T) {
	input := `BEGIN IONS
TITLE=broken
100.0 1.0
END IONS
`
	_, err := ReadCollection(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PEPMASS")
}

func TestInvalidPeakLine(t *testing.T) {
	input := `BEGIN IONS
PEPMASS=445.12
100.0 notanumber
END IONS
`
	_, err := ReadCollection(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestUnterminatedBlock(t *testing.T) {
	input := `BEGIN IONS
PEPMASS=445.12
100.0 1.0
`
	_, err := ReadCollection(strings.NewReader(input))
	require.Error(t, err)
}

func TestInvalidCharge(t *testing.T) {
	input := `BEGIN IONS
PEPMASS=445.12
CHARGE=two
100.0 1.0
END IONS
`
	_, err := ReadCollection(strings.NewReader(input))
	require.Error(t, err)
}

func TestEmptyInput(t *testing.T) {
	col, err := ReadCollection(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, col.Len())
}
