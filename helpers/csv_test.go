package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriq-org/agriq/dataset"
)

func TestParseCropCSVLongForm(t *testing.T) {
	data := []byte("State Name,District,Crop,Year,Production\n" +
		"Punjab,Ludhiana,Wheat,2021,300\n" +
		"Punjab,Ludhiana,Wheat,2022,320.5\n" +
		"Punjab,,Wheat,2022,10\n" + // missing district, skipped
		"Punjab,Amritsar,Wheat,notayear,10\n") // bad year, skipped

	rows, err := ParseCropCSV(data)
	require.NoError(t, err)
	assert.Equal(t, []dataset.CropRow{
		{State: "Punjab", District: "Ludhiana", Crop: "Wheat", Year: 2021, Production: 300},
		{State: "Punjab", District: "Ludhiana", Crop: "Wheat", Year: 2022, Production: 320.5},
	}, rows)
}

func TestParseCropCSVWideForm(t *testing.T) {
	data := []byte("state,district,crop,2021,2022\n" +
		"Punjab,Ludhiana,Wheat,300,320\n" +
		"Punjab,Amritsar,Wheat,NA,100\n")

	rows, err := ParseCropCSV(data)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Contains(t, rows, dataset.CropRow{State: "Punjab", District: "Ludhiana", Crop: "Wheat", Year: 2021, Production: 300})
	assert.Contains(t, rows, dataset.CropRow{State: "Punjab", District: "Ludhiana", Crop: "Wheat", Year: 2022, Production: 320})
	// The NA cell for Amritsar 2021 is skipped, not zeroed.
	assert.Contains(t, rows, dataset.CropRow{State: "Punjab", District: "Amritsar", Crop: "Wheat", Year: 2022, Production: 100})
}

func TestParseCropCSVMissingColumns(t *testing.T) {
	_, err := ParseCropCSV([]byte("state,crop,year,production\nPunjab,Wheat,2021,1\n"))
	require.Error(t, err)

	_, err = ParseCropCSV([]byte("state,district,crop\nPunjab,Ludhiana,Wheat\n"))
	require.Error(t, err)
}
