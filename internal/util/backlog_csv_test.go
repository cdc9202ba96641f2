package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBacklogCSV(t *testing.T) {
	csvData := `ID,Work Item Type,Title,Tags
HU-01,User Story,Como usuario quiero iniciar sesión para acceder al sistema,"Sprint1,Alta"
HU-02,User Story,Como usuario quiero ver mis pedidos para conocer su estado,"Sprint2,Baja"
HU-03,User Story,Como usuario quiero exportar informes,
`
	rows, err := ParseBacklogCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "HU-01", rows[0].ID)
	assert.Equal(t, "Como usuario quiero iniciar sesión para acceder al sistema", rows[0].Historia)
	assert.Equal(t, "1", rows[0].Sprint)
	assert.Equal(t, "Alta", rows[0].Prioridad)

	assert.Equal(t, "2", rows[1].Sprint)
	assert.Equal(t, "Baja", rows[1].Prioridad)

	assert.Empty(t, rows[2].Sprint)
	assert.Empty(t, rows[2].Prioridad)
}

func TestParseBacklogCSVRequiresColumns(t *testing.T) {
	_, err := ParseBacklogCSV(strings.NewReader("Nombre,Descripcion\nfoo,bar\n"))
	require.Error(t, err)

	_, err = ParseBacklogCSV(strings.NewReader("ID,Descripcion\n1,foo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Title")
}

func TestParseBacklogCSVSkipsBlankRows(t *testing.T) {
	csvData := "ID,Title\nHU-01,Como usuario quiero ver mis pedidos\n,\n"
	rows, err := ParseBacklogCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParseHistoricalCSV(t *testing.T) {
	csvData := `ID,Title,Horas,Criterios_INVEST,Complejidad
H-01,Como usuario quiero ver mis pedidos para conocer su estado,8.5,6,Media
H-02,Como usuario quiero iniciar sesión para acceder al sistema,4,5,Baja
`
	rows, err := ParseHistoricalCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 8.5, rows[0].Horas)
	assert.Equal(t, 6, rows[0].CriteriosINVEST)
	assert.Equal(t, "Media", rows[0].Complejidad)
	assert.Equal(t, 4.0, rows[1].Horas)
}

func TestParseHistoricalCSVInvalidHours(t *testing.T) {
	csvData := "ID,Title,Horas\nH-01,Como usuario quiero ver pedidos,ocho\n"
	_, err := ParseHistoricalCSV(strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Horas")
}

func TestWriteAzureDevOpsCSV(t *testing.T) {
	hours := 8.0
	rows := []ExportRow{
		{
			ID:              "HU-01",
			Historia:        "Como usuario quiero ver mis pedidos para conocer su estado",
			Sprint:          "1",
			Prioridad:       "Alta",
			CriteriosINVEST: 6,
			Horas:           &hours,
		},
		{
			ID:              "HU-02",
			Historia:        "Como usuario quiero iniciar sesión",
			CriteriosINVEST: 5,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAzureDevOpsCSV(&buf, rows, ""))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Work Item Type,Title,Assigned To,State,Tags,Criterios_INVEST,Horas", lines[0])
	assert.Contains(t, lines[1], "HU-01,User Story,")
	assert.Contains(t, lines[1], `"Sprint1,Alta"`)
	assert.Contains(t, lines[1], "6,8.0")
	assert.True(t, strings.HasSuffix(lines[2], ",5,"), "horas ausentes quedan vacías: %s", lines[2])
}

func TestBacklogCSVRoundTrip(t *testing.T) {
	hours := 12.0
	var buf bytes.Buffer
	require.NoError(t, WriteAzureDevOpsCSV(&buf, []ExportRow{{
		ID:              "HU-07",
		Historia:        "Como usuario quiero filtrar resultados para encontrar productos",
		Sprint:          "3",
		Prioridad:       "Media",
		CriteriosINVEST: 6,
		Horas:           &hours,
	}}, "User Story"))

	rows, err := ParseBacklogCSV(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "HU-07", rows[0].ID)
	assert.Equal(t, "3", rows[0].Sprint)
	assert.Equal(t, "Media", rows[0].Prioridad)
}
