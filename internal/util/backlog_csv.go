package util

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// BacklogRow is one backlog story mapped from an Azure DevOps CSV export.
type BacklogRow struct {
	ID        string
	Historia  string
	Sprint    string
	Prioridad string
}

// HistoricalRow is one finished story with its real effort, from the
// historical dataset export.
type HistoricalRow struct {
	ID              string
	Historia        string
	Horas           float64
	CriteriosINVEST int
	Complejidad     string
}

// ExportRow is one evaluated story written back in Azure DevOps layout.
type ExportRow struct {
	ID              string
	Historia        string
	Sprint          string
	Prioridad       string
	CriteriosINVEST int
	Horas           *float64
}

// ParseBacklogCSV reads an Azure DevOps work item export (ID, Title,
// optional Tags) into internal backlog rows. Title carries the story text;
// Tags carries "SprintN" and Alta/Media/Baja priority.
func ParseBacklogCSV(r io.Reader) ([]BacklogRow, error) {
	header, records, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	idCol, ok := header["id"]
	if !ok {
		return nil, fmt.Errorf("columna requerida 'ID' no encontrada")
	}
	titleCol, ok := header["title"]
	if !ok {
		return nil, fmt.Errorf("columna requerida 'Title' no encontrada")
	}
	tagsCol, hasTags := header["tags"]

	rows := make([]BacklogRow, 0, len(records))
	for _, record := range records {
		row := BacklogRow{
			ID:       field(record, idCol),
			Historia: field(record, titleCol),
		}
		if hasTags {
			row.Sprint, row.Prioridad = splitTags(field(record, tagsCol))
		}
		if strings.TrimSpace(row.Historia) == "" && strings.TrimSpace(row.ID) == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseHistoricalCSV reads the historical dataset export: the backlog
// columns plus Horas, Criterios_INVEST and optional Complejidad.
func ParseHistoricalCSV(r io.Reader) ([]HistoricalRow, error) {
	header, records, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	idCol, hasID := header["id"]
	titleCol, ok := header["title"]
	if !ok {
		return nil, fmt.Errorf("columna requerida 'Title' no encontrada")
	}
	hoursCol, ok := header["horas"]
	if !ok {
		return nil, fmt.Errorf("columna requerida 'Horas' no encontrada")
	}
	criteriaCol, hasCriteria := header["criterios_invest"]
	complexityCol, hasComplexity := header["complejidad"]

	rows := make([]HistoricalRow, 0, len(records))
	for _, record := range records {
		row := HistoricalRow{Historia: field(record, titleCol)}
		if hasID {
			row.ID = field(record, idCol)
		}
		if strings.TrimSpace(row.Historia) == "" {
			continue
		}

		hours, err := strconv.ParseFloat(strings.TrimSpace(field(record, hoursCol)), 64)
		if err != nil {
			return nil, fmt.Errorf("valor de 'Horas' inválido en historia %q: %w", row.ID, err)
		}
		row.Horas = hours

		if hasCriteria {
			if met, err := strconv.Atoi(strings.TrimSpace(field(record, criteriaCol))); err == nil {
				row.CriteriosINVEST = met
			}
		}
		if hasComplexity {
			row.Complejidad = strings.TrimSpace(field(record, complexityCol))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteAzureDevOpsCSV writes evaluated results back in the Azure DevOps
// work item layout so the export round-trips with the import format.
func WriteAzureDevOpsCSV(w io.Writer, rows []ExportRow, workItemType string) error {
	if workItemType == "" {
		workItemType = "User Story"
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		"ID", "Work Item Type", "Title", "Assigned To", "State",
		"Tags", "Criterios_INVEST", "Horas",
	}); err != nil {
		return err
	}

	for _, row := range rows {
		var tags []string
		if row.Sprint != "" {
			tags = append(tags, "Sprint"+row.Sprint)
		}
		if row.Prioridad != "" {
			tags = append(tags, row.Prioridad)
		}

		hours := ""
		if row.Horas != nil {
			hours = strconv.FormatFloat(*row.Horas, 'f', 1, 64)
		}

		if err := writer.Write([]string{
			row.ID, workItemType, row.Historia, "", "Active",
			strings.Join(tags, ","), strconv.Itoa(row.CriteriosINVEST), hours,
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func readCSV(r io.Reader) (map[string]int, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("no se pudo leer el CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("archivo CSV vacío")
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return header, records[1:], nil
}

func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return record[col]
}

// splitTags extracts sprint and priority from a comma-separated tag list.
func splitTags(tags string) (sprint, prioridad string) {
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		switch {
		case strings.HasPrefix(tag, "Sprint"):
			sprint = strings.TrimSpace(strings.TrimPrefix(tag, "Sprint"))
		case tag == "Alta" || tag == "Media" || tag == "Baja":
			prioridad = tag
		}
	}
	return sprint, prioridad
}
