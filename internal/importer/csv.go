package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dynamo-league/internal/domain"
)

// PlayerRow is one line of a player seed file.
type PlayerRow struct {
	Line                int
	Name                string
	Position            string
	Team                string
	State               domain.State
	ContractValue       int
	YearAcquired        *int
	YearContractExpires *int
	HeadshotURL         string
}

// ParseTeamsCSV reads team names from a file with a "name" column.
func ParseTeamsCSV(reader io.Reader) ([]string, error) {
	headers, records, err := readCSV(reader, "name")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(records))
	names := make([]string, 0, len(records))
	for i, record := range records {
		name := strings.TrimSpace(readValue(record, headers["name"]))
		if name == "" {
			return nil, fmt.Errorf("line %d name: value is required", i+2)
		}
		if seen[name] {
			return nil, fmt.Errorf("line %d name: duplicate team %q", i+2, name)
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// ParsePlayersCSV reads player rows. name and position are required; team, state,
// contract_value, year_acquired, year_contract_expires and headshot_url are optional.
// A row with a team and no state is imported as rostered.
func ParsePlayersCSV(reader io.Reader) ([]PlayerRow, error) {
	headers, records, err := readCSV(reader, "name", "position")
	if err != nil {
		return nil, err
	}

	rows := make([]PlayerRow, 0, len(records))
	for i, record := range records {
		lineNo := i + 2
		row := PlayerRow{
			Line:        lineNo,
			Name:        strings.TrimSpace(readValue(record, headers["name"])),
			Position:    strings.ToUpper(strings.TrimSpace(readValue(record, headers["position"]))),
			Team:        optional(record, headers, "team"),
			HeadshotURL: optional(record, headers, "headshot_url"),
		}
		if row.Name == "" {
			return nil, fmt.Errorf("line %d name: value is required", lineNo)
		}

		state := strings.ToLower(optional(record, headers, "state"))
		switch {
		case state != "":
			parsed, err := domain.ParseState(state)
			if err != nil {
				return nil, fmt.Errorf("line %d state: %w", lineNo, err)
			}
			row.State = parsed
		case row.Team != "":
			row.State = domain.StateRostered
		default:
			row.State = domain.StateUnrostered
		}
		if row.State.InBidding() {
			return nil, fmt.Errorf("line %d state: players cannot be imported in %s", lineNo, row.State)
		}
		if row.State != domain.StateUnrostered && row.Team == "" {
			return nil, fmt.Errorf("line %d team: required for %s players", lineNo, row.State)
		}

		if row.ContractValue, err = optionalInt(record, headers, "contract_value"); err != nil {
			return nil, fmt.Errorf("line %d contract_value: %w", lineNo, err)
		}
		if row.State == domain.StateRostered && row.ContractValue < domain.MinimumContractValue {
			return nil, fmt.Errorf("line %d contract_value: rostered players need at least %d", lineNo, domain.MinimumContractValue)
		}
		if row.YearAcquired, err = optionalYear(record, headers, "year_acquired"); err != nil {
			return nil, fmt.Errorf("line %d year_acquired: %w", lineNo, err)
		}
		if row.YearContractExpires, err = optionalYear(record, headers, "year_contract_expires"); err != nil {
			return nil, fmt.Errorf("line %d year_contract_expires: %w", lineNo, err)
		}

		rows = append(rows, row)
	}
	return rows, nil
}

func readCSV(reader io.Reader, required ...string) (map[string]int, [][]string, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("csv must include a header row and at least one data row")
	}

	headers := make(map[string]int, len(records[0]))
	for idx, col := range records[0] {
		headers[strings.ToLower(strings.TrimSpace(col))] = idx
	}
	for _, col := range required {
		if _, ok := headers[col]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", col)
		}
	}
	return headers, records[1:], nil
}

func optional(record []string, headers map[string]int, col string) string {
	idx, ok := headers[col]
	if !ok {
		return ""
	}
	return strings.TrimSpace(readValue(record, idx))
}

func optionalInt(record []string, headers map[string]int, col string) (int, error) {
	value := optional(record, headers, col)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	return parsed, nil
}

func optionalYear(record []string, headers map[string]int, col string) (*int, error) {
	value := optional(record, headers, col)
	if value == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(value)
	if err != nil || year < 1900 || year > 9999 {
		return nil, fmt.Errorf("invalid year %q", value)
	}
	return &year, nil
}

func readValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
