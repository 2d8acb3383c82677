package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/geosift/geosift/core"
	"github.com/geosift/geosift/pipeline"
	"github.com/geosift/geosift/reconcile"
)

const listSeparator = "|"

// readSearchRecords reads the input table. The header row names the columns;
// unknown columns are ignored. all_queries cells hold either a JSON array or
// a pipe-separated list.
func readSearchRecords(path string) ([]*core.SearchRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{pipeline.ColQuery, pipeline.ColSuccess, pipeline.ColPoiProba} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("input is missing required column %q", required)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []*core.SearchRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		success, err := strconv.ParseBool(strings.TrimSpace(cell(row, pipeline.ColSuccess)))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing success flag: %w", len(records)+2, err)
		}

		records = append(records, &core.SearchRecord{
			Query:      cell(row, pipeline.ColQuery),
			AllQueries: parseQueryList(cell(row, pipeline.ColAllQueries)),
			Location:   cell(row, pipeline.ColLocation),
			UserLatLon: cell(row, pipeline.ColUserLatLon),
			PoiName:    cell(row, pipeline.ColPoiName),
			Success:    success,
			PoiProba:   cell(row, pipeline.ColPoiProba),
		})
	}
	return records, nil
}

func parseQueryList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return list
		}
	}
	return strings.Split(raw, listSeparator)
}

// readCatalogEntries reads catalog rows for indexing. The "name" column is
// required; every other column becomes an attribute.
func readCatalogEntries(path string) ([]*core.CatalogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	nameIdx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == "name" {
			nameIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("catalog input is missing required column %q", "name")
	}

	var entries []*core.CatalogEntry
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		entry := &core.CatalogEntry{Name: row[nameIdx]}
		for i, value := range row {
			if i == nameIdx || i >= len(header) || value == "" {
				continue
			}
			if entry.Attrs == nil {
				entry.Attrs = make(map[string]string)
			}
			entry.Attrs[strings.TrimSpace(header[i])] = value
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// enrichedWriter writes enriched cohort tables with a stable column layout.
type enrichedWriter struct {
	simColumns []string
}

func newEnrichedWriter(params pipeline.Params) *enrichedWriter {
	var simColumns []string
	if len(params.ColsToEncode) > 1 {
		ref := params.ColsToEncode[0]
		for _, other := range params.ColsToEncode[1:] {
			simColumns = append(simColumns, pipeline.SimColumn(ref, other))
		}
	}
	return &enrichedWriter{simColumns: simColumns}
}

func (w *enrichedWriter) header() []string {
	header := []string{
		pipeline.ColQuery,
		pipeline.ColAllQueries,
		pipeline.ColLocation,
		pipeline.ColUserLatLon,
		pipeline.ColPoiName,
		pipeline.ColSuccess,
		pipeline.ColPoiProba,
	}
	header = append(header, w.simColumns...)
	return append(header,
		"num_all_queries",
		"num_char_all_queries",
		"num_comma_all_queries",
		"num_words_all_queries",
	)
}

func (w *enrichedWriter) row(rec *core.EnrichedRecord) []string {
	row := []string{
		rec.Query,
		strings.Join(rec.AllQueries, listSeparator),
		rec.Location,
		rec.UserLatLon,
		rec.PoiName,
		strconv.FormatBool(rec.Success),
		strconv.FormatFloat(rec.PoiProba, 'f', -1, 64),
	}
	for _, col := range w.simColumns {
		row = append(row, formatSimilarity(rec.Similarity, col))
	}
	return append(row,
		strconv.Itoa(rec.NumAllQueries),
		joinInts(rec.NumCharAllQueries),
		joinInts(rec.NumCommaAllQueries),
		joinInts(rec.NumWordsAllQueries),
	)
}

func (w *enrichedWriter) writeFile(path string, records []*core.EnrichedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(w.header()); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write(w.row(rec)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (w *enrichedWriter) writeCohorts(dir string, cohorts pipeline.Cohorts) error {
	files := []struct {
		name    string
		records []*core.EnrichedRecord
	}{
		{"fail.csv", cohorts.Fail},
		{"fail_poi.csv", cohorts.FailPOI},
		{"success.csv", cohorts.Success},
		{"success_addr.csv", cohorts.SuccessAddr},
	}
	for _, file := range files {
		if err := w.writeFile(filepath.Join(dir, file.name), file.records); err != nil {
			return fmt.Errorf("writing %s: %w", file.name, err)
		}
	}
	return nil
}

func (w *enrichedWriter) writeReconciled(dir string, params pipeline.Params, outcome *reconcile.Outcome) error {
	header := w.header()
	header = append(header,
		"reverse_geocode",
		"location_coordinates",
		params.ColRevGeo,
		"country_query",
		pipeline.SimColumn(pipeline.ColQuery, params.ColRevGeo),
		"osm_better",
	)

	write := func(name string, records []*core.ReconciledRecord) error {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		defer f.Close()

		writer := csv.NewWriter(f)
		if err := writer.Write(header); err != nil {
			return err
		}
		for _, rec := range records {
			row := w.row(rec.EnrichedRecord)
			row = append(row,
				rec.ReverseGeocode,
				rec.LocationCoordinates,
				rec.ReverseLocation,
				rec.CountryQuery,
				formatSimilarity(rec.Similarity, pipeline.SimColumn(pipeline.ColQuery, params.ColRevGeo)),
				strconv.FormatBool(rec.OSMBetter),
			)
			if err := writer.Write(row); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	}

	if err := write("reconciled.csv", outcome.All); err != nil {
		return fmt.Errorf("writing reconciled.csv: %w", err)
	}
	if err := write("osm_better.csv", outcome.OSMBetter); err != nil {
		return fmt.Errorf("writing osm_better.csv: %w", err)
	}
	return nil
}

func formatSimilarity(similarity map[string]float32, col string) string {
	value, ok := similarity[col]
	if !ok {
		// Undefined scores stay empty, never coerced to 0.
		return ""
	}
	return strconv.FormatFloat(float64(value), 'f', -1, 32)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, listSeparator)
}
