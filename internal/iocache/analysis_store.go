package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable = "epigrowth_analysis_runs"
	countyRatesTable  = "epigrowth_county_rates"
)

// analysisTables lists the tracking tables in dependency order.
var analysisTables = []string{analysisRunsTable, countyRatesTable}

// countyRateColumns is the column order used for inserts and selects.
var countyRateColumns = []string{
	"analysis_id", "fips", "state", "county", "analysis_time", "rate", "intercept",
	"observations", "total_cases", "population", "density", "growth_label",
}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	switch backend {
	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("unsupported analysis backend: %s", backend)
	}

	db, err := openSQL(backend, connStr, contract.GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	// Create the table schemas
	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{countyRatesTable, getCreateCountyRatesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for epigrowth_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_counties_analyzed INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_counties_analyzed INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_counties_analyzed INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateCountyRatesQuery returns the CREATE TABLE query for epigrowth_county_rates.
func getCreateCountyRatesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(countyRatesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				fips CHAR(5) NOT NULL,
				state VARCHAR(64) NOT NULL,
				county VARCHAR(128) NOT NULL,
				analysis_time DATETIME(6) NOT NULL,
				rate DOUBLE NOT NULL,
				intercept DOUBLE NOT NULL,
				observations INT NOT NULL,
				total_cases BIGINT NOT NULL,
				population BIGINT NOT NULL,
				density DOUBLE,
				growth_label VARCHAR(16) NOT NULL,
				PRIMARY KEY (analysis_id, fips)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				fips TEXT NOT NULL,
				state TEXT NOT NULL,
				county TEXT NOT NULL,
				analysis_time TIMESTAMPTZ NOT NULL,
				rate DOUBLE PRECISION NOT NULL,
				intercept DOUBLE PRECISION NOT NULL,
				observations INT NOT NULL,
				total_cases BIGINT NOT NULL,
				population BIGINT NOT NULL,
				density DOUBLE PRECISION,
				growth_label TEXT NOT NULL,
				PRIMARY KEY (analysis_id, fips)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				fips TEXT NOT NULL,
				state TEXT NOT NULL,
				county TEXT NOT NULL,
				analysis_time TEXT NOT NULL,
				rate REAL NOT NULL,
				intercept REAL NOT NULL,
				observations INTEGER NOT NULL,
				total_cases INTEGER NOT NULL,
				population INTEGER NOT NULL,
				density REAL,
				growth_label TEXT NOT NULL,
				PRIMARY KEY (analysis_id, fips)
			);
		`, quotedTableName)
	}
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(runUUID string, startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES ($1, $2, $3) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, runUUID, startTime, string(configJSON)).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, runUUID, formatTime(startTime, as.backend), string(configJSON))
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalCounties int) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	ph := placeholders(as.backend, 4)

	row := as.db.QueryRow(fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, ph[0]), analysisID)
	startTime, err := as.scanTime(row)
	if err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_counties_analyzed = %s WHERE analysis_id = %s`,
		quotedTableName, ph[0], ph[1], ph[2], ph[3])
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, totalCounties, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordCountyRates stores the county rate rows of a run in one transaction.
func (as *AnalysisStoreImpl) RecordCountyRates(analysisID int64, records []schema.CountyRateRecord) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil || len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(countyRatesTable, as.backend),
		strings.Join(countyRateColumns, ", "),
		strings.Join(placeholders(as.backend, len(countyRateColumns)), ", "))

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare county rate insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.Exec(
			analysisID, r.FIPS, r.State, r.County, formatTime(r.AnalysisTime, as.backend),
			r.Rate, r.Intercept, r.Observations, r.TotalCases, r.Population, r.Density, r.GrowthLabel,
		); err != nil {
			return fmt.Errorf("failed to insert county rate %s: %w", r.FIPS, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit county rates: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// Clear deletes all recorded runs and county rates.
func (as *AnalysisStoreImpl) Clear() error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}
	for i := len(analysisTables) - 1; i >= 0; i-- {
		query := fmt.Sprintf("DELETE FROM %s", quoteTableName(analysisTables[i], as.backend))
		if _, err := as.db.Exec(query); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", analysisTables[i], err)
		}
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(analysisRunsTable, as.backend)

	row := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row = as.db.QueryRow(fmt.Sprintf("SELECT analysis_id FROM %s ORDER BY analysis_id DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		var err error
		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", quotedRuns))
		if status.LastRunTime, err = as.scanTime(row); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}

		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", quotedRuns))
		if status.OldestRunTime, err = as.scanTime(row); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		row = as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_counties_analyzed), 0) FROM %s", quotedRuns))
		if err := row.Scan(&status.TotalCountiesAnalyzed); err != nil {
			return status, fmt.Errorf("failed to get total counties analyzed: %w", err)
		}
	}

	for _, table := range analysisTables {
		var count int64
		row = as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, run_uuid, start_time, end_time, run_duration_ms, total_counties_analyzed, config_params
		FROM %s ORDER BY analysis_id`, quoteTableName(analysisRunsTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord

		switch as.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.AnalysisID, &record.RunUUID, &startTimeStr, &endTimeStr,
				&record.RunDurationMs, &record.TotalCountiesAnalyzed, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan analysis run: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.AnalysisID, &record.RunUUID, &record.StartTime, &record.EndTime,
				&record.RunDurationMs, &record.TotalCountiesAnalyzed, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan analysis run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllCountyRates retrieves all county rate rows from the store.
func (as *AnalysisStoreImpl) GetAllCountyRates() ([]schema.CountyRateRecord, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY analysis_id, fips`,
		strings.Join(countyRateColumns, ", "), quoteTableName(countyRatesTable, as.backend))

	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query county rates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CountyRateRecord
	for rows.Next() {
		var r schema.CountyRateRecord
		var analysisTimeStr string
		var analysisTime any = &r.AnalysisTime
		if as.backend == schema.SQLiteBackend {
			analysisTime = &analysisTimeStr
		}

		if err := rows.Scan(&r.AnalysisID, &r.FIPS, &r.State, &r.County, analysisTime, &r.Rate, &r.Intercept,
			&r.Observations, &r.TotalCases, &r.Population, &r.Density, &r.GrowthLabel); err != nil {
			return nil, fmt.Errorf("failed to scan county rate: %w", err)
		}
		if as.backend == schema.SQLiteBackend {
			if r.AnalysisTime, err = time.Parse(time.RFC3339Nano, analysisTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse analysis_time: %w", err)
			}
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating county rates: %w", err)
	}
	return results, nil
}

// scanTime reads a single time column, which SQLite stores as RFC3339 text.
func (as *AnalysisStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if as.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

// formatTime converts a time to the representation stored by the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	case schema.MySQLBackend:
		return t.UTC()
	default:
		return t
	}
}
