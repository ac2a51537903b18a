package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, scan_id, sensor, platform, source_path, source_files_json, status, orbit_number, start_time, end_time, scene_file, output_file, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message, retry_count, last_heartbeat"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id               int64
		scanID           sql.NullString
		sensor           sql.NullString
		platform         sql.NullString
		sourcePath       sql.NullString
		sourceFiles      sql.NullString
		statusStr        string
		orbitNumber      sql.NullString
		startRaw         sql.NullString
		endRaw           sql.NullString
		sceneFile        sql.NullString
		outputFile       sql.NullString
		errorMessage     sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		retryCount       sql.NullInt64
		lastHeartbeatRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&scanID,
		&sensor,
		&platform,
		&sourcePath,
		&sourceFiles,
		&statusStr,
		&orbitNumber,
		&startRaw,
		&endRaw,
		&sceneFile,
		&outputFile,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&retryCount,
		&lastHeartbeatRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		ScanID:          scanID.String,
		Sensor:          sensor.String,
		Platform:        platform.String,
		SourcePath:      sourcePath.String,
		SourceFilesJSON: sourceFiles.String,
		Status:          Status(statusStr),
		OrbitNumber:     orbitNumber.String,
		SceneFile:       sceneFile.String,
		OutputFile:      outputFile.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}
	if retryCount.Valid {
		item.RetryCount = int(retryCount.Int64)
	}

	if start, err := parseTimeString(startRaw.String); err == nil {
		item.StartTime = start
	}
	if end, err := parseTimeString(endRaw.String); err == nil {
		item.EndTime = end
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			item.LastHeartbeat = &heartbeat
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func nullableTimestamp(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
