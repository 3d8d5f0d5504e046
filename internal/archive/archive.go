package archive

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// executionRow is the parquet layout for an archived task execution.
type executionRow struct {
	ID         string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	TaskType   string `parquet:"name=task_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	StartedAt  int64  `parquet:"name=started_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	DurationMs int64  `parquet:"name=duration_ms, type=INT64"`
	Success    bool   `parquet:"name=success, type=BOOLEAN"`
	Error      string `parquet:"name=error, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Config selects where archived parquet files are written.
type Config struct {
	Destination string // "local" or "s3"
	Path        string // local directory or S3 key prefix
	Region      string
	BucketName  string
}

// Archiver writes execution log batches to parquet files, either on the
// local filesystem or in S3, before they are purged from the database.
type Archiver struct {
	cfg Config
}

func NewArchiver(cfg Config) *Archiver {
	return &Archiver{cfg: cfg}
}

// Archive writes the given executions to a parquet file named after the
// retention cutoff date. It returns the destination path of the written
// file. A nil or empty batch is a no-op.
func (a *Archiver) Archive(executions []*models.TaskExecution, cutoff time.Time) (string, error) {
	if len(executions) == 0 {
		return "", nil
	}

	name := fmt.Sprintf("task_executions_%s.parquet", cutoff.Format("2006-01-02"))

	var (
		fw   source.ParquetFile
		dest string
		err  error
	)
	switch a.cfg.Destination {
	case "s3":
		dest = filepath.Join(a.cfg.Path, name)
		fw, err = newS3File(a.cfg.Region, a.cfg.BucketName, dest)
		if err != nil {
			return "", fmt.Errorf("failed to create S3 parquet file: %w", err)
		}
	default:
		dest = filepath.Join(a.cfg.Path, name)
		fw, err = local.NewLocalFileWriter(dest)
		if err != nil {
			return "", fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	pw, err := writer.NewParquetWriter(fw, new(executionRow), 4)
	if err != nil {
		fw.Close()
		return "", fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, exec := range executions {
		row := executionRow{
			ID:         exec.ID,
			TaskType:   string(exec.TaskType),
			StartedAt:  exec.StartedAt.UnixMilli(),
			DurationMs: exec.DurationMs,
			Success:    exec.Success,
			Error:      exec.Error,
		}
		if err := pw.Write(row); err != nil {
			fw.Close()
			return "", fmt.Errorf("failed to write parquet row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return "", fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return "", fmt.Errorf("failed to close parquet file: %w", err)
	}
	return dest, nil
}
