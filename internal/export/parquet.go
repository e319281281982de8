package export

import (
	"fmt"
	"io"

	"github.com/luctussier/Heart-Monitor/internal/heartrate"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type beatParquetRow struct {
	Seq      int64 `parquet:"name=seq, type=INT64"`
	TimeMs   int64 `parquet:"name=time_ms, type=INT64"`
	PeriodMs int32 `parquet:"name=period_ms, type=INT32"`
	Valid    bool  `parquet:"name=valid, type=BOOLEAN"`
	BPM      int32 `parquet:"name=bpm, type=INT32"`
}

// WriteParquet writes every beat of w, valid or not, as a parquet table.
func WriteParquet(out io.Writer, w *heartrate.Workout) error {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(beatParquetRow), 4)
	if err != nil {
		return fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i, b := range w.Beats {
		row := beatParquetRow{
			Seq:      int64(i),
			TimeMs:   b.Time,
			PeriodMs: int32(b.Period),
			Valid:    b.Valid,
			BPM:      int32(heartrate.BPM(float64(b.Period))),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("writing parquet row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finishing parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("closing parquet buffer: %w", err)
	}
	if _, err := out.Write(fw.Bytes()); err != nil {
		return fmt.Errorf("writing parquet: %w", err)
	}
	return nil
}
