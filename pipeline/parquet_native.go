//go:build !js

package pipeline

import (
	"math"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type sampleParquetRow struct {
	SampleIndex     int64   `parquet:"name=sample_index, type=INT64"`
	TimeS           float64 `parquet:"name=time_s, type=DOUBLE"`
	ForceN          float64 `parquet:"name=force_n, type=DOUBLE"`
	WorkingForceN   float64 `parquet:"name=working_force_n, type=DOUBLE"`
	LeftForceN      float64 `parquet:"name=left_force_n, type=DOUBLE"`
	RightForceN     float64 `parquet:"name=right_force_n, type=DOUBLE"`
	AccelerationMS2 float64 `parquet:"name=acceleration_m_s2, type=DOUBLE"`
	VelocityMS      float64 `parquet:"name=velocity_m_s, type=DOUBLE"`
	DisplacementM   float64 `parquet:"name=displacement_m, type=DOUBLE"`
	PowerW          float64 `parquet:"name=power_w, type=DOUBLE"`
	Phase           string  `parquet:"name=phase, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

func marshalSamplesParquet(rows []SampleRow) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(sampleParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, s := range rows {
		row := sampleParquetRow{
			SampleIndex:     int64(s.SampleIndex),
			TimeS:           s.TimeS,
			ForceN:          s.ForceN,
			WorkingForceN:   s.WorkingForceN,
			LeftForceN:      valueOrNaN(s.LeftForceN),
			RightForceN:     valueOrNaN(s.RightForceN),
			AccelerationMS2: valueOrNaN(s.AccelerationMS2),
			VelocityMS:      valueOrNaN(s.VelocityMS),
			DisplacementM:   valueOrNaN(s.DisplacementM),
			PowerW:          valueOrNaN(s.PowerW),
			Phase:           s.Phase,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
