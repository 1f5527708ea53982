//go:build js

package pipeline

func marshalSamplesParquet([]SampleRow) ([]byte, error) {
	return nil, errParquetUnsupported
}
