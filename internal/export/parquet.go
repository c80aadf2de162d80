package export

import (
	"io"

	"github.com/parquet-go/parquet-go"
)

// ParquetSaver writes rows as a parquet file.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string   { return "parquet" }
func (ParquetSaver) ContentType() string { return "application/vnd.apache.parquet" }

func (ParquetSaver) Save(w io.Writer, rows []Row) error {
	pw := parquet.NewGenericWriter[Row](w)
	if _, err := pw.Write(rows); err != nil {
		return err
	}
	return pw.Close()
}
