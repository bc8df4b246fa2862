package curator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/barreldb/barrel/models"
)

/*
WriteFasta render sequence records in FASTA form.

Records are headed by their version tag, so the materialized file pins the
exact registry revisions a sealed snapshot was built from.

	@param target io.Writer - output writer
	@param records []models.SequenceRecord - the records to render
*/
func WriteFasta(target io.Writer, records []models.SequenceRecord) error {
	buffered := bufio.NewWriter(target)
	for _, record := range records {
		if _, err := fmt.Fprintf(
			buffered, ">%s\n%s\n", record.VersionTag, record.DNASequence,
		); err != nil {
			return fmt.Errorf(
				"failed to render record '%s' as FASTA [%w]", record.AccessionNumber, err,
			)
		}
	}
	return buffered.Flush()
}

/*
ExportFasta write sequence records to a FASTA file, creating parent directories

	@param path string - output file path
	@param records []models.SequenceRecord - the records to render
*/
func ExportFasta(path string, records []models.SequenceRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to prepare FASTA output directory [%w]", err)
	}

	target, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create FASTA file '%s' [%w]", path, err)
	}
	defer func() { _ = target.Close() }()

	return WriteFasta(target, records)
}
