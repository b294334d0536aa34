package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/pocketbook/internal/importer/csvfile"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

// ErrUnknownFormat is returned for a format no importer handles.
var ErrUnknownFormat = errors.New("unknown import format")

type Service struct {
	csvImporter Importer
}

func NewService() *Service {
	return &Service{
		csvImporter: csvfile.NewParser(),
	}
}

// Import parses r without touching the ledger. An empty format means CSV.
func (s *Service) Import(format Format, r io.Reader) ([]transaction.CreateParams, error) {
	var importer Importer

	switch format {
	case FormatCSV, "":
		importer = s.csvImporter
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	return importer.Parse(r)
}
