package importer

import (
	"io"

	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

// Format names a supported upload layout.
type Format string

const (
	FormatCSV Format = "csv"
)

type Importer interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}
