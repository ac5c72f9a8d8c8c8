package ingest

import (
	"github.com/h2non/filetype"
)

// sniffText rejects binary payloads uploaded under a text extension.
func sniffText(data []byte, fileName string) error {
	if filetype.IsArchive(data) || filetype.IsImage(data) || filetype.IsDocument(data) {
		kind, _ := filetype.Match(data)
		return fail(fileName, "detect", ErrCorrupt, "content is %s, not text", kind.MIME.Value)
	}
	return nil
}

// sniffSpreadsheet requires an OOXML (zip) container.
func sniffSpreadsheet(data []byte, fileName string) error {
	if len(data) == 0 {
		return fail(fileName, "detect", ErrEmpty, "file is empty")
	}
	if !filetype.Is(data, "xlsx") && !filetype.Is(data, "zip") {
		return fail(fileName, "detect", ErrCorrupt, "content is not a spreadsheet")
	}
	return nil
}
