package utils

import (
	"archive/zip"
	"bytes"
)

// ZipFiles builds an in-memory zip archive from named byte blobs. The backup
// worker uses it to bundle the per-table JSON exports before upload.
func ZipFiles(files map[string][]byte) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	for name, data := range files {
		f, err := w.Create(name)
		if err != nil {
			w.Close()
			return nil, err
		}
		if _, err := f.Write(data); err != nil {
			w.Close()
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
