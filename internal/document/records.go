package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyRecord is returned for record files without any content.
var ErrEmptyRecord = errors.New("record file is empty")

// LoadRecordFile reads a pre-extracted record. JSON is accepted too since
// it is valid YAML.
func LoadRecordFile(path string) (*ExtractedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeRecord(data)
}

func DecodeRecord(data []byte) (*ExtractedData, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyRecord
	}

	var record ExtractedData
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if record.Items == nil {
		record.Items = []LineItem{}
	}
	return &record, nil
}
