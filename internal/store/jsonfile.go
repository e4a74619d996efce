// Package store persists the whole user collection as a single JSON document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Record is one user as it appears in the data file.
type Record struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document is the top-level shape of the data file.
type Document struct {
	Users []Record `json:"users"`
}

type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (f *JSONFile) Path() string {
	return f.path
}

// Read returns every record in the file. A missing or malformed file yields an
// empty collection; only unexpected I/O errors are returned.
func (f *JSONFile) Read() ([]Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		logrus.WithError(err).WithField("path", f.path).Warn("Data file is malformed, treating as empty")
		return []Record{}, nil
	}

	if doc.Users == nil {
		return []Record{}, nil
	}
	return doc.Users, nil
}

// Write replaces the file contents with records.
func (f *JSONFile) Write(records []Record) error {
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(Document{Users: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}
