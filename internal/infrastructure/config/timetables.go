package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Timetable is the per-timetable configuration: which course group to pull
// out of the PDF and which calendar to keep in sync with it
type Timetable struct {
	Key        string `yaml:"key"`
	Keyword    string `yaml:"keyword"`
	CalendarID string `yaml:"calendar_id"`
	TimeZone   string `yaml:"time_zone"`
	PDFPath    string `yaml:"pdf_path"`
	DryRun     bool   `yaml:"dry_run"`
}

// Location resolves the configured time zone
func (t Timetable) Location() (*time.Location, error) {
	return time.LoadLocation(t.TimeZone)
}

type timetablesFile struct {
	Timetables []Timetable `yaml:"timetables"`
}

// LoadTimetables reads the timetable definitions from a YAML file
func LoadTimetables(path string) ([]Timetable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timetables file: %w", err)
	}

	var file timetablesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse timetables file %s: %w", path, err)
	}
	if len(file.Timetables) == 0 {
		return nil, fmt.Errorf("timetables file %s defines no timetables", path)
	}

	seen := make(map[string]bool)
	for i, t := range file.Timetables {
		if t.Key == "" || t.Keyword == "" || t.CalendarID == "" || t.PDFPath == "" {
			return nil, fmt.Errorf("timetable %d: key, keyword, calendar_id and pdf_path are required", i)
		}
		if seen[t.Key] {
			return nil, fmt.Errorf("duplicate timetable key %q", t.Key)
		}
		seen[t.Key] = true
		if t.TimeZone == "" {
			file.Timetables[i].TimeZone = "Europe/Berlin"
		}
	}

	return file.Timetables, nil
}
