package pdf

import (
	"fmt"
	"regexp"
	"time"

	"timetable-sync-service/pkg/utils"

	"github.com/ledongthuc/pdf"
)

// The timetable PDF carries its revision on the first page as
// "Version: 17.04.2024, 10:01 Uhr"
var versionRe = regexp.MustCompile(`Version:\s*(\d{2}\.\d{2}\.\d{4}),\s*(\d{2}:\d{2})\s*Uhr`)

// VersionFromPDF reads the version stamp off the first page of the PDF.
// The stamp doubles as the version timestamp of the extracted event set and
// as the year anchor for dates printed without one.
func VersionFromPDF(path string, loc *time.Location) (time.Time, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return time.Time{}, fmt.Errorf("pdf %s has no pages", path)
	}

	page := r.Page(1)
	if page.V.IsNull() {
		return time.Time{}, fmt.Errorf("pdf %s: first page has no content", path)
	}

	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		font := page.Font(name)
		fonts[name] = &font
	}

	text, err := page.GetPlainText(fonts)
	if err != nil {
		return time.Time{}, fmt.Errorf("read first page of %s: %w", path, err)
	}

	return ParseVersionStamp(text, loc)
}

// ParseVersionStamp finds and parses the version stamp in page text
func ParseVersionStamp(text string, loc *time.Location) (time.Time, error) {
	m := versionRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, fmt.Errorf("version stamp not found in page text")
	}
	stamp, err := time.ParseInLocation(utils.VERSION_LAYOUT, m[1]+" "+m[2], loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse version stamp %q %q: %w", m[1], m[2], err)
	}
	return stamp, nil
}
