// package formatter provides pure rendering of passport data to text and export formats (CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/tuniverse/tvx/internal/services"
)

// NoDataMessage is the required empty-state text for a passport with zero
// artists. A zero count looks like a failed fetch to an end user unless it
// is labeled explicitly, so callers render this instead of a zeroed listing.
const NoDataMessage = "No passport data available yet. Listen to some music and try again."

// RenderPassport converts a passport to its canonical text form.
//
// Countries are sorted lexicographically by code and regions by name so the
// output is deterministic regardless of map iteration order. Region values
// are percentages rounded half-up to the nearest integer.
func RenderPassport(p *services.Passport) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Music Passport: %d artists\n", p.TotalArtists))

	buf.WriteString("\nCountries:\n")
	if len(p.CountryCounts) == 0 {
		buf.WriteString("(none)\n")
	} else {
		for _, code := range sortedKeys(p.CountryCounts) {
			buf.WriteString(fmt.Sprintf("• %s: %d\n", code, p.CountryCounts[code]))
		}
	}

	buf.WriteString("\nRegions:\n")
	if len(p.RegionPercentages) == 0 {
		buf.WriteString("(none)\n")
	} else {
		for _, name := range sortedKeys(p.RegionPercentages) {
			buf.WriteString(fmt.Sprintf("• %s: %d%%\n", name, roundPercent(p.RegionPercentages[name])))
		}
	}

	if p.ShareLink != nil && *p.ShareLink != "" {
		buf.WriteString(fmt.Sprintf("\nShare: %s\n", *p.ShareLink))
	}

	return buf.String()
}

// RenderProfile converts a profile to text. Absent optional fields render as
// "(unknown)"; the placeholder is applied here, never at decode time.
func RenderProfile(p *services.Profile) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("ID: %s\n", p.ID))
	buf.WriteString(fmt.Sprintf("Name: %s\n", orUnknown(p.DisplayName)))
	buf.WriteString(fmt.Sprintf("Email: %s\n", orUnknown(p.Email)))
	buf.WriteString(fmt.Sprintf("Country: %s\n", orUnknown(p.Country)))
	buf.WriteString(fmt.Sprintf("Product: %s\n", orUnknown(p.Product)))

	return buf.String()
}

// RenderPlaylists converts a playlist page to text. An absent track count
// renders as a literal "?" placeholder, never as a default count.
func RenderPlaylists(page *services.PlaylistPage) string {
	var buf bytes.Buffer

	if len(page.Items) == 0 {
		buf.WriteString("No playlists found.\n")
		return buf.String()
	}

	buf.WriteString(fmt.Sprintf("Found %d playlists:\n", len(page.Items)))
	for i, item := range page.Items {
		buf.WriteString(fmt.Sprintf("%d. %s (%s tracks)\n", i+1, item.Name, trackCountLabel(item.TrackCount)))
	}

	return buf.String()
}

// ExportToCSV converts a passport's country counts to CSV with columns: Country, Artists
func ExportToCSV(p *services.Passport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Country", "Artists"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, code := range sortedKeys(p.CountryCounts) {
		record := []string{code, strconv.Itoa(p.CountryCounts[code])}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a passport to Markdown format
func ExportToMarkdown(p *services.Passport, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Music Passport"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	if p.UserID != nil && *p.UserID != "" {
		buf.WriteString(fmt.Sprintf("**User**: %s\n", *p.UserID))
	}
	buf.WriteString(fmt.Sprintf("**Artists**: %d\n\n", p.TotalArtists))

	if p.TotalArtists == 0 {
		buf.WriteString(NoDataMessage + "\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("## Countries\n\n")
	for _, code := range sortedKeys(p.CountryCounts) {
		buf.WriteString(fmt.Sprintf("- %s: %d\n", code, p.CountryCounts[code]))
	}

	buf.WriteString("\n## Regions\n\n")
	for _, name := range sortedKeys(p.RegionPercentages) {
		buf.WriteString(fmt.Sprintf("- %s: %d%%\n", name, roundPercent(p.RegionPercentages[name])))
	}

	if p.ShareLink != nil && *p.ShareLink != "" {
		buf.WriteString(fmt.Sprintf("\n![Passport](%s)\n", *p.ShareLink))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a passport to plain text, applying the no-data
// branch when the artist count is zero.
func ExportToText(p *services.Passport) ([]byte, error) {
	if p.TotalArtists == 0 {
		return []byte(NoDataMessage + "\n"), nil
	}
	return []byte(RenderPassport(p)), nil
}

// DownloadImage downloads a share image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// roundPercent converts a fraction in [0,1] to an integer percent using
// round-half-up (0.417 -> 42, 0.005 -> 1).
func roundPercent(v float64) int {
	return int(math.Floor(v*100 + 0.5))
}

func trackCountLabel(count *int) string {
	if count == nil {
		return "?"
	}
	return strconv.Itoa(*count)
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return "(unknown)"
	}
	return *s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
