// package formatter renders catalog data for the terminal and exports it to files (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/shared"
)

// Export formats accepted by [WriteVideos].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// normalizeFormat maps aliases to their canonical format name.
func normalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "md":
		return FormatMarkdown
	case "text":
		return FormatText
	default:
		return f
	}
}

// ValidFormat reports whether format names a supported export format.
func ValidFormat(format string) bool {
	switch normalizeFormat(format) {
	case FormatCSV, FormatMarkdown, FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// VideosToCSV converts videos to CSV with columns: ID, Title, Category, Tags, Amazon Link, Video URL, Thumbnail URL
func VideosToCSV(videos []models.Video, cats []models.Category) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Category", "Tags", "Amazon Link", "Video URL", "Thumbnail URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, v := range videos {
		record := []string{
			strconv.FormatInt(v.ID, 10),
			v.Title,
			CategoryName(cats, v.CategoryID),
			strings.Join(v.Tags, ";"),
			v.AmazonLink,
			v.VideoURL,
			v.ThumbnailURL,
		}
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

// VideosToMarkdown converts videos to a Markdown document with one section per video.
func VideosToMarkdown(videos []models.Video, cats []models.Category) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Videos\n\n")
	buf.WriteString(fmt.Sprintf("**Total**: %d\n\n", len(videos)))

	for _, v := range videos {
		buf.WriteString(fmt.Sprintf("## %s\n\n", v.Title))
		buf.WriteString(fmt.Sprintf("- **ID**: %d\n", v.ID))
		buf.WriteString(fmt.Sprintf("- **Category**: %s\n", CategoryName(cats, v.CategoryID)))
		if len(v.Tags) > 0 {
			buf.WriteString(fmt.Sprintf("- **Tags**: %s\n", strings.Join(v.Tags, ", ")))
		}
		if v.AmazonLink != "" {
			buf.WriteString(fmt.Sprintf("- **Amazon**: [%s](%s)\n", v.AmazonLink, v.AmazonLink))
		}
		if v.ThumbnailURL != "" {
			buf.WriteString(fmt.Sprintf("\n![Thumbnail](%s)\n", v.ThumbnailURL))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// VideosToText converts videos to a numbered plain text list.
func VideosToText(videos []models.Video, cats []models.Category) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Videos: %d\n\n", len(videos)))
	for i, v := range videos {
		buf.WriteString(fmt.Sprintf("%d. %s [%s] (#%d)\n", i+1, v.Title, CategoryName(cats, v.CategoryID), v.ID))
	}

	return buf.Bytes(), nil
}

// VideosToJSON encodes videos as an indented JSON array.
func VideosToJSON(videos []models.Video) ([]byte, error) {
	if videos == nil {
		videos = []models.Video{}
	}
	data, err := shared.MarshalJSON(videos, true)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteVideos writes videos to w in the given format.
func WriteVideos(w io.Writer, format string, videos []models.Video, cats []models.Category) error {
	var (
		data []byte
		err  error
	)

	switch normalizeFormat(format) {
	case FormatCSV:
		data, err = VideosToCSV(videos, cats)
	case FormatMarkdown:
		data, err = VideosToMarkdown(videos, cats)
	case FormatText:
		data, err = VideosToText(videos, cats)
	case FormatJSON:
		data, err = VideosToJSON(videos)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteVideoFile writes videos to the file at path in the given format, replacing any existing file.
//
// The parent directory must exist.
func WriteVideoFile(path, format string, videos []models.Video, cats []models.Category) error {
	if !ValidFormat(format) {
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WriteVideos(f, format, videos, cats); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CategoryName looks up id in cats and returns "-" when it is nil or missing.
func CategoryName(cats []models.Category, id *int64) string {
	if id == nil {
		return "-"
	}
	for _, c := range cats {
		if c.ID == *id {
			return c.Name
		}
	}
	return "-"
}
