// package formatter renders gallery layouts and catalog listings as CSV, Markdown, JSON or a terminal table
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/mosaic/internal/gallery"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

// Supported output formats.
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Formats lists the accepted format names.
var Formats = []string{FormatTable, FormatCSV, FormatMarkdown, FormatJSON}

// TileRow is one placed item of a [LayoutExport].
type TileRow struct {
	Index  int     `json:"index"`
	ID     int64   `json:"id"`
	Lane   int     `json:"lane"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Scale  float64 `json:"hover_scale"`
	Origin string  `json:"hover_origin"`
}

// LayoutExport is a snapshot of a computed grid.
type LayoutExport struct {
	ContainerWidth float64   `json:"container_width"`
	Lanes          int       `json:"lanes"`
	ItemWidth      float64   `json:"item_width"`
	Offset         float64   `json:"offset"`
	TotalHeight    float64   `json:"total_height"`
	Tiles          []TileRow `json:"tiles"`
}

// NewLayoutExport snapshots every placed item of e, not only the mounted window.
func NewLayoutExport(e *gallery.Engine, containerWidth float64) *LayoutExport {
	layout := e.Layout()
	placements := e.Placements()
	items := e.Items()
	total := e.TotalHeight()

	export := &LayoutExport{
		ContainerWidth: containerWidth,
		Lanes:          layout.Lanes,
		ItemWidth:      layout.ItemWidth,
		Offset:         layout.Offset,
		TotalHeight:    total,
		Tiles:          make([]TileRow, 0, len(placements)),
	}

	for i, pl := range placements {
		mag := gallery.Magnify(gallery.MagnifyInput{
			Lane:           pl.Lane,
			Lanes:          layout.Lanes,
			PlacedWidth:    layout.ItemWidth,
			IntrinsicWidth: items[i].Width,
			Start:          pl.Start,
			Height:         pl.Height,
			TotalHeight:    total,
		})
		export.Tiles = append(export.Tiles, TileRow{
			Index:  i,
			ID:     items[i].ID,
			Lane:   pl.Lane,
			X:      layout.LaneX(pl.Lane),
			Y:      pl.Start,
			Width:  layout.ItemWidth,
			Height: pl.Height,
			Scale:  mag.Scale,
			Origin: mag.Origin.String(),
		})
	}
	return export
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func (r TileRow) record() []string {
	return []string{
		strconv.Itoa(r.Index),
		strconv.FormatInt(r.ID, 10),
		strconv.Itoa(r.Lane),
		num(r.X),
		num(r.Y),
		num(r.Width),
		num(r.Height),
		strconv.FormatFloat(r.Scale, 'f', 2, 64),
		r.Origin,
	}
}

var tileHeaders = []string{"Index", "ID", "Lane", "X", "Y", "Width", "Height", "Scale", "Origin"}

// ExportToCSV converts a LayoutExport to CSV format with one row per tile
func ExportToCSV(export *LayoutExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(tileHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, tile := range export.Tiles {
		if err := writer.Write(tile.record()); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a LayoutExport to a Markdown summary and tile table
func ExportToMarkdown(export *LayoutExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Layout\n\n")
	buf.WriteString(fmt.Sprintf("**Container**: %s\n", num(export.ContainerWidth)))
	buf.WriteString(fmt.Sprintf("**Lanes**: %d\n", export.Lanes))
	buf.WriteString(fmt.Sprintf("**Item width**: %s\n", num(export.ItemWidth)))
	buf.WriteString(fmt.Sprintf("**Total height**: %s\n\n", num(export.TotalHeight)))

	buf.WriteString("## Tiles\n\n")
	buf.WriteString("| " + strings.Join(tileHeaders, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(tileHeaders)) + "\n")
	for _, tile := range export.Tiles {
		buf.WriteString("| " + strings.Join(tile.record(), " | ") + " |\n")
	}

	return buf.Bytes(), nil
}

// ExportToTable renders a LayoutExport as a bordered terminal table
func ExportToTable(export *LayoutExport) []byte {
	rows := make([][]string, len(export.Tiles))
	for i, tile := range export.Tiles {
		rows[i] = tile.record()
	}

	summary := fmt.Sprintf("%d lanes × %s, offset %s, height %s\n",
		export.Lanes, num(export.ItemWidth), num(export.Offset), num(export.TotalHeight))
	return []byte(summary + renderTable(tileHeaders, rows) + "\n")
}

// ExportLayout renders export in the named format.
func ExportLayout(export *LayoutExport, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatJSON:
		return shared.MarshalJSON(export, true)
	case FormatTable, "":
		return ExportToTable(export), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// WriteLayoutExport renders export and writes it to path.
func WriteLayoutExport(export *LayoutExport, format, path string) error {
	data, err := ExportLayout(export, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write layout export: %w", err)
	}
	return nil
}

// MediaRow is the listing form of a catalogued item.
type MediaRow struct {
	Sequence int64  `json:"sequence"`
	ID       string `json:"id"`
	Path     string `json:"path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size_bytes"`
}

var mediaHeaders = []string{"#", "Path", "Width", "Height", "Size"}

func (r MediaRow) record() []string {
	return []string{
		strconv.FormatInt(r.Sequence, 10),
		r.Path,
		strconv.Itoa(r.Width),
		strconv.Itoa(r.Height),
		FormatBytes(r.Size),
	}
}

// MediaRows converts catalog records for display.
func MediaRows(media []*models.MediaItem) []MediaRow {
	rows := make([]MediaRow, len(media))
	for i, m := range media {
		rows[i] = MediaRow{
			Sequence: m.Sequence(),
			ID:       m.ID(),
			Path:     m.Path(),
			Width:    m.Width(),
			Height:   m.Height(),
			Size:     m.SizeBytes(),
		}
	}
	return rows
}

// ExportMedia renders a catalog listing in the named format.
func ExportMedia(rows []MediaRow, format string) ([]byte, error) {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}

	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(mediaHeaders); err != nil {
			return nil, fmt.Errorf("failed to write CSV headers: %w", err)
		}
		if err := w.WriteAll(records); err != nil {
			return nil, fmt.Errorf("CSV writer error: %w", err)
		}
		return buf.Bytes(), nil
	case FormatMarkdown:
		var buf bytes.Buffer
		buf.WriteString("| " + strings.Join(mediaHeaders, " | ") + " |\n")
		buf.WriteString("|" + strings.Repeat(" --- |", len(mediaHeaders)) + "\n")
		for _, rec := range records {
			buf.WriteString("| " + strings.Join(rec, " | ") + " |\n")
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return shared.MarshalJSON(rows, true)
	case FormatTable, "":
		return []byte(renderTable(mediaHeaders, records) + "\n"), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// FormatBytes renders a byte count with a binary unit, e.g. "1.5 KiB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}
