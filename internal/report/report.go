package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"

	"github.com/NaifAbdullah1/Duplicate-Image-Deletion-Tool/internal/imgmatch"
)

// Meta describes the run a report belongs to.
type Meta struct {
	RunID       string
	Root        string
	Strategy    string
	Metric      string
	Started     time.Time
	Failures    int
	Unsupported int
}

// Log writes the partition as structured log lines, one per cluster member.
func Log(p *imgmatch.Partition) {
	for i, rep := range p.Clusters() {
		logger := logrus.WithField("group", i+1)
		logger.WithField("path", rep.ID).Infof("Keeping %s", describe(rep))
		for _, m := range rep.Group {
			logger.WithField("path", m.ID).Infof("Duplicate %s", describe(m))
		}
	}
	logrus.Infof("%d images, %d groups, %d duplicates", p.Total, len(p.Clusters()), p.Absorbed())
}

func describe(r *imgmatch.Record) string {
	s := fmt.Sprintf("%dx%d px, %s", r.PixelWidth, r.PixelHeight, humanSize(r.ByteSize))
	if r.HorizontalResolution > 0 || r.VerticalResolution > 0 {
		s += fmt.Sprintf(", %.0fx%.0f dpi", r.HorizontalResolution, r.VerticalResolution)
	}
	return s
}

func humanSize(n int64) string {
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

// WritePDF renders the partition into a PDF document at path.
func WritePDF(path string, p *imgmatch.Partition, meta Meta) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Duplicate image report", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Duplicate image report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		"Directory: " + meta.Root,
		"Run: " + meta.RunID,
		"Started: " + meta.Started.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("Hash: %s, %s", meta.Strategy, meta.Metric),
		fmt.Sprintf("Images: %d, groups: %d, duplicates: %d", p.Total, len(p.Clusters()), p.Absorbed()),
		fmt.Sprintf("Unreadable files: %d, unsupported files: %d", meta.Failures, meta.Unsupported),
	} {
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for i, rep := range p.Clusters() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Group %d (%d images)", i+1, len(rep.Group)+1), "B", 1, "L", false, 0, "")
		writeRecord(pdf, tr, "Keep", rep)
		for _, m := range rep.Group {
			writeRecord(pdf, tr, "Duplicate", m)
		}
		pdf.Ln(3)
	}

	var singles []*imgmatch.Record
	for _, rep := range p.Representatives {
		if len(rep.Group) == 0 {
			singles = append(singles, rep)
		}
	}
	if len(singles) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Unique images (%d)", len(singles)), "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, r := range singles {
			pdf.CellFormat(130, 5, tr(filepath.Base(r.ID)), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 5, describe(r), "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func writeRecord(pdf *fpdf.Fpdf, tr func(string) string, role string, r *imgmatch.Record) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(20, 5, role, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, tr(r.ID), "", "L", false)
	pdf.SetX(pdf.GetX() + 20)
	pdf.CellFormat(0, 5, describe(r), "", 1, "L", false, 0, "")
	pdf.SetFont("Courier", "", 7)
	pdf.SetX(pdf.GetX() + 20)
	pdf.MultiCell(0, 3.5, r.Fingerprint.Hex(), "", "L", false)
}
