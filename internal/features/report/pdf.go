package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go-inspect/internal/common/apperr"
	"go-inspect/internal/features/user"
	"go-inspect/pkg/utils"
)

// Renderer turns a hydrated report plus its grouped details into a PDF
// document. The concrete renderer is a swappable collaborator; the service
// only decides the filename and the payload encoding.
type Renderer interface {
	Render(ctx context.Context, rep *ReportWithRelations, grouped *GroupedDetails) ([]byte, error)
}

// PDFExport is the download payload: base64 content plus the filename the
// client should save it as.
type PDFExport struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (s *ReportServiceImpl) ExportPDF(ctx context.Context, actor *user.User, id string) (*PDFExport, error) {
	rep, err := s.GetWithRelations(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	grouped, err := s.GroupedDetails(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	doc, err := s.PDF.Render(ctx, rep, grouped)
	if err != nil {
		return nil, apperr.Store(err, "failed to render report document")
	}

	serial := ""
	if rep.Machine != nil {
		serial = rep.Machine.SerialNumber
	}
	return &PDFExport{
		Filename: utils.PDFFilename(rep.Name, rep.CallRef, serial, rep.CreatedAt),
		Content:  base64.StdEncoding.EncodeToString(doc),
	}, nil
}

// TextRenderer is the built-in renderer. It emits a plain-text rendition of
// the report wrapped as a document body so exports work without an external
// rendering service configured.
type TextRenderer struct{}

func NewTextRenderer() Renderer {
	return &TextRenderer{}
}

func (r *TextRenderer) Render(_ context.Context, rep *ReportWithRelations, grouped *GroupedDetails) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Report: %s\n", rep.Name)
	if rep.CallRef != "" {
		fmt.Fprintf(&b, "Call ref: %s\n", rep.CallRef)
	}
	if rep.Machine != nil {
		fmt.Fprintf(&b, "Machine: %s %s\n", rep.MachineTypeName, rep.Machine.SerialNumber)
	}
	if rep.Owner != nil {
		fmt.Fprintf(&b, "Inspector: %s %s\n", rep.Owner.FirstName, rep.Owner.LastName)
	}
	fmt.Fprintf(&b, "Created: %s\n", rep.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Status: %s\n", rep.Status())

	for _, g := range grouped.Groups {
		fmt.Fprintf(&b, "\n== %s ==\n", g.GroupName)
		for _, it := range g.Items {
			fmt.Fprintf(&b, "- %s: %s", it.ItemName, it.StateName)
			if it.InternalNote != "" {
				fmt.Fprintf(&b, " (%s)", it.InternalNote)
			}
			b.WriteString("\n")
		}
	}
	if rep.Comments != "" {
		fmt.Fprintf(&b, "\nComments: %s\n", rep.Comments)
	}
	return []byte(b.String()), nil
}
