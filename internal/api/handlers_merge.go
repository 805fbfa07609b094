package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/reportmerge/internal/docmodel"
	"github.com/dgallion1/reportmerge/internal/inject"
	"github.com/dgallion1/reportmerge/internal/report"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// mergeRequest is the JSON body of POST /api/sessions/{id}/merge. Image
// bytes ride along base64-encoded; width defaults to the configured value.
type mergeRequest struct {
	Chapter          int               `json:"chapter"`
	SectionStart     int               `json:"section_start"`
	RenumberHeadings bool              `json:"renumber_headings"`
	RenumberCaptions bool              `json:"renumber_captions"`
	SectionBanners   bool              `json:"section_banners"`
	ProjectTitle     string            `json:"project_title"`
	ReportDate       string            `json:"report_date"`
	Mapping          map[string]string `json:"mapping,omitempty"`
	Images           []mergeImage      `json:"images,omitempty"`
}

type mergeImage struct {
	Data    string  `json:"data"` // base64
	Caption string  `json:"caption"`
	Anchor  string  `json:"anchor"`
	WidthCM float64 `json:"width_cm,omitempty"`
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFrom(w, r)
	if sess == nil {
		return
	}

	var body mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.Chapter == 0 {
		body.Chapter = s.cfg.DefaultChapter
	}
	if body.SectionStart == 0 {
		body.SectionStart = s.cfg.DefaultSectionStart
	}

	req := report.Request{
		Chapter:          body.Chapter,
		SectionStart:     body.SectionStart,
		RenumberHeadings: body.RenumberHeadings,
		RenumberCaptions: body.RenumberCaptions,
		SectionBanners:   body.SectionBanners,
		ProjectTitle:     body.ProjectTitle,
		ReportDate:       body.ReportDate,
		Mapping:          body.Mapping,
	}
	for _, img := range body.Images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			jsonError(w, "invalid image data for caption "+img.Caption, http.StatusBadRequest)
			return
		}
		widthCM := img.WidthCM
		if widthCM <= 0 {
			widthCM = s.cfg.DefaultImageWidthCM
		}
		req.Insertions = append(req.Insertions, inject.Insertion{
			Image:    data,
			Caption:  img.Caption,
			Anchor:   img.Anchor,
			WidthEMU: int64(widthCM * docmodel.EMUPerCM),
		})
	}

	merger := report.NewMerger(sess.Inventory, s.log)
	result, err := merger.Merge(req)
	if err != nil {
		var uerr *report.UsageError
		if errors.As(err, &uerr) {
			jsonError(w, uerr.Error(), http.StatusBadRequest)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Diagnostics travel in a header so the body can stream the document.
	if len(result.Diagnostics) > 0 {
		diagJSON, _ := json.Marshal(result.Diagnostics)
		w.Header().Set("X-Merge-Diagnostics", string(diagJSON))
	}
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="merged-report.docx"`)
	w.Write(result.Data)
}
