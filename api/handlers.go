package api

import (
	"fmt"
	"net/http"
	"strings"

	"pdf_toolkit/download"
	pdfPkg "pdf_toolkit/pdf"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type rotateRequest struct {
	Angle  int    `form:"angle" binding:"required,oneof=90 180 270"`
	Target string `form:"target" binding:"omitempty,oneof=all specific"`
	Pages  string `form:"pages"`
	Mode   string `form:"mode" binding:"omitempty,oneof=absolute relative"`
}

type watermarkRequest struct {
	Type     string `form:"type" binding:"omitempty,oneof=text image"`
	Text     string `form:"text"`
	Opacity  *int   `form:"opacity" binding:"omitempty,min=0,max=100"`
	Position string `form:"position" binding:"omitempty,oneof=center top-left top-right bottom-left bottom-right tile"`
}

type splitRequest struct {
	Method string `form:"method" binding:"omitempty,oneof=all range ranges custom"`
	Pages  string `form:"pages"`
}

type compressRequest struct {
	Quality *int `form:"quality" binding:"omitempty,min=10,max=100"`
}

func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pdf_toolkit",
	})
}

func (s *Service) HandleInfo(c *gin.Context) {
	s.run(c, "info", func(c *gin.Context, op *operation) (gin.H, error) {
		u, doc, err := s.loadDocument(c)
		if err != nil {
			return nil, err
		}
		pages, err := doc.Pages()
		if err != nil {
			return nil, err
		}
		return gin.H{
			"filename":   u.Name,
			"page_count": doc.PageCount(),
			"pages":      pages,
			"size":       len(u.Data),
			"size_human": download.FormatSize(int64(len(u.Data))),
		}, nil
	})
}

func (s *Service) HandleMerge(c *gin.Context) {
	s.run(c, "merge", func(c *gin.Context, op *operation) (gin.H, error) {
		uploads, err := s.readUploads(c)
		if err != nil {
			return nil, err
		}
		if len(uploads) < 2 {
			return nil, badRequest("Please upload at least two PDF files to merge.")
		}

		inputs := make([][]byte, len(uploads))
		for i, u := range uploads {
			inputs[i] = u.Data
		}

		merged, err := pdfPkg.Merge(inputs, pdfPkg.LoadOptions{Password: c.PostForm("password")})
		if err != nil {
			return nil, err
		}

		op.log.WithField("input_files", len(uploads)).Info("documents merged")
		return gin.H{
			"input_files": len(uploads),
			"file":        op.publish(merged, "merged.pdf", pdfPkg.MimeType),
		}, nil
	})
}

func (s *Service) HandleSplit(c *gin.Context) {
	s.run(c, "split", func(c *gin.Context, op *operation) (gin.H, error) {
		var req splitRequest
		if err := c.ShouldBind(&req); err != nil {
			return nil, invalidForm(err)
		}
		if req.Method == "" {
			req.Method = "all"
		}

		u, doc, err := s.loadDocument(c)
		if err != nil {
			return nil, err
		}

		var files []outputFile
		var resources []*download.Resource
		add := func(data []byte, name string) {
			res := download.NewResource(data, name, pdfPkg.MimeType)
			resources = append(resources, res)
			files = append(files, op.publishResource(res))
		}

		switch req.Method {
		case "range":
			pages, err := s.selectPages(req.Pages, doc)
			if err != nil {
				return nil, err
			}
			out, err := pdfPkg.Extract(doc, pages, s.config.PagePolicy)
			if err != nil {
				return nil, err
			}
			add(out, download.OutputName(u.Name, "extracted_pages"))

		case "ranges":
			parts, err := pdfPkg.Split(doc, pdfPkg.ParsePageRangeList(req.Pages), s.config.PagePolicy)
			if err != nil {
				return nil, err
			}
			if len(parts) == 0 {
				return nil, pdfPkg.ErrNoValidPages
			}
			for _, p := range parts {
				add(p.Data, download.OutputName(u.Name, "pages_"+p.Range.String()))
			}

		case "custom":
			parts, err := pdfPkg.SplitHalves(doc)
			if err != nil {
				return nil, err
			}
			for i, p := range parts {
				add(p.Data, download.OutputName(u.Name, fmt.Sprintf("part%d", i+1)))
			}

		default:
			parts, err := pdfPkg.SplitEvery(doc)
			if err != nil {
				return nil, err
			}
			for _, p := range parts {
				add(p.Data, download.OutputName(u.Name, fmt.Sprintf("page_%d", p.Range.Start)))
			}
		}

		resp := gin.H{
			"method":      req.Method,
			"input_pages": doc.PageCount(),
			"files":       files,
		}
		if len(resources) > 1 {
			archive, err := download.Archive(strings.TrimSuffix(download.OutputName(u.Name, "split"), ".pdf")+".zip", resources)
			if err != nil {
				return nil, err
			}
			resp["archive"] = op.publishResource(archive)
		}

		op.log.WithFields(logrus.Fields{
			"method":       req.Method,
			"input_pages":  doc.PageCount(),
			"output_files": len(files),
		}).Info("document split")
		return resp, nil
	})
}

func (s *Service) HandleExtract(c *gin.Context) {
	s.run(c, "extract", func(c *gin.Context, op *operation) (gin.H, error) {
		u, doc, err := s.loadDocument(c)
		if err != nil {
			return nil, err
		}
		pages, err := s.selectPages(c.PostForm("pages"), doc)
		if err != nil {
			return nil, err
		}

		out, err := pdfPkg.Extract(doc, pages, s.config.PagePolicy)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"pages": pages,
			"file":  op.publish(out, download.OutputName(u.Name, "extracted"), pdfPkg.MimeType),
		}, nil
	})
}

func (s *Service) HandleRotate(c *gin.Context) {
	s.run(c, "rotate", func(c *gin.Context, op *operation) (gin.H, error) {
		var req rotateRequest
		if err := c.ShouldBind(&req); err != nil {
			return nil, invalidForm(err)
		}
		if req.Target == "specific" && strings.TrimSpace(req.Pages) == "" {
			return nil, badRequest("Please enter page numbers to rotate.")
		}
		mode, err := pdfPkg.ParseRotationMode(req.Mode)
		if err != nil {
			return nil, badRequest("%v", err)
		}

		u, doc, err := s.loadDocument(c)
		if err != nil {
			return nil, err
		}

		spec := pdfPkg.RotationSpec{Angle: req.Angle, All: req.Target != "specific", Mode: mode}
		if !spec.All {
			if spec.Pages, err = s.selectPages(req.Pages, doc); err != nil {
				return nil, err
			}
		}

		out, err := pdfPkg.Rotate(doc, spec, s.config.PagePolicy)
		if err != nil {
			return nil, err
		}

		op.log.WithFields(logrus.Fields{"angle": req.Angle, "all": spec.All, "pages": len(spec.Pages)}).Info("pages rotated")
		return gin.H{
			"angle": req.Angle,
			"file":  op.publish(out, download.OutputName(u.Name, "rotated"), pdfPkg.MimeType),
		}, nil
	})
}

func (s *Service) HandleWatermark(c *gin.Context) {
	s.run(c, "watermark", func(c *gin.Context, op *operation) (gin.H, error) {
		var req watermarkRequest
		if err := c.ShouldBind(&req); err != nil {
			return nil, invalidForm(err)
		}

		spec := pdfPkg.WatermarkSpec{
			Kind:     pdfPkg.WatermarkKind(req.Type),
			Text:     req.Text,
			Opacity:  DefaultOpacity,
			Position: pdfPkg.Position(req.Position),
		}
		if spec.Kind == "" {
			spec.Kind = pdfPkg.WatermarkText
		}
		if req.Opacity != nil {
			spec.Opacity = *req.Opacity
		}
		// Reject before reading the upload so unsupported requests fail fast.
		if err := spec.Validate(); err != nil {
			return nil, err
		}

		u, doc, err := s.loadDocument(c)
		if err != nil {
			return nil, err
		}

		out, err := pdfPkg.AddWatermark(doc, spec)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"position": spec.Position,
			"opacity":  spec.Opacity,
			"file":     op.publish(out, download.OutputName(u.Name, "watermarked"), pdfPkg.MimeType),
		}, nil
	})
}

func (s *Service) HandleCompress(c *gin.Context) {
	s.run(c, "compress", func(c *gin.Context, op *operation) (gin.H, error) {
		var req compressRequest
		if err := c.ShouldBind(&req); err != nil {
			return nil, invalidForm(err)
		}
		quality := DefaultQuality
		if req.Quality != nil {
			quality = *req.Quality
		}

		u, doc, err := s.loadDocument(c)
		if err != nil {
			return nil, err
		}

		out, err := pdfPkg.Compress(doc, quality)
		if err != nil {
			return nil, err
		}

		originalSize := int64(len(u.Data))
		compressedSize := int64(len(out))
		reduction := 0
		if originalSize > 0 {
			reduction = int((1 - float64(compressedSize)/float64(originalSize)) * 100)
		}

		op.log.WithFields(logrus.Fields{
			"original_size":     originalSize,
			"compressed_size":   compressedSize,
			"reduction_percent": reduction,
		}).Info("document compressed")
		return gin.H{
			"quality":               quality,
			"quality_label":         pdfPkg.QualityLabel(quality),
			"original_size":         originalSize,
			"original_size_human":   download.FormatSize(originalSize),
			"compressed_size":       compressedSize,
			"compressed_size_human": download.FormatSize(compressedSize),
			"reduction_percent":     reduction,
			"file":                  op.publish(out, download.OutputName(u.Name, "compressed"), pdfPkg.MimeType),
		}, nil
	})
}

func (s *Service) HandleRemovePages(c *gin.Context) {
	s.run(c, "remove-pages", func(c *gin.Context, op *operation) (gin.H, error) {
		pagesParam := c.PostForm("pages")
		if strings.TrimSpace(pagesParam) == "" {
			return nil, badRequest("No pages specified")
		}

		u, doc, err := s.loadDocument(c)
		if err != nil {
			return nil, err
		}
		pages, err := s.selectPages(pagesParam, doc)
		if err != nil {
			return nil, err
		}

		out, err := pdfPkg.RemovePages(doc, pages, s.config.PagePolicy)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"removed": pages,
			"file":    op.publish(out, download.OutputName(u.Name, "pages_removed"), pdfPkg.MimeType),
		}, nil
	})
}

// HandleDownload serves a transient reference as an attachment and
// releases it shortly after the transfer starts.
func (s *Service) HandleDownload(c *gin.Context) {
	id := c.Param("id")
	res, ok := s.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": msgDownloadGone})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	c.Data(http.StatusOK, res.ContentType, res.Data)

	s.store.ReleaseAfter(id, s.config.ReleaseDelay)
	s.logger.WithFields(logrus.Fields{
		"resource_id": id,
		"filename":    res.Filename,
		"size":        res.Size(),
	}).Info("download served")
}

// HandleRelease drops a reference the client no longer needs.
func (s *Service) HandleRelease(c *gin.Context) {
	if !s.store.Release(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgDownloadGone})
		return
	}
	c.Status(http.StatusNoContent)
}

// loadDocument reads the "pdf" upload and parses it, using the optional
// "password" form field.
func (s *Service) loadDocument(c *gin.Context) (*upload, *pdfPkg.Document, error) {
	u, err := s.readUpload(c)
	if err != nil {
		return nil, nil, err
	}
	doc, err := pdfPkg.Load(u.Data, pdfPkg.LoadOptions{Password: c.PostForm("password")})
	if err != nil {
		return nil, nil, err
	}
	return u, doc, nil
}

// selectPages parses a page specification for doc. Empty input, or input
// that yields no page, is reported as invalid page numbers.
func (s *Service) selectPages(spec string, doc *pdfPkg.Document) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, pdfPkg.ErrNoValidPages
	}
	pages, err := pdfPkg.SelectPages(spec, doc.PageCount(), s.config.PagePolicy)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, pdfPkg.ErrNoValidPages
	}
	return pages, nil
}

func invalidForm(err error) error {
	return &requestError{status: http.StatusBadRequest, msg: err.Error()}
}
