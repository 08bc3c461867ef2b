package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voxdesk/voxdesk/internal/model"
	"github.com/voxdesk/voxdesk/internal/pkg/response"
	"github.com/voxdesk/voxdesk/internal/service"
)

// maxUploadBytes caps a single multipart upload request.
const maxUploadBytes = 64 << 20

type DocumentHandler struct {
	departments *service.DepartmentService
	ingest      *service.IngestService
	documents   service.DocumentStore
	uploadedBy  string
}

func NewDocumentHandler(departments *service.DepartmentService, ingest *service.IngestService, documents service.DocumentStore, uploadedBy string) *DocumentHandler {
	return &DocumentHandler{
		departments: departments,
		ingest:      ingest,
		documents:   documents,
		uploadedBy:  uploadedBy,
	}
}

// Upload ingests a multipart batch of files into one department. Files that
// fail are skipped; the response only lists the documents that made it.
func (h *DocumentHandler) Upload(c *gin.Context) {
	dept, err := h.departments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "multipart form is required")
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["file"]
	}
	if len(fileHeaders) == 0 {
		response.Error(c, http.StatusBadRequest, "invalid", "at least one file is required")
		return
	}

	files := make([]service.UploadFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		data, err := readFormFile(header)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid", "failed to read file: "+header.Filename)
			return
		}
		files = append(files, service.UploadFile{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	created := h.ingest.IngestBatch(c.Request.Context(), service.IngestInput{
		Department:  dept,
		Files:       files,
		Description: c.PostForm("description"),
		UploadedBy:  h.uploadedBy,
	})
	response.Created(c, gin.H{
		"documents": created,
		"count":     len(created),
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	dept, err := h.departments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	docs, err := h.documents.ListByDepartment(c.Request.Context(), dept.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	response.OK(c, gin.H{
		"documents": docs,
		"count":     len(docs),
	})
}

func readFormFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
