package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"simplemercari/pkg/catalog"
	"simplemercari/pkg/service"
	"simplemercari/pkg/types"
)

type messageResponse struct {
	Message string `json:"message"`
}

// submitResponse 带回落库后的商品，客户端可以用 id 和 image_filename 对账
type submitResponse struct {
	Message string        `json:"message"`
	Item    *catalog.Item `json:"item"`
}

type itemsResponse struct {
	Items []catalog.Item `json:"items"`
}

type categoriesResponse struct {
	Categories []catalog.Category `json:"categories"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
	}
	writeError(w, status, err)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Hello, world!"})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.fail(w, r, fmt.Errorf("%w: invalid multipart form: %v", errBadRequest, err))
		return
	}

	name := r.FormValue("name")
	category := r.FormValue("category")
	s.logger.InfoContext(r.Context(), "receive item",
		slog.String("name", name),
		slog.String("category", category),
	)

	file, header, err := r.FormFile("image")
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: image is required", errBadRequest))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: failed to read image: %v", errBadRequest, err))
		return
	}

	item, err := s.svc.Submit(r.Context(), service.Submission{
		Name:          name,
		Category:      category,
		ImageFilename: header.Filename,
		Image:         data,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{Message: "item received: " + item.Name, Item: item})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeCacheable(w, r, itemsResponse{Items: nonNil(items)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		s.fail(w, r, fmt.Errorf("%w: keyword is required", errBadRequest))
		return
	}

	items, err := s.svc.Search(r.Context(), keyword)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeCacheable(w, r, itemsResponse{Items: nonNil(items)})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseItemID(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: item id must be a non-negative integer", errBadRequest))
		return
	}

	item, err := s.svc.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeCacheable(w, r, item)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	blob, err := s.svc.Image(r.Context(), r.PathValue("filename"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	if _, err := io.Copy(w, blob); err != nil && !errors.Is(err, r.Context().Err()) {
		s.logger.WarnContext(r.Context(), "failed to stream image",
			slog.String("image", blob.Name),
			slog.String("err", err.Error()),
		)
	}
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if cats == nil {
		cats = []catalog.Category{}
	}
	writeCacheable(w, r, categoriesResponse{Categories: cats})
}

// nonNil 保证空目录编码成 [] 而不是 null
func nonNil(items []catalog.Item) []catalog.Item {
	if items == nil {
		return []catalog.Item{}
	}
	return items
}
