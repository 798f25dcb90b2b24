package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"simplemercari/pkg/catalog"
	"simplemercari/pkg/core"
	"simplemercari/pkg/imagestore"
)

// errBadRequest 标记请求本身不合法 (缺参数、表单解析失败、id 不是整数)
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor 把领域错误映射成 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, imagestore.ErrInvalidExtension),
		errors.Is(err, imagestore.ErrUnsupportedImage),
		errors.Is(err, catalog.ErrInvalidItem):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrCorrupted):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// 状态码已经写出，编码失败只能放弃
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// 内部错误不把细节暴露给客户端
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeCacheable 写 JSON，并附带基于 Canonical CBOR 的 ETag
// 请求带的 If-None-Match 命中时返回 304
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	hash, err := core.CalculateHash(v)
	if err != nil {
		writeJSON(w, http.StatusOK, v)
		return
	}

	etag := `"` + hash.String() + `"`
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
