package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/logging"
)

const maxBodyBytes = 1 << 20

// errorBody 是错误响应 {"error": "..."}。
type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("write response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// respondErr 把领域错误映射为 HTTP 状态码：NOT_FOUND 404，INVALID_INPUT 400，其余 500。
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	if de := core.GetDomainError(err); de != nil {
		switch de.Code {
		case core.ErrorCodeNotFound:
			respondError(w, http.StatusNotFound, de.Message)
			return
		case core.ErrorCodeInvalidInput:
			respondError(w, http.StatusBadRequest, de.Message)
			return
		}
	}
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON 读取请求体，空体和格式错误都返回 INVALID_INPUT。
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return invalidInput("request body too large")
		}
		return invalidInput("invalid JSON body: " + err.Error())
	}
	return nil
}

func invalidInput(msg string) error {
	return core.NewDomainError(core.ModuleRecommend, core.ErrorCodeInvalidInput, msg)
}

func parseID(raw, name string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidInput(fmt.Sprintf("%s must be an integer", name))
	}
	return id, nil
}

// queryInt 读取可选的整数查询参数，缺省返回 0。
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return parseID(raw, name)
}
