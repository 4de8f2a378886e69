// Package web exposes the sampling pipeline over HTTP.
package web

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	submit "github.com/scott717/submit-service"
)

// Sampler is what the handler needs from the pipeline.
type Sampler interface {
	Sample(source, rawSize, rawOffset string) (*submit.SampleResult, error)
}

// Handler serves GET /sample and the legacy alias GET /fields.
type Handler struct {
	sampler Sampler
	log     submit.Logger
}

// NewRouter mounts the sampling endpoints on a fresh router.
func NewRouter(s Sampler, log submit.Logger) *mux.Router {
	if log == nil {
		log = submit.NopLogger{}
	}
	h := &Handler{sampler: s, log: log}
	r := mux.NewRouter()
	r.HandleFunc("/sample", h.ServeSample).Methods(http.MethodGet)
	r.HandleFunc("/fields", h.ServeSample).Methods(http.MethodGet)
	return r
}

type conform struct {
	Type     string `json:"type"`
	CSVSplit string `json:"csvsplit,omitempty"`
}

type sourceData struct {
	Fields  []string                 `json:"fields"`
	Results []map[string]interface{} `json:"results"`
}

type sampleResponse struct {
	Coverage   string     `json:"coverage"`
	Note       string     `json:"note"`
	Data       string     `json:"data"`
	Conform    conform    `json:"conform"`
	SourceData sourceData `json:"source_data"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// ServeSample runs one sampling request. Every caller-visible failure maps
// to a 400 with a single error object; the core never emits a 5xx.
func (h *Handler) ServeSample(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.sampler.Sample(q.Get("source"), q.Get("size"), q.Get("offset"))
	if err != nil {
		h.log.Printf("sample %q failed: %v", q.Get("source"), err)
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	fields := res.Fields
	if fields == nil {
		fields = []string{}
	}
	results := res.Results
	if results == nil {
		results = []map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, sampleResponse{
		Data: res.SourceURL,
		Conform: conform{
			Type:     string(res.Format),
			CSVSplit: res.Delimiter,
		},
		SourceData: sourceData{Fields: fields, Results: results},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
