package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ccollicutt/logdigest/pkg/digest"
	"github.com/ccollicutt/logdigest/pkg/parser"
)

const (
	noInputMessage = "provide logs as 'file' (multipart/form-data), as a raw text/plain body, or as JSON with a string field 'log'"
	noInputHint    = "example: curl -F file=@sample.log 'http://localhost:8000/analyze?top=5'"
)

var errNoInput = errors.New("no log input")

// analyzeRequest is the JSON body form of /analyze.
type analyzeRequest struct {
	Log *string         `json:"log"`
	Top json.RawMessage `json:"top"`
}

// staged describes input copied into the temp file.
type staged struct {
	kind    string
	formTop string
	jsonTop json.RawMessage
}

func (s *Server) handleAnalyze(c *gin.Context) {
	start := time.Now()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	tmp, err := os.CreateTemp(s.cfg.TempDir, "upload_*.log")
	if err != nil {
		s.fail(c, inputNone, http.StatusInternalServerError, fmt.Errorf("creating temp file: %w", err))
		return
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	in, err := s.stage(c, tmp)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, errNoInput):
			s.metrics.requests.WithLabelValues(in.kind, "400").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": noInputMessage, "hint": noInputHint})
		case errors.As(err, &tooLarge):
			s.fail(c, in.kind, http.StatusRequestEntityTooLarge,
				fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit))
		default:
			s.fail(c, in.kind, http.StatusInternalServerError, err)
		}
		return
	}
	if err := tmp.Close(); err != nil {
		s.fail(c, in.kind, http.StatusInternalServerError, fmt.Errorf("closing temp file: %w", err))
		return
	}

	top := s.resolveTop(c, in)
	res, err := digest.Analyze(c.Request.Context(), parser.NewFileSource(tmp.Name()), top)
	if err != nil {
		s.fail(c, in.kind, http.StatusInternalServerError, err)
		return
	}

	elapsed := time.Since(start)
	s.metrics.requests.WithLabelValues(in.kind, "200").Inc()
	s.metrics.lines.Add(float64(res.Lines))
	s.metrics.duration.Observe(elapsed.Seconds())
	s.logger.Info("analyzed input", "input", in.kind, "top", top, "lines", res.Lines, "duration", elapsed)

	c.JSON(http.StatusOK, gin.H{"report": res.Text})
}

func (s *Server) fail(c *gin.Context, kind string, status int, err error) {
	s.metrics.requests.WithLabelValues(kind, strconv.Itoa(status)).Inc()
	if status >= 500 {
		s.logger.Error("analyze failed", "input", kind, "error", err)
	} else {
		s.logger.Warn("analyze rejected", "input", kind, "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// stage copies the request's log input into w. The first form that applies
// wins: multipart field "file", then a text/plain body, then a JSON body
// with a string "log" field.
func (s *Server) stage(c *gin.Context, w io.Writer) (staged, error) {
	ct := c.ContentType()
	switch {
	case ct == gin.MIMEMultipartPOSTForm:
		in := staged{kind: inputFile}
		fh, err := c.FormFile("file")
		if err != nil {
			return in, noInputUnlessTooLarge(err)
		}
		in.formTop, _ = c.GetPostForm("top")

		f, err := fh.Open()
		if err != nil {
			return in, fmt.Errorf("opening upload: %w", err)
		}
		defer f.Close()
		if _, err := io.Copy(w, f); err != nil {
			return in, fmt.Errorf("writing upload: %w", err)
		}
		return in, nil

	case strings.HasPrefix(ct, "text/plain"):
		in := staged{kind: inputText}
		n, err := io.Copy(w, c.Request.Body)
		if err != nil {
			return in, noInputUnlessTooLarge(err)
		}
		if n == 0 {
			return in, errNoInput
		}
		return in, nil

	case isJSON(ct):
		in := staged{kind: inputJSON}
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return in, noInputUnlessTooLarge(err)
		}
		in.jsonTop = req.Top
		if req.Log == nil {
			return in, errNoInput
		}
		if _, err := io.WriteString(w, *req.Log); err != nil {
			return in, fmt.Errorf("writing log text: %w", err)
		}
		return in, nil
	}

	return staged{kind: inputNone}, errNoInput
}

func noInputUnlessTooLarge(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return errNoInput
}

func isJSON(ct string) bool {
	return ct == gin.MIMEJSON ||
		(strings.HasPrefix(ct, "application/") && strings.HasSuffix(ct, "+json"))
}

// resolveTop picks N from the query string, then the form, then the JSON
// body, then the configured default. Values that are not integers, and
// zero, count as not given and fall through to the next source.
func (s *Server) resolveTop(c *gin.Context, in staged) int {
	if n, ok := atoiTop(c.Query("top")); ok {
		return n
	}
	if n, ok := atoiTop(in.formTop); ok {
		return n
	}
	if n, ok := jsonInt(in.jsonTop); ok && n != 0 {
		return n
	}
	return s.top
}

func atoiTop(v string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// jsonInt accepts an integer or a string holding one.
func jsonInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(str)); err == nil {
			return n, true
		}
	}
	return 0, false
}
