package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/valpere/legalease/internal"
	"github.com/valpere/legalease/internal/assistant"
	"github.com/valpere/legalease/internal/extractor"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
}

type documentResponse struct {
	Document internal.Document `json:"document"`
	State    string            `json:"state"`
}

type askPayload struct {
	Question string `json:"question"`
}

type askResponse struct {
	*assistant.Reply
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

type conversationResponse struct {
	State    string                       `json:"state"`
	Document *internal.Document           `json:"document,omitempty"`
	Entries  []internal.ConversationEntry `json:"entries"`
}

func (s *Server) session(c echo.Context) (*assistant.Session, error) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return sess, nil
}

func (s *Server) createSession(c echo.Context) error {
	sess := s.sessions.Create()
	return c.JSON(http.StatusCreated, sessionResponse{SessionID: sess.ID, State: sess.State().String()})
}

func (s *Server) deleteSession(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	s.sessions.Delete(sess.ID)
	s.removeUploads(sess.ID)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) uploadDocument(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file field")
	}
	name := filepath.Base(fh.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "only PDF documents are supported")
	}

	path, err := s.store(sess.ID, name, fh)
	if err != nil {
		return err
	}

	text, err := s.extract(path)
	if err != nil {
		if errors.Is(err, extractor.ErrNoText) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "document contains no extractable text")
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "could not read PDF: "+err.Error())
	}

	doc, err := sess.LoadDocument(name, text)
	if err != nil {
		if errors.Is(err, extractor.ErrNoText) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "document contains no extractable text")
		}
		return err
	}

	s.logger.Info("document loaded",
		zap.String("session", sess.ID),
		zap.String("name", doc.Name),
		zap.String("language", doc.Language))
	return c.JSON(http.StatusOK, documentResponse{Document: doc, State: sess.State().String()})
}

// store copies an upload to upload_dir/<session>/<name>.
func (s *Server) store(sessionID, name string, fh *multipart.FileHeader) (string, error) {
	dir := filepath.Join(s.cfg.UploadDir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer src.Close()

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", err
	}
	return path, dst.Close()
}

func (s *Server) ask(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	var p askPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reply, err := sess.Ask(c.Request().Context(), p.Question)
	switch {
	case errors.Is(err, assistant.ErrNoDocument):
		return echo.NewHTTPError(http.StatusConflict, "upload a document first")
	case errors.Is(err, assistant.ErrEmptyQuery):
		return echo.NewHTTPError(http.StatusBadRequest, "question is empty")
	case err != nil:
		return err
	}

	return c.JSON(http.StatusOK, askResponse{Reply: reply, Markdown: reply.Markdown(), HTML: reply.HTML()})
}

func (s *Server) reset(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	sess.Reset()
	return c.JSON(http.StatusOK, sessionResponse{SessionID: sess.ID, State: sess.State().String()})
}

func (s *Server) conversation(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	resp := conversationResponse{State: sess.State().String(), Entries: sess.Conversation()}
	if doc, ok := sess.Document(); ok {
		resp.Document = &doc
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) index(c echo.Context) error {
	return c.HTML(http.StatusOK, indexPage)
}
