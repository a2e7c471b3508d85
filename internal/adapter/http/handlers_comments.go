package adapthttp

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// flexID accepts an id as a JSON number or a numeric string.
type flexID int64

func (id *flexID) UnmarshalJSON(b []byte) error {
	n, err := strconv.ParseInt(strings.Trim(string(b), `"`), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	*id = flexID(n)
	return nil
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		fail(w, r, err)
		return
	}
	comments, err := s.comments.ListByPost(r.Context(), postID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
		Post    flexID `json:"post"`
	}
	if err := parseJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	c, err := s.comments.Create(r.Context(), userFromContext(r.Context()).ID, int64(req.Post), req.Content)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req struct {
		Content *string `json:"content"`
	}
	if err := parseJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	c, err := s.comments.Update(r.Context(), userFromContext(r.Context()).ID, id, req.Content)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	c, err := s.comments.Delete(r.Context(), userFromContext(r.Context()).ID, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
