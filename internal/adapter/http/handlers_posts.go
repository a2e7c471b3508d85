package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"blog/internal/app"
	"blog/internal/domain"
)

// tagList accepts tags either as a comma separated string or as an array.
type tagList []string

func (t *tagList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = domain.ParseTags(s)
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return errors.New("tags must be a string or an array of strings")
	}
	*t = arr
	return nil
}

// postForm is a create or update request decoded from JSON or multipart.
// Nil fields were absent from the request.
type postForm struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    *tagList `json:"tags"`
	Image   *string  `json:"image"`

	upload *app.Upload
}

func (s *Server) readPostForm(w http.ResponseWriter, r *http.Request) (postForm, func(), error) {
	var f postForm
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return f, noop, parseJSON(r, &f)
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return f, noop, fmt.Errorf("%w: image exceeds %d bytes", app.ErrValidation, s.maxUploadBytes)
		}
		return f, noop, fmt.Errorf("%w: invalid form: %v", app.ErrValidation, err)
	}
	form := r.MultipartForm
	cleanup := func() { _ = form.RemoveAll() }

	if v := form.Value["title"]; len(v) > 0 {
		f.Title = &v[0]
	}
	if v := form.Value["content"]; len(v) > 0 {
		f.Content = &v[0]
	}
	if v, ok := form.Value["tags"]; ok {
		tags := tagList{}
		for _, raw := range v {
			tags = append(tags, domain.ParseTags(raw)...)
		}
		f.Tags = &tags
	}
	if v := form.Value["image"]; len(v) > 0 {
		f.Image = &v[0]
	}

	if files := form.File["image"]; len(files) > 0 {
		fh := files[0]
		file, err := fh.Open()
		if err != nil {
			cleanup()
			return f, noop, err
		}
		f.upload = &app.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        file,
		}
		cleanup = func() {
			_ = file.Close()
			_ = form.RemoveAll()
		}
	}
	return f, cleanup, nil
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	feed, err := s.posts.Feed(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	f, cleanup, err := s.readPostForm(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer cleanup()

	if f.Image != nil && *f.Image != "" {
		fail(w, r, fmt.Errorf("%w: image must be uploaded as a file", app.ErrValidation))
		return
	}
	in := app.PostInput{Image: f.upload}
	if f.Title != nil {
		in.Title = *f.Title
	}
	if f.Content != nil {
		in.Content = *f.Content
	}
	if f.Tags != nil {
		in.Tags = *f.Tags
	}

	post, err := s.posts.Create(r.Context(), userFromContext(r.Context()).ID, in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	f, cleanup, err := s.readPostForm(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer cleanup()

	patch := app.PostPatch{Title: f.Title, Content: f.Content, Image: f.Image, Upload: f.upload}
	if f.Tags != nil {
		tags := []string(*f.Tags)
		patch.Tags = &tags
	}

	post, err := s.posts.Update(r.Context(), userFromContext(r.Context()).ID, id, patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	post, err := s.posts.Delete(r.Context(), userFromContext(r.Context()).ID, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	post, err := s.posts.ToggleLike(r.Context(), userFromContext(r.Context()).ID, id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}
