package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"whatsurv/internal/repository"
)

type CounterResponse struct {
	Field string `json:"field"`
	Value int64  `json:"value"`
}

type ImageResponse struct {
	ImageID   string `json:"imageId"`
	ImageUrl  string `json:"imageUrl"`
	FileName  string `json:"fileName"`
	FileSize  int64  `json:"fileSize"`
	MimeType  string `json:"mimeType"`
	CreatedAt string `json:"createdAt"`
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListPosts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, posts, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	post, err := h.PostService.GetPost(r.Context(), postID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if post == nil {
		WriteError(w, "Пост не найден", http.StatusNotFound)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req repository.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	post, err := h.PostService.CreatePost(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, post, http.StatusCreated)
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req repository.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.PostID = mux.Vars(r)["id"]

	post, err := h.PostService.UpdatePost(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.PostService.DeletePost(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Пост успешно удален"}, http.StatusOK)
}

func (h *Handlers) IncrementViews(w http.ResponseWriter, r *http.Request) {
	value, err := h.PostService.IncrementViews(r.Context(), mux.Vars(r)["id"])
	h.writeCounter(w, r, repository.FieldViews, value, err)
}

func (h *Handlers) IncrementLikes(w http.ResponseWriter, r *http.Request) {
	value, err := h.PostService.IncrementLikes(r.Context(), mux.Vars(r)["id"])
	h.writeCounter(w, r, repository.FieldLikes, value, err)
}

func (h *Handlers) writeCounter(w http.ResponseWriter, r *http.Request, field string, value int64, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, CounterResponse{Field: field, Value: value}, http.StatusOK)
}

func (h *Handlers) GetLitePosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListLitePosts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, posts, http.StatusOK)
}

func (h *Handlers) GetLitePost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetLitePost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if post == nil {
		WriteError(w, "Пост не найден", http.StatusNotFound)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) IncrementLiteViews(w http.ResponseWriter, r *http.Request) {
	value, err := h.PostService.IncrementLiteViews(r.Context(), mux.Vars(r)["id"])
	h.writeCounter(w, r, repository.FieldViews, value, err)
}

func (h *Handlers) IncrementLiteLikes(w http.ResponseWriter, r *http.Request) {
	value, err := h.PostService.IncrementLiteLikes(r.Context(), mux.Vars(r)["id"])
	h.writeCounter(w, r, repository.FieldLikes, value, err)
}

func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	// setting the size limit from the config
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, fmt.Sprintf("Файл слишком большой (макс. %d MB)",
				h.Cfg.MaxUploadSize/(1024*1024)), http.StatusRequestEntityTooLarge)
		} else {
			WriteError(w, "Ошибка при обработке файла", http.StatusBadRequest)
		}
		return
	}

	// getting the file
	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, "Не удалось получить файл", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		WriteError(w, "Неподдерживаемый тип файла. Разрешены: JPEG, PNG, GIF, WebP", http.StatusBadRequest)
		return
	}

	image, err := h.PostService.AddImage(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, ImageResponse{
		ImageID:   image.ImageID,
		ImageUrl:  image.ImageURL,
		FileName:  header.Filename,
		FileSize:  header.Size,
		MimeType:  contentType,
		CreatedAt: image.CreatedAt.Format(time.RFC3339),
	}, http.StatusCreated)
}

func (h *Handlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.PostService.DeleteImage(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Картинка успешно удалена"}, http.StatusOK)
}
