package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/townboard/eventboard/media"
	"github.com/townboard/eventboard/utils"
)

const eventsListCacheKey = "cache:events:list"

// EventController exposes the event board CRUD endpoints. Everything runs
// through the lifecycle so reads and media side effects stay consistent.
type EventController struct {
	lifecycle *media.Lifecycle
}

func NewEventController(lifecycle *media.Lifecycle) *EventController {
	return &EventController{lifecycle: lifecycle}
}

// ListEvents returns all events, newest first. Refs whose file has vanished
// are filtered from the view.
func (e *EventController) ListEvents(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(eventsListCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	records, err := e.lifecycle.List()
	if err != nil {
		utils.ErrorFrom(ctx, err)
		return
	}

	wrapper := struct {
		Message string              `json:"message"`
		Data    []media.EventRecord `json:"data"`
	}{Message: "success", Data: records}
	utils.CacheSetJSON(eventsListCacheKey, wrapper, time.Hour)
	utils.Success(ctx, records)
}

// CreateEvent accepts a new submission, as multipart form data (with "files"
// parts) or as a plain JSON body for link-only events.
func (e *EventController) CreateEvent(ctx *gin.Context) {
	title, link, files, err := e.readEventForm(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	record, err := e.lifecycle.Create(media.CreateInput{
		Title: utils.Sanitize(title),
		Link:  utils.Sanitize(link),
		Files: files,
	})
	if err != nil {
		utils.ErrorFrom(ctx, err)
		return
	}

	utils.InvalidateByPrefix(eventsListCacheKey)
	utils.Success(ctx, record)
}

// UpdateEvent reconciles an event's fields and media set. Gated by the admin
// password upstream. keepMediaFiles and removeMediaFiles arrive as JSON array
// form fields alongside any new "files" parts.
func (e *EventController) UpdateEvent(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	title, link, files, err := e.readEventForm(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	keep, err := readPathList(ctx, "keepMediaFiles")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid keepMediaFiles payload")
		return
	}
	remove, err := readPathList(ctx, "removeMediaFiles")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid removeMediaFiles payload")
		return
	}

	record, err := e.lifecycle.Update(media.UpdateInput{
		ID:     id,
		Title:  utils.Sanitize(title),
		Link:   utils.Sanitize(link),
		Keep:   keep,
		Remove: remove,
		Files:  files,
	})
	if err != nil {
		utils.ErrorFrom(ctx, err)
		return
	}

	utils.InvalidateByPrefix(eventsListCacheKey)
	utils.Success(ctx, record)
}

// DeleteEvent removes the event and its media directory. Gated upstream.
func (e *EventController) DeleteEvent(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := e.lifecycle.Delete(id); err != nil {
		utils.ErrorFrom(ctx, err)
		return
	}

	utils.InvalidateByPrefix(eventsListCacheKey)
	utils.Message(ctx, http.StatusOK, "deleted")
}

// readEventForm pulls title, link and file parts from a multipart form, or
// from a JSON body when the request carries none.
func (e *EventController) readEventForm(ctx *gin.Context) (string, string, []*multipart.FileHeader, error) {
	if strings.HasPrefix(ctx.ContentType(), "multipart/form-data") {
		form, err := ctx.MultipartForm()
		if err != nil {
			return "", "", nil, err
		}
		files := form.File["files"]
		if len(files) == 0 {
			files = form.File["media"]
		}
		return ctx.PostForm("title"), ctx.PostForm("link"), files, nil
	}

	var req struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return "", "", nil, err
	}
	return req.Title, req.Link, nil, nil
}

// readPathList decodes a form field holding a JSON array of relative paths.
// Absent or empty fields decode to nil.
func readPathList(ctx *gin.Context, field string) ([]string, error) {
	raw := strings.TrimSpace(ctx.PostForm(field))
	if raw == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func parseID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid event id")
		return 0, false
	}
	return uint(id), true
}
