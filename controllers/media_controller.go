package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/townboard/eventboard/media"
	"github.com/townboard/eventboard/utils"
)

// MediaController serves stored media files. Video requests carrying a Range
// header get a single capped byte span with 206; everything else, including
// the final 404, is delegated to stdlib whole-file serving.
type MediaController struct {
	store    *media.Store
	chunkCap int64
}

func NewMediaController(store *media.Store, chunkCap int64) *MediaController {
	return &MediaController{store: store, chunkCap: chunkCap}
}

// Serve handles GET /media/*filepath.
func (m *MediaController) Serve(ctx *gin.Context) {
	rel := strings.TrimPrefix(ctx.Param("filepath"), "/")
	plan := m.store.PlanStream(rel, ctx.GetHeader("Range"), m.chunkCap)

	switch plan.Kind {
	case media.StreamNotHere:
		// Nothing to serve here; the static layer owns the final 404.
		http.NotFound(ctx.Writer, ctx.Request)
	case media.StreamWholeFile:
		// Images are always served whole, even when the request asked for a
		// range; drop the header so the stdlib serves the full body.
		ctx.Request.Header.Del("Range")
		http.ServeFile(ctx.Writer, ctx.Request, plan.Path)
	case media.StreamUnsatisfiable:
		ctx.Header("Content-Range", fmt.Sprintf("bytes */%d", plan.Size))
		utils.Error(ctx, http.StatusRequestedRangeNotSatisfiable, "requested range not satisfiable")
	case media.StreamPartial:
		m.servePartial(ctx, plan)
	}
}

func (m *MediaController) servePartial(ctx *gin.Context, plan media.StreamPlan) {
	f, err := os.Open(plan.Path)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to open media file")
		return
	}
	defer f.Close()

	if _, err := f.Seek(plan.Range.Start, io.SeekStart); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to seek media file")
		return
	}

	ctx.Header("Content-Range", plan.Range.ContentRange())
	ctx.Header("Accept-Ranges", "bytes")
	ctx.Header("Content-Length", strconv.FormatInt(plan.Range.Length(), 10))
	ctx.Header("Content-Type", plan.ContentType)
	ctx.Header("Cache-Control", "public, max-age=3600")
	ctx.Status(http.StatusPartialContent)

	m.copyRange(ctx, f, plan.Range.Length())
}

// copyRange streams exactly n bytes to the response. Cancellation (client
// disconnect, request timeout) stops the loop between chunks; headers are
// already out, so errors here terminate the connection rather than downgrade
// to an error body.
func (m *MediaController) copyRange(ctx *gin.Context, r io.Reader, n int64) {
	buf := make([]byte, 64*1024)
	done := ctx.Request.Context().Done()
	for n > 0 {
		select {
		case <-done:
			return
		default:
		}
		chunk := int64(len(buf))
		if n < chunk {
			chunk = n
		}
		read, err := r.Read(buf[:chunk])
		if read > 0 {
			if _, werr := ctx.Writer.Write(buf[:read]); werr != nil {
				return
			}
			n -= int64(read)
		}
		if err != nil {
			if err != io.EOF && utils.Sugar != nil {
				utils.Sugar.Warnf("media stream read failed: %v", err)
			}
			return
		}
	}
}
