package media

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultChunkCap bounds the span returned for an open-ended range request.
// Capping keeps seeks responsive on large files instead of streaming the
// whole remainder in one response.
const DefaultChunkCap int64 = 1 << 20

var errMalformedRange = errors.New("malformed range header")

// RangeSpec is a validated byte range within a file of the given size.
type RangeSpec struct {
	Start int64
	End   int64
	Size  int64
}

// Length returns the number of bytes covered by the range.
func (r RangeSpec) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange renders the Content-Range header value for a 206 response.
func (r RangeSpec) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, r.Size)
}

// ParseRange parses a header of the form "bytes=<start>-[<end>]" against a
// file of the given size. start must be a non-negative integer below size;
// end, when present, must satisfy start <= end < size. An open end is clamped
// to min(start+chunkCap-1, size-1). Multi-range requests and anything else
// malformed are rejected; callers answer rejections with 416.
func ParseRange(header string, size, chunkCap int64) (RangeSpec, error) {
	if chunkCap <= 0 {
		chunkCap = DefaultChunkCap
	}
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return RangeSpec{}, errMalformedRange
	}
	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return RangeSpec{}, errMalformedRange
	}

	start, err := strconv.ParseInt(strings.TrimSpace(startStr), 10, 64)
	if err != nil || start < 0 || start >= size {
		return RangeSpec{}, errMalformedRange
	}

	end := start + chunkCap - 1
	if trimmed := strings.TrimSpace(endStr); trimmed != "" {
		end, err = strconv.ParseInt(trimmed, 10, 64)
		if err != nil || end < start || end >= size {
			return RangeSpec{}, errMalformedRange
		}
	} else if end > size-1 {
		end = size - 1
	}

	return RangeSpec{Start: start, End: end, Size: size}, nil
}

// StreamKind is the outcome of the streaming decision for one request.
type StreamKind int

const (
	// StreamNotHere means the path does not resolve to a file under the
	// media root; the static fallback layer owns the final 404.
	StreamNotHere StreamKind = iota
	// StreamWholeFile delegates to plain whole-file serving: either the
	// file is not a video or the request carried no Range header.
	StreamWholeFile
	// StreamPartial answers a single validated byte range with 206.
	StreamPartial
	// StreamUnsatisfiable answers a malformed or out-of-range Range header
	// on a streamable file with 416.
	StreamUnsatisfiable
)

// StreamPlan is the transport-free decision of how to answer a media request.
type StreamPlan struct {
	Kind        StreamKind
	Path        string // absolute path, set unless Kind is StreamNotHere
	Range       RangeSpec
	Size        int64
	ContentType string
}

// PlanStream decides how a request for the relative path rel with the given
// Range header value (empty when absent) should be answered. The decision is
// pure with respect to the transport: handlers only execute the plan.
func (s *Store) PlanStream(rel, rangeHeader string, chunkCap int64) StreamPlan {
	abs, err := s.Resolve(rel)
	if err != nil {
		return StreamPlan{Kind: StreamNotHere}
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return StreamPlan{Kind: StreamNotHere}
	}

	if rangeHeader == "" || !IsStreamable(rel) {
		return StreamPlan{Kind: StreamWholeFile, Path: abs, Size: info.Size(), ContentType: ContentTypeOf(rel)}
	}

	spec, err := ParseRange(rangeHeader, info.Size(), chunkCap)
	if err != nil {
		return StreamPlan{Kind: StreamUnsatisfiable, Path: abs, Size: info.Size()}
	}
	return StreamPlan{Kind: StreamPartial, Path: abs, Range: spec, Size: info.Size(), ContentType: ContentTypeOf(rel)}
}
