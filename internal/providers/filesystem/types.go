package filesystem

import (
	"time"

	"github.com/datasprayio/dataspray/internal/shared/stream"
)

// DirectoryEntry describes one child of a listed directory.
type DirectoryEntry struct {
	Name       string `json:"name"`
	IsDir      bool   `json:"isDir"`
	IsSymbolic bool   `json:"isSymbolic"`
}

// ReadDirectoryResponse is the listing of one directory.
type ReadDirectoryResponse struct {
	Files []DirectoryEntry `json:"files"`
}

// FileStat is a snapshot of one filesystem node.
type FileStat struct {
	CtimeInMsEpoch int64 `json:"ctimeInMsEpoch"`
	MtimeInMsEpoch int64 `json:"mtimeInMsEpoch"`
	IsReadonly     bool  `json:"isReadonly"`
	SizeInBytes    int64 `json:"sizeInBytes"`
	IsDir          bool  `json:"isDir"`
	IsSymbolic     bool  `json:"isSymbolic"`
}

// FileContent is an open file being streamed to a caller. Content must be
// closed (or fully drained) to release the file handle.
type FileContent struct {
	Name     string
	Size     int64
	MimeType string
	Content  *stream.Stream
}

// Close releases the underlying file handle.
func (f *FileContent) Close() error {
	return f.Content.Close()
}

// Recorder receives per-operation outcomes. result is "ok" or a failure kind.
type Recorder interface {
	RecordFSOperation(op, result string, duration time.Duration)
}
