package codes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
)

// File is an uploaded activation code file. Size is the byte size reported
// by the client or the filesystem; content is only reached through a
// TextReader.
type File interface {
	Size() int64
	Open() (io.ReadCloser, error)
}

// TextReader reads the full text content of f. ok is false when the content
// could not be read; readers never return a partial text with ok set.
type TextReader func(ctx context.Context, f File) (text string, ok bool)

// ReadText is the default TextReader. Open and read failures are logged and
// reported as ok == false.
func ReadText(ctx context.Context, f File) (string, bool) {
	if err := ctx.Err(); err != nil {
		return "", false
	}

	rc, err := f.Open()
	if err != nil {
		slog.DebugContext(ctx, "activation code file open failed", "error", err)
		return "", false
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		slog.DebugContext(ctx, "activation code file read failed", "error", err)
		return "", false
	}
	return string(data), true
}

type multipartFile struct {
	header *multipart.FileHeader
}

// FromMultipart wraps a multipart form file.
func FromMultipart(h *multipart.FileHeader) File {
	return multipartFile{header: h}
}

func (f multipartFile) Size() int64 { return f.header.Size }

func (f multipartFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

type pathFile struct {
	path string
	size int64
}

// FromPath returns a File for a local path. The size is taken from the
// filesystem at call time.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return pathFile{path: path, size: info.Size()}, nil
}

func (f pathFile) Size() int64 { return f.size }

func (f pathFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
