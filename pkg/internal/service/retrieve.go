package service

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yeisme/docshelf/pkg/internal/naming"
	"github.com/yeisme/docshelf/pkg/internal/storage/disk"
	"github.com/yeisme/docshelf/pkg/tracing"
)

// ResolvedFile 可直接写出的文件，调用方负责 Close.
type ResolvedFile struct {
	Name        string
	ContentType string
	File        *os.File
	Info        fs.FileInfo
}

// Size 文件大小.
func (r *ResolvedFile) Size() int64 {
	return r.Info.Size()
}

// Close 关闭文件.
func (r *ResolvedFile) Close() error {
	return r.File.Close()
}

// Resolve 打开上传目录中名为 name（已解码一次）的文件.
// 名字离开根目录、指向子目录或文件不存在时返回 ErrNotFound.
func (fs *FileService) Resolve(ctx context.Context, name string) (*ResolvedFile, error) {
	_, span := tracing.StartSpan(ctx, "file.resolve")
	defer span.End()

	span.SetAttributes(attribute.String("file.name", name))

	f, info, err := fs.disk.Open(name)
	if err != nil {
		err = mapDiskErr("open file", err)
		tracing.RecordError(span, err)

		return nil, err
	}

	return &ResolvedFile{
		Name:        info.Name(),
		ContentType: ContentTypeFor(name),
		File:        f,
		Info:        info,
	}, nil
}

// Inspection 文件诊断信息.
type Inspection struct {
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
	Header       string `json:"header"`
	IsPDF        bool   `json:"isPdf"`
	FirstBytes   string `json:"firstBytes"`
	DetectedType string `json:"detectedType"`
	ContentType  string `json:"contentType"`
	URL          string `json:"testUrl"`
	FileExists   bool   `json:"fileExists"`
}

// Inspect 读取文件头部，报告大小、前四字节、嗅探类型与访问地址.
func (fs *FileService) Inspect(ctx context.Context, name string) (*Inspection, error) {
	rf, err := fs.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rf.Close()

	head := make([]byte, sniffLen)

	n, err := io.ReadFull(rf.File, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, &IOError{Op: "read file", Err: err}
	}

	head = head[:n]
	first := head[:min(4, len(head))]

	parts := make([]string, len(first))
	for i, b := range first {
		parts[i] = hex.EncodeToString([]byte{b})
	}

	return &Inspection{
		Filename:     name,
		Size:         rf.Size(),
		Header:       string(first),
		IsPDF:        isPDFHeader(string(first)),
		FirstBytes:   strings.Join(parts, " "),
		DetectedType: mimetype.Detect(head).String(),
		ContentType:  rf.ContentType,
		URL:          fs.PublicURL(name),
		FileExists:   true,
	}, nil
}

// PublicURL 返回静态访问地址，存储名只转义一次.
func (fs *FileService) PublicURL(storedName string) string {
	return strings.TrimRight(fs.upload.PublicPath, "/") + "/" + naming.Escape(storedName)
}

func mapDiskErr(op string, err error) error {
	if errors.Is(err, disk.ErrNotFound) || errors.Is(err, disk.ErrInvalidName) {
		return ErrNotFound
	}

	return &IOError{Op: op, Err: err}
}
