package service

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yeisme/docshelf/pkg/internal/naming"
)

// DefaultContentType 未知扩展名使用的类型.
const DefaultContentType = "application/octet-stream"

const docxType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// contentTypes 扩展名（小写）到响应类型的映射.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".docx": docxType,
	".doc":  "application/msword",
}

// ContentTypeFor 只根据扩展名确定响应类型，不参考上传时声明的类型.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[naming.Ext(name)]; ok {
		return ct
	}

	return DefaultContentType
}

// signatureFamilies 声明类型允许的检测结果；检测结果的父类型链上出现任意一个即视为相符.
var signatureFamilies = map[string][]string{
	"application/pdf":    {"application/pdf"},
	docxType:             {docxType, "application/zip"},
	"application/msword": {"application/msword", "application/x-ole-storage"},
	"image/png":          {"image/png"},
	"image/jpeg":         {"image/jpeg"},
	"image/jpg":          {"image/jpeg"},
	"image/gif":          {"image/gif"},
	"image/bmp":          {"image/bmp"},
	"image/webp":         {"image/webp"},
}

// signatureMatches 判断检测到的内容类型是否与声明类型相符. 未登记的声明类型不做限制.
func signatureMatches(declared string, detected *mimetype.MIME) bool {
	family, ok := signatureFamilies[declared]
	if !ok {
		return true
	}

	for m := detected; m != nil; m = m.Parent() {
		for _, want := range family {
			if m.Is(want) {
				return true
			}
		}
	}

	return false
}

// isPDFHeader 判断前四个字节是否为 %PDF.
func isPDFHeader(header string) bool {
	return strings.HasPrefix(header, "%PDF")
}
