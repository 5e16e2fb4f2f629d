// Package main 启动应用程序
package main

import (
	"os"

	"github.com/yeisme/docshelf/pkg/cmd"
)

//	@title			docshelf API
//	@version		0.1.0
//	@description	docshelf 接收文档与图片上传，维护文件清单，并提供适合浏览器内联预览的文件访问接口。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

//	@BasePath	/

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
