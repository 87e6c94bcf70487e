package storage

import "mime/multipart"

// Storage 文件存储后端
// 返回值为存储路径或完整URL，由具体实现决定
type Storage interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
}
