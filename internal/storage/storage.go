package storage

import "context"

// UploadCredential 预签名上传凭证
// UploadURL 用于 HTTP PUT 写入,PublicURL 为上传成功后的公共读地址
type UploadCredential struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	ObjectKey string `json:"object_key"`
}

// ObjectStorage 对象存储协作接口
// 只暴露"签发写入凭证"和"按键删除"两个能力,具体实现可替换
type ObjectStorage interface {
	// SignPutURL 为一个文件签发预签名写入凭证
	SignPutURL(ctx context.Context, fileName, contentType string) (*UploadCredential, error)
	// DeleteObjects 批量删除对象,用于上传失败后的补偿回滚
	DeleteObjects(ctx context.Context, keys []string) error
}
